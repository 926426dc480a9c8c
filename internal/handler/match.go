package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"hubmatch-api/internal/geocode"
	"hubmatch-api/internal/models"
	"hubmatch-api/internal/service"
	"hubmatch-api/internal/source"
)

// MatchHandler handles address match requests
type MatchHandler struct {
	service MatchService
}

// Service interface for dependency injection
type MatchService interface {
	Match(ctx context.Context, req models.MatchRequest) (models.MatchResult, error)
	MatchBatch(ctx context.Context, reqs []models.MatchRequest) ([]models.BatchOutcome, error)
}

// NewMatchHandler creates a new match handler
func NewMatchHandler(svc MatchService) *MatchHandler {
	return &MatchHandler{service: svc}
}

// Match handles POST /api/v1/match requests
func (h *MatchHandler) Match(c *gin.Context) {
	var req models.MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	result, err := h.service.Match(c.Request.Context(), req)
	if err != nil {
		status, msg := statusForMatchError(err)
		c.JSON(status, gin.H{"error": msg, "error_kind": service.ErrorKind(err)})
		return
	}

	c.JSON(http.StatusOK, result)
}

// MatchBatch handles POST /api/v1/match/batch requests
func (h *MatchHandler) MatchBatch(c *gin.Context) {
	var reqs []models.MatchRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	if len(reqs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "batch must contain at least one request"})
		return
	}

	outcomes, err := h.service.MatchBatch(c.Request.Context(), reqs)
	if err != nil {
		if errors.Is(err, service.ErrBatchTooLarge) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, outcomes)
}

// statusForMatchError maps the match error taxonomy onto HTTP statuses:
// bad addresses are the client's problem, provider and source outages are
// 503, an empty hub set is a server misconfiguration.
func statusForMatchError(err error) (int, string) {
	switch {
	case errors.Is(err, geocode.ErrAddressNotFound):
		return http.StatusBadRequest, "address could not be geocoded"
	case errors.Is(err, geocode.ErrGeocodeFailed):
		return http.StatusServiceUnavailable, "geocoding provider unavailable"
	case errors.Is(err, source.ErrSourceUnavailable):
		return http.StatusServiceUnavailable, "hub data source unavailable"
	case errors.Is(err, source.ErrSourceEmpty):
		return http.StatusInternalServerError, "no hubs configured"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
