package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"hubmatch-api/internal/models"
	"hubmatch-api/internal/service"
	"hubmatch-api/internal/source"
)

// HubDirectory is the operator-facing hub surface: the matching snapshot plus
// inventory statistics.
type HubDirectory interface {
	source.HubSource
	Stats(ctx context.Context) (models.HubStats, error)
}

// HubsHandler exposes the current hub snapshot for operators.
type HubsHandler struct {
	source HubDirectory
}

// NewHubsHandler creates a new hubs handler
func NewHubsHandler(src HubDirectory) *HubsHandler {
	return &HubsHandler{source: src}
}

// List handles GET /api/v1/hubs requests, optionally filtered by region.
func (h *HubsHandler) List(c *gin.Context) {
	hubs, err := h.source.List(c.Request.Context())
	if err != nil {
		status, msg := statusForMatchError(err)
		c.JSON(status, gin.H{"error": msg, "error_kind": service.ErrorKind(err)})
		return
	}

	if region := c.Query("region"); region != "" {
		filtered := hubs[:0:0]
		for _, hub := range hubs {
			if hub.Region == region {
				filtered = append(filtered, hub)
			}
		}
		hubs = filtered
	}

	c.JSON(http.StatusOK, hubs)
}

// Get handles GET /api/v1/hubs/:id requests.
func (h *HubsHandler) Get(c *gin.Context) {
	hubs, err := h.source.List(c.Request.Context())
	if err != nil {
		status, msg := statusForMatchError(err)
		c.JSON(status, gin.H{"error": msg, "error_kind": service.ErrorKind(err)})
		return
	}

	id := c.Param("id")
	for _, hub := range hubs {
		if hub.ID == id {
			c.JSON(http.StatusOK, hub)
			return
		}
	}

	c.JSON(http.StatusNotFound, gin.H{"error": "hub " + id + " not found"})
}

// Stats handles GET /api/v1/hubs/stats requests: total/active/inactive
// counts over the backing source, before the active filter.
func (h *HubsHandler) Stats(c *gin.Context) {
	stats, err := h.source.Stats(c.Request.Context())
	if err != nil {
		status, msg := statusForMatchError(err)
		c.JSON(status, gin.H{"error": msg, "error_kind": service.ErrorKind(err)})
		return
	}

	c.JSON(http.StatusOK, stats)
}
