package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"hubmatch-api/internal/models"
	"hubmatch-api/internal/service"
)

// WebhookHandler handles inbound webhooks that feed the match pipeline.
type WebhookHandler struct {
	service        MatchService
	typeformSecret string
	genericSecret  string
}

// NewWebhookHandler creates a webhook handler. An empty secret skips the
// signature check for that endpoint.
func NewWebhookHandler(svc MatchService, typeformSecret, genericSecret string) *WebhookHandler {
	return &WebhookHandler{service: svc, typeformSecret: typeformSecret, genericSecret: genericSecret}
}

// Typeform handles POST /api/v1/webhooks/typeform requests. The notification
// fires in the background inside the match path, so the response only
// acknowledges the submission.
func (h *WebhookHandler) Typeform(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read request body"})
		return
	}

	if h.typeformSecret != "" {
		signature := c.GetHeader("Typeform-Signature")
		if signature == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing Typeform signature"})
			return
		}
		if !verifyTypeformSignature(body, signature, h.typeformSecret) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid Typeform signature"})
			return
		}
	}

	var webhook models.TypeformWebhook
	if err := json.Unmarshal(body, &webhook); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid webhook payload"})
		return
	}

	req, ok := extractMatchRequest(webhook)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not extract address from form response"})
		return
	}

	log.Info().Str("event_id", webhook.EventID).Str("address", req.Address).Msg("processing typeform webhook")

	result, err := h.service.Match(c.Request.Context(), req)
	if err != nil {
		status, msg := statusForMatchError(err)
		c.JSON(status, gin.H{"error": msg, "error_kind": service.ErrorKind(err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":             "success",
		"event_id":           webhook.EventID,
		"matched_hub":        result.MatchedHub.Name,
		"processing_time_ms": result.ProcessingTimeMs,
	})
}

// Generic handles POST /api/v1/webhooks/generic requests: a flat payload
// carrying the applicant fields directly, from any source that can sign its
// requests.
//
//	{"address": "...", "email": "...", "name": "...", "phone": "..."}
func (h *WebhookHandler) Generic(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read request body"})
		return
	}

	if h.genericSecret != "" {
		signature := c.GetHeader("X-Webhook-Signature")
		if signature == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing webhook signature"})
			return
		}
		if !verifyGenericSignature(body, signature, h.genericSecret) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid webhook signature"})
			return
		}
	}

	var req models.MatchRequest
	if err := json.Unmarshal(body, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid webhook payload"})
		return
	}
	if req.Address == "" || req.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "address and email are required"})
		return
	}

	log.Info().Str("address", req.Address).Msg("processing generic webhook")

	result, err := h.service.Match(c.Request.Context(), req)
	if err != nil {
		status, msg := statusForMatchError(err)
		c.JSON(status, gin.H{"error": msg, "error_kind": service.ErrorKind(err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":             "success",
		"matched_hub":        result.MatchedHub.Name,
		"distance_km":        result.DistanceKm,
		"processing_time_ms": result.ProcessingTimeMs,
	})
}

// verifyTypeformSignature checks the Typeform-Signature header: "sha256="
// followed by the base64 HMAC-SHA256 of the raw body.
func verifyTypeformSignature(body []byte, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := "sha256=" + base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// verifyGenericSignature checks the X-Webhook-Signature header: the hex
// HMAC-SHA256 of the raw body.
func verifyGenericSignature(body []byte, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// extractMatchRequest pulls the applicant fields out of the form answers.
// Fields are recognized by their id: it must contain "address", "email",
// "name" or "phone" and carry the matching answer type. Address and email
// are required.
func extractMatchRequest(webhook models.TypeformWebhook) (models.MatchRequest, bool) {
	var req models.MatchRequest

	for _, answer := range webhook.FormResponse.Answers {
		id := strings.ToLower(answer.Field.ID)
		switch {
		case strings.Contains(id, "address") && answer.Field.Type == "text":
			req.Address = answer.Text
		case strings.Contains(id, "email") && answer.Field.Type == "email":
			req.Email = answer.Email
		case strings.Contains(id, "phone") && (answer.Field.Type == "text" || answer.Field.Type == "phone_number"):
			if answer.PhoneNumber != "" {
				req.Phone = answer.PhoneNumber
			} else {
				req.Phone = answer.Text
			}
		case strings.Contains(id, "name") && answer.Field.Type == "text":
			req.Name = answer.Text
		}
	}

	if req.Address == "" || req.Email == "" {
		return models.MatchRequest{}, false
	}

	req.ApplicationID = webhook.FormResponse.Token
	return req, true
}
