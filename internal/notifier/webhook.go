package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"hubmatch-api/internal/models"
)

// WebhookNotifier POSTs the match result to a configured endpoint.
type WebhookNotifier struct {
	url    string
	secret string
	client *http.Client
}

// NewWebhookNotifier creates a webhook notifier. secret, when non-empty, is
// sent as the X-Webhook-Secret header so receivers can authenticate us.
func NewWebhookNotifier(url, secret string) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		secret: secret,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

type webhookPayload struct {
	MatchResult  models.MatchResult  `json:"match_result"`
	AddressInput models.MatchRequest `json:"address_input"`
	Timestamp    time.Time           `json:"timestamp"`
}

func (n *WebhookNotifier) Notify(ctx context.Context, result models.MatchResult, req models.MatchRequest) error {
	body, err := json.Marshal(webhookPayload{
		MatchResult:  result,
		AddressInput: req,
		Timestamp:    time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("notifier: marshal webhook payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notifier: build webhook request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if n.secret != "" {
		httpReq.Header.Set("X-Webhook-Secret", n.secret)
	}

	resp, err := n.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("notifier: webhook request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("notifier: webhook returned status %d", resp.StatusCode)
	}

	return nil
}
