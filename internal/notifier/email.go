package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"hubmatch-api/internal/models"
)

const sendGridURL = "https://api.sendgrid.com/v3/mail/send"

// EmailNotifier sends the applicant a match summary through the SendGrid
// mail API, with an optional operator address on CC.
type EmailNotifier struct {
	apiKey  string
	from    string
	adminCC string
	baseURL string
	client  *http.Client
}

// NewEmailNotifier creates a SendGrid-backed email notifier. adminCC may be
// empty.
func NewEmailNotifier(apiKey, from, adminCC string) *EmailNotifier {
	return &EmailNotifier{
		apiKey:  apiKey,
		from:    from,
		adminCC: adminCC,
		baseURL: sendGridURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type sgAddress struct {
	Email string `json:"email"`
}

type sgPersonalization struct {
	To []sgAddress `json:"to"`
	CC []sgAddress `json:"cc,omitempty"`
}

type sgContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sgMail struct {
	Personalizations []sgPersonalization `json:"personalizations"`
	From             sgAddress           `json:"from"`
	Subject          string              `json:"subject"`
	Content          []sgContent         `json:"content"`
}

func (n *EmailNotifier) Notify(ctx context.Context, result models.MatchResult, req models.MatchRequest) error {
	p := sgPersonalization{To: []sgAddress{{Email: req.Email}}}
	if n.adminCC != "" {
		p.CC = []sgAddress{{Email: n.adminCC}}
	}

	mail := sgMail{
		Personalizations: []sgPersonalization{p},
		From:             sgAddress{Email: n.from},
		Subject:          fmt.Sprintf("Your Nearest Delivery Hub: %s", result.MatchedHub.Name),
		Content:          []sgContent{{Type: "text/html", Value: emailHTML(result, req)}},
	}

	body, err := json.Marshal(mail)
	if err != nil {
		return fmt.Errorf("notifier: marshal mail: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, n.baseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notifier: build mail request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+n.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("notifier: mail request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("notifier: mail API returned status %d", resp.StatusCode)
	}

	return nil
}

func emailHTML(result models.MatchResult, req models.MatchRequest) string {
	name := req.Name
	if name == "" {
		name = strings.SplitN(req.Email, "@", 2)[0]
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Your Nearest Delivery Hub</h2>
  <p>Hello %s,</p>
  <p>Thank you for your interest in joining our delivery team. We've found the nearest delivery hub to your location:</p>
  <div style="background-color: #f0f7ff; padding: 15px; border-radius: 5px;">
    <h3>%s</h3>
    <p><strong>Address:</strong> %s</p>
    <p><strong>Distance:</strong> %.1f miles from your location</p>
  </div>
  <p>Your application will be forwarded to this hub's management team, who will contact you with next steps.</p>
  <p>Best regards,<br>The Delivery Team</p>
  <p style="font-size: 12px; color: #777;">This is an automated message. Please do not reply to this email.</p>
</body>
</html>`, name, result.MatchedHub.Name, result.MatchedHub.Address, result.DistanceMiles)
}
