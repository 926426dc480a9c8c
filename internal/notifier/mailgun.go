package notifier

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"hubmatch-api/internal/models"
)

const mailgunBaseURL = "https://api.mailgun.net/v3"

// MailgunNotifier sends the applicant a match summary through the Mailgun
// messages API. Same content as the SendGrid notifier; the provider is picked
// at wiring time.
type MailgunNotifier struct {
	apiKey  string
	domain  string
	from    string
	adminCC string
	baseURL string
	client  *http.Client
}

// NewMailgunNotifier creates a Mailgun-backed email notifier. adminCC may be
// empty.
func NewMailgunNotifier(apiKey, domain, from, adminCC string) *MailgunNotifier {
	return &MailgunNotifier{
		apiKey:  apiKey,
		domain:  domain,
		from:    from,
		adminCC: adminCC,
		baseURL: mailgunBaseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (n *MailgunNotifier) Notify(ctx context.Context, result models.MatchResult, req models.MatchRequest) error {
	form := url.Values{}
	form.Set("from", n.from)
	form.Add("to", req.Email)
	if n.adminCC != "" {
		form.Add("to", n.adminCC)
	}
	form.Set("subject", fmt.Sprintf("Your Nearest Delivery Hub: %s", result.MatchedHub.Name))
	form.Set("html", emailHTML(result, req))

	endpoint := fmt.Sprintf("%s/%s/messages", n.baseURL, n.domain)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("notifier: build mailgun request: %w", err)
	}
	httpReq.SetBasicAuth("api", n.apiKey)
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("notifier: mailgun request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("notifier: mailgun API returned status %d", resp.StatusCode)
	}

	return nil
}
