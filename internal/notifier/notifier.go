// Package notifier delivers match results to applicants and operators.
// Delivery is best-effort: the match path fires it in the background and
// never observes the outcome beyond a log line.
package notifier

import (
	"context"
	"errors"

	"hubmatch-api/internal/models"
)

// Notifier sends one notification for a completed match.
type Notifier interface {
	Notify(ctx context.Context, result models.MatchResult, req models.MatchRequest) error
}

// Multi fans a notification out to several notifiers and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, result models.MatchResult, req models.MatchRequest) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, result, req); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
