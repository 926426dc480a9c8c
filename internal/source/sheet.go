package source

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"hubmatch-api/internal/models"
)

const (
	sheetFetchTimeout   = 15 * time.Second
	sheetMaxAttempts    = 4
	sheetInitialBackoff = 500 * time.Millisecond
)

// SheetSource loads hubs from a spreadsheet exported over HTTP (for example
// a Google Sheets xlsx export URL). The remote service may rate-limit, so
// fetches retry with exponential backoff on 429 and 5xx responses.
type SheetSource struct {
	url       string
	sheetName string
	client    *http.Client
}

// NewSheetSource creates a spreadsheet-backed hub source. sheetName is the
// worksheet to read; url must serve the workbook in xlsx format.
func NewSheetSource(url, sheetName string) *SheetSource {
	return &SheetSource{
		url:       url,
		sheetName: sheetName,
		client:    &http.Client{Timeout: sheetFetchTimeout},
	}
}

// load fetches and parses the workbook without the active filter. Row
// handling matches the CSV source: malformed rows are skipped and counted, a
// failed fetch is ErrSourceUnavailable.
func (s *SheetSource) load(ctx context.Context) ([]models.Hub, int, error) {
	wb, err := s.fetch(ctx)
	if err != nil {
		return nil, 0, err
	}
	defer wb.Close()

	rows, err := wb.GetRows(s.sheetName)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: read sheet %q: %v", ErrSourceUnavailable, s.sheetName, err)
	}
	if len(rows) == 0 {
		return nil, 0, nil
	}

	idx := indexHeader(rows[0])

	var hubs []models.Hub
	skipped := 0
	for i, record := range rows[1:] {
		hub, err := parseHubRecord(idx, record)
		if err != nil {
			skipped++
			log.Warn().Int("row", i+2).Err(err).Msg("skipping malformed hub row")
			continue
		}
		hubs = append(hubs, hub)
	}

	return hubs, skipped, nil
}

// List returns the active hubs from the workbook.
func (s *SheetSource) List(ctx context.Context) ([]models.Hub, error) {
	start := time.Now()

	hubs, skipped, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	hubs = filterActive(hubs)
	if len(hubs) == 0 {
		return nil, fmt.Errorf("%w: sheet %q", ErrSourceEmpty, s.sheetName)
	}

	log.Info().
		Int("hubs", len(hubs)).
		Int("skipped", skipped).
		Dur("elapsed", time.Since(start)).
		Msg("loaded hubs from spreadsheet")

	return hubs, nil
}

// Stats counts the workbook's hubs before the active filter.
func (s *SheetSource) Stats(ctx context.Context) (models.HubStats, error) {
	hubs, _, err := s.load(ctx)
	if err != nil {
		return models.HubStats{}, err
	}
	return countHubs(hubs), nil
}

// fetch downloads the workbook, retrying on rate limits and server errors.
func (s *SheetSource) fetch(ctx context.Context) (*excelize.File, error) {
	backoff := sheetInitialBackoff
	var lastErr error

	for attempt := 1; attempt <= sheetMaxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, ctx.Err())
			}
			backoff *= 2
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
		}

		resp, err := s.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			wb, err := excelize.OpenReader(resp.Body)
			resp.Body.Close()
			if err != nil {
				return nil, fmt.Errorf("%w: parse workbook: %v", ErrSourceUnavailable, err)
			}
			return wb, nil

		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			log.Warn().
				Int("attempt", attempt).
				Int("status", resp.StatusCode).
				Msg("spreadsheet fetch retrying")

		default:
			resp.Body.Close()
			return nil, fmt.Errorf("%w: status %d", ErrSourceUnavailable, resp.StatusCode)
		}
	}

	return nil, fmt.Errorf("%w: %d attempts: %v", ErrSourceUnavailable, sheetMaxAttempts, lastErr)
}
