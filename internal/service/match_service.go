// Package service orchestrates a match: geocode the address, snapshot the
// hub list, pick the nearest hub and fire the notification.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"hubmatch-api/internal/geocode"
	"hubmatch-api/internal/matcher"
	"hubmatch-api/internal/models"
	"hubmatch-api/internal/notifier"
	"hubmatch-api/internal/source"
)

// MaxBatchSize caps one batch request. Larger batches are rejected before any
// work starts.
const MaxBatchSize = 100

const notifyTimeout = 30 * time.Second

// ErrBatchTooLarge is returned when a batch exceeds MaxBatchSize requests.
var ErrBatchTooLarge = fmt.Errorf("service: batch exceeds %d requests", MaxBatchSize)

// Error kind strings reported in batch outcomes and used by the HTTP layer.
const (
	KindAddressNotFound   = "address_not_found"
	KindGeocodeFailed     = "geocode_failed"
	KindSourceUnavailable = "source_unavailable"
	KindSourceEmpty       = "source_empty"
	KindInternal          = "internal"
)

// ErrorKind classifies err into one of the outcome kind strings.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, geocode.ErrAddressNotFound):
		return KindAddressNotFound
	case errors.Is(err, geocode.ErrGeocodeFailed):
		return KindGeocodeFailed
	case errors.Is(err, source.ErrSourceUnavailable):
		return KindSourceUnavailable
	case errors.Is(err, source.ErrSourceEmpty):
		return KindSourceEmpty
	default:
		return KindInternal
	}
}

// MatchService matches applicant addresses to their nearest hub.
type MatchService struct {
	geocoder geocode.Geocoder
	hubs     source.HubSource
	notify   notifier.Notifier
	workers  int

	// wg tracks in-flight background notifications so tests and shutdown
	// can wait for them.
	wg sync.WaitGroup
}

// NewMatchService creates a match service. notify may be nil when no
// notification channel is configured. workers bounds batch concurrency and
// is clamped to at least 1.
func NewMatchService(g geocode.Geocoder, hubs source.HubSource, notify notifier.Notifier, workers int) *MatchService {
	if workers < 1 {
		workers = 1
	}
	return &MatchService{
		geocoder: g,
		hubs:     hubs,
		notify:   notify,
		workers:  workers,
	}
}

// Match resolves one request to its nearest hub. On success a notification
// is dispatched in the background; its outcome never affects the returned
// result.
func (s *MatchService) Match(ctx context.Context, req models.MatchRequest) (models.MatchResult, error) {
	start := time.Now()

	coords, formatted, err := s.geocoder.Geocode(ctx, req.Address)
	if err != nil {
		return models.MatchResult{}, fmt.Errorf("match %q: %w", req.Address, err)
	}

	hubs, err := s.hubs.List(ctx)
	if err != nil {
		return models.MatchResult{}, fmt.Errorf("match %q: %w", req.Address, err)
	}

	hub, distKm, err := matcher.Nearest(coords, hubs)
	if err != nil {
		// Unreachable while the source reports empty snapshots itself.
		return models.MatchResult{}, fmt.Errorf("match %q: %w", req.Address, err)
	}

	result := models.MatchResult{
		InputAddress:        req.Address,
		GeocodedAddress:     formatted,
		GeocodedCoordinates: coords,
		MatchedHub:          hub,
		DistanceKm:          distKm,
		DistanceMiles:       distKm * matcher.MilesPerKm,
		ProcessingTimeMs:    float64(time.Since(start).Microseconds()) / 1000.0,
		Timestamp:           time.Now().UTC(),
	}

	log.Info().
		Str("address", req.Address).
		Str("hub", hub.Name).
		Float64("distance_km", distKm).
		Float64("processing_ms", result.ProcessingTimeMs).
		Msg("matched address to hub")

	s.dispatchNotification(result, req)

	return result, nil
}

// MatchBatch runs each request through Match concurrently, bounded by the
// worker limit, and returns one outcome per input index. A failed item never
// aborts the rest; the output is positionally aligned with the input.
func (s *MatchService) MatchBatch(ctx context.Context, reqs []models.MatchRequest) ([]models.BatchOutcome, error) {
	if len(reqs) > MaxBatchSize {
		return nil, ErrBatchTooLarge
	}

	outcomes := make([]models.BatchOutcome, len(reqs))
	sem := make(chan struct{}, s.workers)
	var wg sync.WaitGroup

	for i, req := range reqs {
		wg.Add(1)
		go func(i int, req models.MatchRequest) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			result, err := s.Match(ctx, req)
			if err != nil {
				outcomes[i] = models.BatchOutcome{
					Index: i,
					Error: err.Error(),
					Kind:  ErrorKind(err),
				}
				return
			}
			outcomes[i] = models.BatchOutcome{Index: i, Result: &result}
		}(i, req)
	}

	wg.Wait()
	return outcomes, nil
}

// dispatchNotification fires the notifier in the background. Panics and
// errors are contained here so the request path cannot be affected.
func (s *MatchService) dispatchNotification(result models.MatchResult, req models.MatchRequest) {
	if s.notify == nil {
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Msg("notification dispatch panicked")
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		if err := s.notify.Notify(ctx, result, req); err != nil {
			log.Error().Err(err).Str("email", req.Email).Msg("notification dispatch failed")
			return
		}
		log.Info().Str("email", req.Email).Str("hub", result.MatchedHub.Name).Msg("notification sent")
	}()
}

// Wait blocks until all background notifications have finished.
func (s *MatchService) Wait() {
	s.wg.Wait()
}
