package geocode

import (
	"context"
	"errors"

	"hubmatch-api/internal/models"
)

var (
	// ErrAddressNotFound means the provider returned zero results for the
	// address. A client-side problem, distinct from provider failure.
	ErrAddressNotFound = errors.New("geocode: address not found")

	// ErrGeocodeFailed means the provider request itself failed (network,
	// timeout, non-2xx status).
	ErrGeocodeFailed = errors.New("geocode: provider request failed")
)

// Geocoder converts a free-text address into coordinates and a normalized
// address string.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (models.Coordinates, string, error)
}
