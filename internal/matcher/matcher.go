// Package matcher finds the nearest hub to a coordinate using great-circle
// distance. It is pure computation with no I/O; candidate lists come from a
// hub source snapshot and are never mutated here.
package matcher

import (
	"errors"
	"math"

	"hubmatch-api/internal/models"
)

const (
	// Mean Earth radius in kilometers (IUGG).
	earthRadiusKm = 6371.0088

	// MilesPerKm converts a kilometer distance to miles. Every reported
	// miles figure is derived from the canonical kilometer distance with
	// this constant.
	MilesPerKm = 0.621371

	// Distances closer than this are considered equal; ties resolve to the
	// hub appearing first in the candidate list.
	tieToleranceKm = 1e-9
)

// ErrNoCandidates is returned when Nearest is called with an empty hub list.
// Callers are expected to translate an empty source snapshot before reaching
// the matcher, so hitting this is an internal guard.
var ErrNoCandidates = errors.New("matcher: no candidate hubs")

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// Distance computes the haversine great-circle distance between two points
// in kilometers.
func Distance(a, b models.Coordinates) float64 {
	lat1 := toRadians(a.Latitude)
	lat2 := toRadians(b.Latitude)
	dLat := toRadians(b.Latitude - a.Latitude)
	dLon := toRadians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

// Nearest returns the hub closest to c and its distance in kilometers. The
// scan is linear; at hundreds of hubs a spatial index buys nothing. The
// returned hub is always an element of hubs.
func Nearest(c models.Coordinates, hubs []models.Hub) (models.Hub, float64, error) {
	if len(hubs) == 0 {
		return models.Hub{}, 0, ErrNoCandidates
	}

	best := hubs[0]
	bestDist := Distance(c, hubs[0].Coordinates)

	for _, hub := range hubs[1:] {
		d := Distance(c, hub.Coordinates)
		if d < bestDist-tieToleranceKm {
			best = hub
			bestDist = d
		}
	}

	return best, bestDist, nil
}
