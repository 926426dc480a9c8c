package matcher

import (
	"testing"

	"hubmatch-api/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	whiteHouse  = models.Coordinates{Latitude: 38.8977, Longitude: -77.0365}
	nycCityHall = models.Coordinates{Latitude: 40.7128, Longitude: -74.0060}
)

func testHubs() []models.Hub {
	return []models.Hub{
		{ID: "A", Name: "DC Hub", Coordinates: whiteHouse, Active: true},
		{ID: "B", Name: "NYC Hub", Coordinates: nycCityHall, Active: true},
	}
}

func TestDistance_Symmetric(t *testing.T) {
	pairs := []struct {
		a, b models.Coordinates
	}{
		{whiteHouse, nycCityHall},
		{models.Coordinates{Latitude: 35.681236, Longitude: 139.767125}, models.Coordinates{Latitude: -33.8688, Longitude: 151.2093}},
		{models.Coordinates{Latitude: 0, Longitude: 0}, models.Coordinates{Latitude: 0, Longitude: 180}},
		{models.Coordinates{Latitude: -90, Longitude: 0}, models.Coordinates{Latitude: 90, Longitude: 0}},
	}

	for _, p := range pairs {
		assert.InDelta(t, Distance(p.a, p.b), Distance(p.b, p.a), 1e-9)
	}
}

func TestDistance_Zero(t *testing.T) {
	assert.InDelta(t, 0.0, Distance(whiteHouse, whiteHouse), 1e-9)
}

func TestDistance_KnownCityPair(t *testing.T) {
	// Washington DC to New York City is roughly 328 km great-circle.
	d := Distance(whiteHouse, nycCityHall)
	assert.InDelta(t, 328.0, d, 2.0)
}

func TestNearest_AtHubLocation(t *testing.T) {
	tests := []struct {
		name   string
		query  models.Coordinates
		wantID string
	}{
		{name: "at DC hub", query: whiteHouse, wantID: "A"},
		{name: "at NYC hub", query: nycCityHall, wantID: "B"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hub, dist, err := Nearest(tt.query, testHubs())
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, hub.ID)
			assert.InDelta(t, 0.0, dist, 1e-6)
		})
	}
}

func TestNearest_ReturnsMinimum(t *testing.T) {
	hubs := []models.Hub{
		{ID: "tokyo", Coordinates: models.Coordinates{Latitude: 35.6762, Longitude: 139.6503}},
		{ID: "osaka", Coordinates: models.Coordinates{Latitude: 34.6937, Longitude: 135.5023}},
		{ID: "sapporo", Coordinates: models.Coordinates{Latitude: 43.0618, Longitude: 141.3545}},
		{ID: "fukuoka", Coordinates: models.Coordinates{Latitude: 33.5902, Longitude: 130.4017}},
	}
	query := models.Coordinates{Latitude: 35.0116, Longitude: 135.7681} // Kyoto

	hub, dist, err := Nearest(query, hubs)
	require.NoError(t, err)
	assert.Equal(t, "osaka", hub.ID)

	// No other hub may be strictly closer than the returned one.
	for _, h := range hubs {
		assert.GreaterOrEqual(t, Distance(query, h.Coordinates), dist-1e-9)
	}
}

func TestNearest_TieBreakFirstInOrder(t *testing.T) {
	hubs := []models.Hub{
		{ID: "first", Coordinates: whiteHouse},
		{ID: "second", Coordinates: whiteHouse},
	}

	// Deterministic across repeated calls.
	for i := 0; i < 10; i++ {
		hub, _, err := Nearest(whiteHouse, hubs)
		require.NoError(t, err)
		assert.Equal(t, "first", hub.ID)
	}
}

func TestNearest_EmptyList(t *testing.T) {
	_, _, err := Nearest(whiteHouse, nil)
	assert.ErrorIs(t, err, ErrNoCandidates)
}

func TestMilesConversion(t *testing.T) {
	// The same city pair is roughly 204 miles.
	km := Distance(whiteHouse, nycCityHall)
	assert.InDelta(t, 204.0, km*MilesPerKm, 2.0)
}
