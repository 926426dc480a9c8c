// Package source provides the hub list backends. Every backend returns a
// fresh snapshot slice per call, so concurrent matches can each hold a
// consistent list without locking.
package source

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"hubmatch-api/internal/models"
)

var (
	// ErrSourceUnavailable means the backend could not be reached or read
	// (network, credentials, unopenable file).
	ErrSourceUnavailable = errors.New("source: hub source unavailable")

	// ErrSourceEmpty means the backend loaded fine but produced zero active
	// hubs. A valid-but-unusable state, surfaced separately so callers can
	// report misconfiguration instead of an outage.
	ErrSourceEmpty = errors.New("source: no active hubs")
)

// HubSource provides the current hub list. List is safe to call from
// concurrent matches; each call returns an independent snapshot.
type HubSource interface {
	List(ctx context.Context) ([]models.Hub, error)
}

// countHubs tallies a raw, unfiltered hub load into inventory statistics.
func countHubs(hubs []models.Hub) models.HubStats {
	stats := models.HubStats{Total: len(hubs)}
	for _, h := range hubs {
		if h.Active {
			stats.Active++
		}
	}
	stats.Inactive = stats.Total - stats.Active
	return stats
}

// columnIndex maps the tabular header names used by the CSV and spreadsheet
// backends to their column positions.
type columnIndex map[string]int

func indexHeader(header []string) columnIndex {
	idx := make(columnIndex, len(header))
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return idx
}

func (c columnIndex) get(record []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// parseHubRecord builds a Hub from one tabular row. name, address, latitude
// and longitude are required; everything else is optional and active
// defaults to true.
func parseHubRecord(idx columnIndex, record []string) (models.Hub, error) {
	name := idx.get(record, "name")
	if name == "" {
		return models.Hub{}, fmt.Errorf("missing name")
	}

	address := idx.get(record, "address")
	if address == "" {
		return models.Hub{}, fmt.Errorf("missing address")
	}

	lat, err := strconv.ParseFloat(idx.get(record, "latitude"), 64)
	if err != nil {
		return models.Hub{}, fmt.Errorf("invalid latitude %q", idx.get(record, "latitude"))
	}

	lon, err := strconv.ParseFloat(idx.get(record, "longitude"), 64)
	if err != nil {
		return models.Hub{}, fmt.Errorf("invalid longitude %q", idx.get(record, "longitude"))
	}

	active := true
	if v := idx.get(record, "active"); v != "" {
		active, err = strconv.ParseBool(v)
		if err != nil {
			return models.Hub{}, fmt.Errorf("invalid active flag %q", v)
		}
	}

	return models.Hub{
		ID:         idx.get(record, "id"),
		Name:       name,
		Address:    address,
		City:       idx.get(record, "city"),
		State:      idx.get(record, "state"),
		PostalCode: idx.get(record, "postal_code"),
		Country:    idx.get(record, "country"),
		Coordinates: models.Coordinates{
			Latitude:  lat,
			Longitude: lon,
		},
		Region: idx.get(record, "region"),
		Type:   idx.get(record, "type"),
		Active: active,
	}, nil
}

// filterActive drops inactive hubs from a freshly loaded snapshot.
func filterActive(hubs []models.Hub) []models.Hub {
	out := make([]models.Hub, 0, len(hubs))
	for _, h := range hubs {
		if h.Active {
			out = append(out, h)
		}
	}
	return out
}
