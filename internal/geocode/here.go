package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"hubmatch-api/internal/models"
)

const defaultTimeout = 10 * time.Second

// HereClient geocodes addresses against the HERE Geocoding API.
type HereClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewHereClient creates a HERE geocoding client. baseURL is the API root,
// e.g. https://geocode.search.hereapi.com/v1.
func NewHereClient(apiKey, baseURL string) *HereClient {
	return &HereClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: defaultTimeout},
	}
}

type hereResponse struct {
	Items []hereItem `json:"items"`
}

type hereItem struct {
	Title    string       `json:"title"`
	Position herePosition `json:"position"`
}

type herePosition struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Geocode resolves address to coordinates and the provider's formatted
// address. Zero results map to ErrAddressNotFound; any transport or status
// failure maps to ErrGeocodeFailed.
func (c *HereClient) Geocode(ctx context.Context, address string) (models.Coordinates, string, error) {
	start := time.Now()

	params := url.Values{}
	params.Set("q", address)
	params.Set("apiKey", c.apiKey)
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/geocode?"+params.Encode(), nil)
	if err != nil {
		return models.Coordinates{}, "", fmt.Errorf("%w: %v", ErrGeocodeFailed, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return models.Coordinates{}, "", fmt.Errorf("%w: %v", ErrGeocodeFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Coordinates{}, "", fmt.Errorf("%w: status %d", ErrGeocodeFailed, resp.StatusCode)
	}

	var body hereResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return models.Coordinates{}, "", fmt.Errorf("%w: decode response: %v", ErrGeocodeFailed, err)
	}

	if len(body.Items) == 0 {
		return models.Coordinates{}, "", fmt.Errorf("%w: %q", ErrAddressNotFound, address)
	}

	best := body.Items[0]
	coords := models.Coordinates{
		Latitude:  best.Position.Lat,
		Longitude: best.Position.Lng,
	}

	formatted := best.Title
	if formatted == "" {
		formatted = address
	}

	log.Debug().
		Str("address", address).
		Float64("lat", coords.Latitude).
		Float64("lon", coords.Longitude).
		Dur("elapsed", time.Since(start)).
		Msg("geocoded address")

	return coords, formatted, nil
}
