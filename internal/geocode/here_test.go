package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHereClient_Geocode(t *testing.T) {
	tests := []struct {
		name         string
		responseCode int
		responseBody string
		wantErr      error
		wantLat      float64
		wantLon      float64
		wantAddress  string
	}{
		{
			name:         "successful geocode",
			responseCode: http.StatusOK,
			responseBody: `{"items":[{"title":"1600 Pennsylvania Ave NW, Washington, DC 20500","position":{"lat":38.8977,"lng":-77.0365}}]}`,
			wantLat:      38.8977,
			wantLon:      -77.0365,
			wantAddress:  "1600 Pennsylvania Ave NW, Washington, DC 20500",
		},
		{
			name:         "no results",
			responseCode: http.StatusOK,
			responseBody: `{"items":[]}`,
			wantErr:      ErrAddressNotFound,
		},
		{
			name:         "provider error",
			responseCode: http.StatusInternalServerError,
			responseBody: `{"error":"internal"}`,
			wantErr:      ErrGeocodeFailed,
		},
		{
			name:         "rate limited",
			responseCode: http.StatusTooManyRequests,
			responseBody: `{"error":"too many requests"}`,
			wantErr:      ErrGeocodeFailed,
		},
		{
			name:         "malformed response",
			responseCode: http.StatusOK,
			responseBody: `{"items":`,
			wantErr:      ErrGeocodeFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/geocode", r.URL.Path)
				assert.Equal(t, "1", r.URL.Query().Get("limit"))
				assert.Equal(t, "test-key", r.URL.Query().Get("apiKey"))
				w.WriteHeader(tt.responseCode)
				w.Write([]byte(tt.responseBody))
			}))
			defer srv.Close()

			client := NewHereClient("test-key", srv.URL)
			coords, formatted, err := client.Geocode(context.Background(), "1600 Pennsylvania Ave")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantLat, coords.Latitude)
			assert.Equal(t, tt.wantLon, coords.Longitude)
			assert.Equal(t, tt.wantAddress, formatted)
		})
	}
}

func TestHereClient_Geocode_ContextTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"items":[]}`))
	}))
	defer srv.Close()

	client := NewHereClient("test-key", srv.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, _, err := client.Geocode(ctx, "somewhere")
	assert.ErrorIs(t, err, ErrGeocodeFailed)
}
