package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, sheetName string, rows [][]interface{}) []byte {
	t.Helper()

	wb := excelize.NewFile()
	defer wb.Close()

	_, err := wb.NewSheet(sheetName)
	require.NoError(t, err)

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, wb.SetSheetRow(sheetName, cell, &row))
	}

	buf, err := wb.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func hubWorkbook(t *testing.T) []byte {
	return buildWorkbook(t, "Hubs", [][]interface{}{
		{"id", "name", "address", "latitude", "longitude", "active"},
		{"hub-1", "Downtown Store", "123 Main St", 39.7817, -89.6501, "true"},
		{"hub-2", "North Depot", "456 Oak St", "bad-lat", -87.6298, "true"},
		{"hub-3", "East Depot", "789 Elm St", 40.0, -88.0, "false"},
	})
}

func TestSheetSource_List(t *testing.T) {
	body := hubWorkbook(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	}))
	defer srv.Close()

	hubs, err := NewSheetSource(srv.URL, "Hubs").List(context.Background())
	require.NoError(t, err)

	// hub-2 is malformed, hub-3 inactive.
	require.Len(t, hubs, 1)
	assert.Equal(t, "hub-1", hubs[0].ID)
	assert.Equal(t, 39.7817, hubs[0].Coordinates.Latitude)
}

func TestSheetSource_List_RetriesOnRateLimit(t *testing.T) {
	body := hubWorkbook(t)
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write(body)
	}))
	defer srv.Close()

	hubs, err := NewSheetSource(srv.URL, "Hubs").List(context.Background())
	require.NoError(t, err)
	assert.Len(t, hubs, 1)
	assert.Equal(t, int32(3), calls.Load())
}

func TestSheetSource_List_GivesUpAfterMaxAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewSheetSource(srv.URL, "Hubs").List(context.Background())
	assert.ErrorIs(t, err, ErrSourceUnavailable)
	assert.Equal(t, int32(sheetMaxAttempts), calls.Load())
}

func TestSheetSource_List_ClientErrorDoesNotRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := NewSheetSource(srv.URL, "Hubs").List(context.Background())
	assert.ErrorIs(t, err, ErrSourceUnavailable)
	assert.Equal(t, int32(1), calls.Load())
}

func TestSheetSource_Stats(t *testing.T) {
	body := hubWorkbook(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	}))
	defer srv.Close()

	stats, err := NewSheetSource(srv.URL, "Hubs").Stats(context.Background())
	require.NoError(t, err)

	// hub-2 is malformed and not counted at all.
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Active)
	assert.Equal(t, 1, stats.Inactive)
}

func TestSheetSource_List_MissingSheet(t *testing.T) {
	body := buildWorkbook(t, "Other", [][]interface{}{{"name"}})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	}))
	defer srv.Close()

	_, err := NewSheetSource(srv.URL, "Hubs").List(context.Background())
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}
