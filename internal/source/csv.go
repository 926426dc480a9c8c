package source

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"hubmatch-api/internal/models"
)

// CSVSource loads hubs from a local CSV file. The file is re-read on every
// List call so edits show up without a restart.
type CSVSource struct {
	path string
}

// NewCSVSource creates a file-backed hub source reading from path.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{path: path}
}

// load reads and parses the configured file without the active filter.
// Malformed rows are skipped and counted; only an unopenable or unreadable
// file fails the whole load.
func (s *CSVSource) load(ctx context.Context) ([]models.Hub, int, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: open %s: %v", ErrSourceUnavailable, s.path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: read header of %s: %v", ErrSourceUnavailable, s.path, err)
	}
	idx := indexHeader(header)

	var hubs []models.Hub
	skipped := 0
	for row := 2; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("%w: read %s: %v", ErrSourceUnavailable, s.path, err)
		}

		hub, err := parseHubRecord(idx, record)
		if err != nil {
			skipped++
			log.Warn().Int("row", row).Err(err).Msg("skipping malformed hub row")
			continue
		}
		hubs = append(hubs, hub)
	}

	return hubs, skipped, nil
}

// List returns the active hubs from the configured file.
func (s *CSVSource) List(ctx context.Context) ([]models.Hub, error) {
	start := time.Now()

	hubs, skipped, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	hubs = filterActive(hubs)
	if len(hubs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrSourceEmpty, s.path)
	}

	log.Info().
		Int("hubs", len(hubs)).
		Int("skipped", skipped).
		Dur("elapsed", time.Since(start)).
		Str("path", s.path).
		Msg("loaded hubs from csv")

	return hubs, nil
}

// Stats counts the file's hubs before the active filter.
func (s *CSVSource) Stats(ctx context.Context) (models.HubStats, error) {
	hubs, _, err := s.load(ctx)
	if err != nil {
		return models.HubStats{}, err
	}
	return countHubs(hubs), nil
}
