package source

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hubmatch-api/internal/models"
)

// PostgresSource loads hubs with one read query against a shared connection
// pool. Rows are already typed by the schema and are trusted without per-row
// validation.
type PostgresSource struct {
	db    *pgxpool.Pool
	table string
}

// NewPostgresSource creates a database-backed hub source reading from table.
func NewPostgresSource(db *pgxpool.Pool, table string) *PostgresSource {
	return &PostgresSource{db: db, table: table}
}

// The table name comes from config, not from requests, but it is still
// spliced into SQL text, so it goes through identifier quoting.
func listQuery(table string) string {
	return fmt.Sprintf(`
		SELECT
			id,
			name,
			address,
			COALESCE(city, ''),
			COALESCE(state, ''),
			COALESCE(postal_code, ''),
			COALESCE(country, ''),
			latitude,
			longitude,
			COALESCE(region, ''),
			COALESCE(type, '')
		FROM %s
		WHERE active = TRUE
		ORDER BY id
	`, pgx.Identifier{table}.Sanitize())
}

func statsQuery(table string) string {
	return fmt.Sprintf(`
		SELECT COUNT(*), COUNT(*) FILTER (WHERE active)
		FROM %s
	`, pgx.Identifier{table}.Sanitize())
}

// List returns all active hubs from the database.
func (s *PostgresSource) List(ctx context.Context) ([]models.Hub, error) {
	rows, err := s.db.Query(ctx, listQuery(s.table))
	if err != nil {
		return nil, fmt.Errorf("%w: query hubs: %v", ErrSourceUnavailable, err)
	}
	defer rows.Close()

	var hubs []models.Hub
	for rows.Next() {
		var hub models.Hub
		err := rows.Scan(
			&hub.ID,
			&hub.Name,
			&hub.Address,
			&hub.City,
			&hub.State,
			&hub.PostalCode,
			&hub.Country,
			&hub.Coordinates.Latitude,
			&hub.Coordinates.Longitude,
			&hub.Region,
			&hub.Type,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: scan hub: %v", ErrSourceUnavailable, err)
		}
		hub.Active = true
		hubs = append(hubs, hub)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate hubs: %v", ErrSourceUnavailable, err)
	}

	if len(hubs) == 0 {
		return nil, fmt.Errorf("%w: table %s", ErrSourceEmpty, s.table)
	}

	return hubs, nil
}

// Stats counts the table's hubs, active and not.
func (s *PostgresSource) Stats(ctx context.Context) (models.HubStats, error) {
	var total, active int
	if err := s.db.QueryRow(ctx, statsQuery(s.table)).Scan(&total, &active); err != nil {
		return models.HubStats{}, fmt.Errorf("%w: count hubs: %v", ErrSourceUnavailable, err)
	}
	return models.HubStats{Total: total, Active: active, Inactive: total - active}, nil
}
