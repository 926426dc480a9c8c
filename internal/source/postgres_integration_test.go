//go:build integration

package source

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jackc/pgx/v5/pgxpool"
)

func setupTestDatabase(t *testing.T) *pgxpool.Pool {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "testdb",
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections"),
	}

	postgresC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		postgresC.Terminate(ctx)
	})

	host, err := postgresC.Host(ctx)
	require.NoError(t, err)

	port, err := postgresC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connString := "postgres://testuser:testpass@" + host + ":" + port.Port() + "/testdb?sslmode=disable"

	pool, err := pgxpool.New(ctx, connString)
	require.NoError(t, err)

	t.Cleanup(func() {
		pool.Close()
	})

	_, err = pool.Exec(ctx, `
		CREATE TABLE hubs (
			id VARCHAR(64) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			address VARCHAR(255) NOT NULL,
			city VARCHAR(255),
			state VARCHAR(255),
			postal_code VARCHAR(32),
			country VARCHAR(64),
			latitude DOUBLE PRECISION NOT NULL,
			longitude DOUBLE PRECISION NOT NULL,
			region VARCHAR(64),
			type VARCHAR(64),
			active BOOLEAN NOT NULL DEFAULT TRUE
		);

		INSERT INTO hubs (id, name, address, city, state, postal_code, country, latitude, longitude, region, type, active) VALUES
		('hub-1', 'Downtown Store', '123 Main St', 'Springfield', 'IL', '62701', 'USA', 39.7817, -89.6501, 'Midwest', 'store', TRUE),
		('hub-2', 'North Depot', '456 Oak St', 'Chicago', 'IL', '60601', 'USA', 41.8781, -87.6298, 'Midwest', 'warehouse', TRUE),
		('hub-3', 'Closed Site', '1 Nowhere Rd', NULL, NULL, NULL, NULL, 40.0, -88.0, NULL, NULL, FALSE);
	`)
	require.NoError(t, err)

	return pool
}

func TestPostgresSource_List(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	pool := setupTestDatabase(t)
	src := NewPostgresSource(pool, "hubs")
	ctx := context.Background()

	hubs, err := src.List(ctx)
	require.NoError(t, err)

	// Inactive hubs are excluded by the query.
	require.Len(t, hubs, 2)
	assert.Equal(t, "hub-1", hubs[0].ID)
	assert.Equal(t, "Downtown Store", hubs[0].Name)
	assert.Equal(t, 39.7817, hubs[0].Coordinates.Latitude)
	assert.Equal(t, -89.6501, hubs[0].Coordinates.Longitude)
	assert.True(t, hubs[0].Active)
	assert.Equal(t, "hub-2", hubs[1].ID)
}

func TestPostgresSource_Stats(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	pool := setupTestDatabase(t)
	src := NewPostgresSource(pool, "hubs")

	stats, err := src.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.Active)
	assert.Equal(t, 1, stats.Inactive)
}

func TestPostgresSource_List_Empty(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	pool := setupTestDatabase(t)
	ctx := context.Background()

	_, err := pool.Exec(ctx, "DELETE FROM hubs")
	require.NoError(t, err)

	_, err = NewPostgresSource(pool, "hubs").List(ctx)
	assert.ErrorIs(t, err, ErrSourceEmpty)
}
