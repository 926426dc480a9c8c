package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"hubmatch-api/internal/config"

	"github.com/jackc/pgx/v5"
)

type hubRecord struct {
	ID         string
	Name       string
	Address    string
	City       string
	State      string
	PostalCode string
	Country    string
	Lat        float64
	Lon        float64
	Region     string
	Type       string
	Active     bool
}

func main() {
	file := flag.String("file", "", "Path to the CSV file to import")
	flag.Parse()

	if *file == "" {
		fmt.Println("Error: --file flag is required")
		os.Exit(1)
	}

	fmt.Printf("Starting import from file: %s\n", *file)

	records, err := parseCSV(*file)
	if err != nil {
		fmt.Printf("Error parsing CSV: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Parsed %d records\n", len(records))

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	conn, err := pgx.Connect(context.Background(), cfg.DBSource)
	if err != nil {
		fmt.Printf("Error connecting to database: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close(context.Background())

	if err := createTableIfNotExists(conn); err != nil {
		fmt.Printf("Error creating table: %v\n", err)
		os.Exit(1)
	}

	if err := insertRecords(conn, records); err != nil {
		fmt.Printf("Error inserting records: %v\n", err)
		os.Exit(1)
	}

	if err := verifyImport(conn, len(records)); err != nil {
		fmt.Printf("Error verifying import: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Successfully imported %d records\n", len(records))
}

func parseCSV(filePath string) ([]hubRecord, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}

	field := func(record []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var records []hubRecord
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}

		lat, err := strconv.ParseFloat(field(record, "latitude"), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid latitude: %s", field(record, "latitude"))
		}

		lon, err := strconv.ParseFloat(field(record, "longitude"), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid longitude: %s", field(record, "longitude"))
		}

		active := true
		if v := field(record, "active"); v != "" {
			active, err = strconv.ParseBool(v)
			if err != nil {
				return nil, fmt.Errorf("invalid active flag: %s", v)
			}
		}

		records = append(records, hubRecord{
			ID:         field(record, "id"),
			Name:       field(record, "name"),
			Address:    field(record, "address"),
			City:       field(record, "city"),
			State:      field(record, "state"),
			PostalCode: field(record, "postal_code"),
			Country:    field(record, "country"),
			Lat:        lat,
			Lon:        lon,
			Region:     field(record, "region"),
			Type:       field(record, "type"),
			Active:     active,
		})
	}

	return records, nil
}

func createTableIfNotExists(conn *pgx.Conn) error {
	query := `
	CREATE TABLE IF NOT EXISTS hubs (
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
	`
	_, err := conn.Exec(context.Background(), query)
	return err
}

func insertRecords(conn *pgx.Conn, records []hubRecord) error {
	_, err := conn.CopyFrom(
		context.Background(),
		pgx.Identifier{"hubs"},
		[]string{"id", "name", "address", "city", "state", "postal_code", "country", "latitude", "longitude", "region", "type", "active"},
		pgx.CopyFromSlice(len(records), func(i int) ([]interface{}, error) {
			r := records[i]
			return []interface{}{r.ID, r.Name, r.Address, r.City, r.State, r.PostalCode, r.Country, r.Lat, r.Lon, r.Region, r.Type, r.Active}, nil
		}),
	)
	return err
}

func verifyImport(conn *pgx.Conn, expectedCount int) error {
	var count int
	err := conn.QueryRow(context.Background(), "SELECT COUNT(*) FROM hubs").Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to count records: %w", err)
	}

	if count != expectedCount {
		return fmt.Errorf("record count mismatch: expected %d, got %d", expectedCount, count)
	}

	return nil
}
