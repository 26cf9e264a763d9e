package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"trip-planner-service/internal/domain"
	"trip-planner-service/internal/platform/db"
	"trip-planner-service/internal/platform/logging"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"
)

// InitAndSeed creates the schema and, when the seed file exists, loads known
// places into the geocode cache. An empty or missing seedPath only skips seeding.
func InitAndSeed(ctx context.Context, q db.Querier, seedPath string, logger logrus.FieldLogger) error {
	logger = logging.OrStandard(logger)

	logger.Info("Initializing database schema...")
	if err := InitSchema(ctx, q); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}
	logger.Info("Schema ready.")

	if seedPath == "" {
		return nil
	}
	if _, err := os.Stat(seedPath); errors.Is(err, fs.ErrNotExist) {
		logger.WithField("path", seedPath).Info("Seed file not found, skipping place seeding.")
		return nil
	}

	logger.WithField("path", seedPath).Info("Seeding geocode cache...")
	if err := SeedPlacesFromJSON(ctx, q, seedPath); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}
	logger.Info("Seeding complete.")

	return nil
}

// Initialize the Postgres schema for trips and the geocode cache.
func InitSchema(ctx context.Context, q db.Querier) error {
	if q == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := q.Begin(ctx)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}

	createTripsQuery := `
	CREATE TABLE IF NOT EXISTS trips (
		id UUID PRIMARY KEY,
		current_location VARCHAR(255) NOT NULL,
		pickup_location VARCHAR(255) NOT NULL,
		dropoff_location VARCHAR(255) NOT NULL,
		current_cycle_used NUMERIC(5, 2) NOT NULL,
		route_summary JSONB NOT NULL DEFAULT '{}',
		hos_logs JSONB NOT NULL DEFAULT '[]',
		map_data JSONB NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`

	createGeocodeCacheQuery := `
	CREATE TABLE IF NOT EXISTS geocode_cache (
		query TEXT PRIMARY KEY,
		lon DOUBLE PRECISION NOT NULL,
		lat DOUBLE PRECISION NOT NULL,
		display_name TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_trips_created_at
	ON trips(created_at DESC);
	`

	statements := []string{
		createTripsQuery,
		createGeocodeCacheQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type PlaceSeed struct {
	Query       string  `json:"query"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	DisplayName string  `json:"display_name"`
}

// Pre-populate the geocode cache with known places from a JSON file, so
// common queries never reach the external geocoder.
func SeedPlacesFromJSON(ctx context.Context, q db.Querier, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed places: read %q: %w", jsonPath, err)
	}

	var data []PlaceSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed places: parse json: %w", err)
	}

	rows := make([]PlaceSeed, 0, len(data))
	for i, item := range data {
		query := domain.NormalizeQuery(item.Query)
		if query == "" {
			return fmt.Errorf("seed places: item at index %d: query cannot be empty", i+1)
		}
		if item.Latitude < -90 || item.Latitude > 90 || item.Longitude < -180 || item.Longitude > 180 {
			return fmt.Errorf("seed places: item %q: coordinates out of range", item.Query)
		}

		name := strings.TrimSpace(item.DisplayName)
		if name == "" {
			name = strings.TrimSpace(item.Query)
		}
		rows = append(rows, PlaceSeed{Query: query, Latitude: item.Latitude, Longitude: item.Longitude, DisplayName: name})
	}

	tx, err := q.Begin(ctx)
	if err != nil {
		return fmt.Errorf("seed places: begin tx: %w", err)
	}

	if err := insertPlaces(ctx, tx, rows); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("seed places: commit tx: %w", err)
	}

	return nil
}

func insertPlaces(ctx context.Context, tx pgx.Tx, rows []PlaceSeed) error {
	query := `
	INSERT INTO geocode_cache (query, lon, lat, display_name)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (query) DO UPDATE
	SET lon = EXCLUDED.lon,
		lat = EXCLUDED.lat,
		display_name = EXCLUDED.display_name,
		updated_at = now();
	`
	for _, p := range rows {
		if _, err := tx.Exec(ctx, query, p.Query, p.Longitude, p.Latitude, p.DisplayName); err != nil {
			return fmt.Errorf("seed places: insert query=%q: %w", p.Query, err)
		}
	}
	return nil
}
