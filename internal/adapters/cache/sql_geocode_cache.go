package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"trip-planner-service/internal/domain"
	"trip-planner-service/internal/platform/db"
	"trip-planner-service/internal/platform/obs"
	"trip-planner-service/internal/ports"

	"github.com/jackc/pgx/v5"
)

// SQLGeocodeCache is a Postgres-backed cache mapping normalized queries to
// geocoding results.
type SQLGeocodeCache struct {
	DB db.Querier
}

func NewSQLGeocodeCache(q db.Querier) *SQLGeocodeCache {
	return &SQLGeocodeCache{DB: q}
}

// Fetch cached results for the given queries. Misses are absent from the map.
func (s *SQLGeocodeCache) GetMany(
	ctx context.Context,
	queries []string,
) (_ map[string]ports.GeocodeResult, err error) {
	defer obs.Time(ctx, "geocode.cache.GetMany")(&err)

	if s.DB == nil {
		return nil, errors.New("geocode cache: db is nil")
	}

	seen := map[string]struct{}{}
	uniq := make([]string, 0, len(queries))
	for _, q := range queries {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}

		if _, ok := seen[q]; ok {
			continue
		}
		seen[q] = struct{}{}
		uniq = append(uniq, q)
	}

	if len(uniq) == 0 {
		return map[string]ports.GeocodeResult{}, nil
	}

	rows, err := s.DB.Query(ctx, `
	SELECT query, lon, lat, display_name
	FROM geocode_cache
	WHERE query = ANY($1::text[])
	`, uniq)
	if err != nil {
		return nil, fmt.Errorf("get geocode cache: query geocode_cache table: %w", err)
	}
	defer rows.Close()

	out := make(map[string]ports.GeocodeResult, len(uniq))
	for rows.Next() {
		var query, displayName string
		var lon, lat float64
		if err := rows.Scan(&query, &lon, &lat, &displayName); err != nil {
			return nil, fmt.Errorf("get geocode cache: scan rows: %w", err)
		}
		out[query] = ports.GeocodeResult{
			Coordinates: domain.Coordinates{Lon: lon, Lat: lat},
			DisplayName: displayName,
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get geocode cache: row iteration: %w", err)
	}

	return out, nil
}

// Store query -> result mappings in the cache in one transaction.
func (s *SQLGeocodeCache) PutMany(ctx context.Context, results map[string]ports.GeocodeResult) (err error) {
	defer obs.Time(ctx, "geocode.cache.PutMany")(&err)

	if s.DB == nil {
		return errors.New("geocode cache: db is nil")
	}

	if len(results) == 0 {
		return nil
	}

	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return fmt.Errorf("insert geocode cache: db begin: %w", err)
	}

	if err := putGeocodes(ctx, tx, results); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("insert geocode cache commit: %w", err)
	}

	return nil
}

func putGeocodes(ctx context.Context, tx pgx.Tx, results map[string]ports.GeocodeResult) error {
	for query, r := range results {
		if strings.TrimSpace(query) == "" {
			return errors.New("insert geocode cache: empty query key")
		}

		if _, err := tx.Exec(ctx, `
		INSERT INTO geocode_cache (query, lon, lat, display_name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (query) DO UPDATE
		SET lon = EXCLUDED.lon,
			lat = EXCLUDED.lat,
			display_name = EXCLUDED.display_name,
			updated_at = now()
		`, query, r.Coordinates.Lon, r.Coordinates.Lat, r.DisplayName); err != nil {
			return fmt.Errorf("insert geocode cache query=%q: %w", query, err)
		}
	}
	return nil
}
