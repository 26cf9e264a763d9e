package ports

import (
	"context"
	"trip-planner-service/internal/domain"
)

// An authoritative geocoding match.
type GeocodeResult struct {
	Coordinates domain.Coordinates
	DisplayName string
}

// Contract for resolving a place name into coordinates.
type Geocoder interface {
	// Return the best match for query, or domain.ErrNoGeocodeResult when
	// the service has nothing for it.
	Geocode(ctx context.Context, query string) (GeocodeResult, error)
}

// Persistent cache of positive geocoding results keyed by normalized query.
type GeocodeCache interface {
	GetMany(ctx context.Context, queries []string) (map[string]GeocodeResult, error)
	PutMany(ctx context.Context, results map[string]GeocodeResult) error
}
