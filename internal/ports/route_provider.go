package ports

import (
	"context"
	"trip-planner-service/internal/domain"
)

// One leg of a route as reported by a routing service.
type RouteLeg struct {
	DistanceMeters  float64
	DurationSeconds float64
}

// A driving route in the units a routing service reports.
// Geometry points are [lon, lat].
type Route struct {
	DistanceMeters  float64
	DurationSeconds float64
	Geometry        [][2]float64
	Legs            []RouteLeg
}

// Contract for computing a driving route through ordered coordinates.
type RouteProvider interface {
	// Return the first route through points, in order.
	// An empty result is reported as an error.
	Route(ctx context.Context, points []domain.Coordinates) (Route, error)
}

// Cache of routes keyed by the ordered coordinates they were computed for.
type RouteCache interface {
	Get(ctx context.Context, points []domain.Coordinates) (Route, bool, error)
	Put(ctx context.Context, points []domain.Coordinates, route Route) error
}
