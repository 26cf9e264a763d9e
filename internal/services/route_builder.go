package services

import (
	"context"
	"fmt"
	"trip-planner-service/internal/domain"
	"trip-planner-service/internal/platform/logging"
	"trip-planner-service/internal/platform/obs"
	"trip-planner-service/internal/ports"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/geodesic"
)

const (
	metersPerMile  = 1609.34
	secondsPerHour = 3600.0
)

// RouteBuilder computes the driving route through resolved waypoints.
// When the routing service cannot answer it falls back to straight
// geodesic legs driven at AverageSpeedMPH.
type RouteBuilder struct {
	provider ports.RouteProvider
	log      logrus.FieldLogger
}

// NewRouteBuilder builds a route builder. A nil provider always uses the fallback.
func NewRouteBuilder(provider ports.RouteProvider, logger logrus.FieldLogger) *RouteBuilder {
	return &RouteBuilder{
		provider: provider,
		log:      logging.OrStandard(logger),
	}
}

// BuildRoute returns the route through points in order. It fails only with
// domain.ErrInsufficientWaypoints; routing errors degrade to the fallback.
func (b *RouteBuilder) BuildRoute(ctx context.Context, points []domain.Waypoint) (_ domain.RouteResult, err error) {
	defer obs.Time(ctx, "route.BuildRoute")(&err)

	if len(points) < 2 {
		return domain.RouteResult{}, fmt.Errorf("build route: got %d waypoints: %w", len(points), domain.ErrInsufficientWaypoints)
	}

	if b.provider == nil {
		return FallbackRoute(points), nil
	}

	coords := make([]domain.Coordinates, len(points))
	for i, p := range points {
		coords[i] = p.Coordinates()
	}

	route, err := b.provider.Route(ctx, coords)
	if err != nil {
		b.log.WithError(err).WithField("waypoints", len(points)).Warn("Routing service unavailable; using geodesic fallback")
		return FallbackRoute(points), nil
	}

	return fromProviderRoute(route, points), nil
}

// FallbackRoute sums the geodesic distance between consecutive points.
// The polyline is the points themselves.
func FallbackRoute(points []domain.Waypoint) domain.RouteResult {
	legs := make([]domain.LegSummary, 0, max(len(points)-1, 0))
	polyline := make([][2]float64, 0, len(points))

	var total float64
	for i, p := range points {
		polyline = append(polyline, p.Coordinates().LatLon())
		if i == 0 {
			continue
		}

		miles := geodesicMiles(points[i-1].Coordinates(), p.Coordinates())
		total += miles
		legs = append(legs, domain.LegSummary{
			Segment:       i,
			DistanceMiles: round2(miles),
			DurationHours: round2(miles / AverageSpeedMPH),
		})
	}

	return domain.RouteResult{
		DistanceMiles: round2(total),
		DurationHours: round2(total / AverageSpeedMPH),
		Polyline:      polyline,
		Legs:          legs,
		Fallback:      true,
	}
}

func fromProviderRoute(route ports.Route, points []domain.Waypoint) domain.RouteResult {
	polyline := make([][2]float64, 0, len(route.Geometry))
	for _, pt := range route.Geometry {
		polyline = append(polyline, [2]float64{pt[1], pt[0]})
	}
	if len(polyline) == 0 {
		for _, p := range points {
			polyline = append(polyline, p.Coordinates().LatLon())
		}
	}

	legs := make([]domain.LegSummary, 0, len(route.Legs))
	for i, leg := range route.Legs {
		legs = append(legs, domain.LegSummary{
			Segment:       i + 1,
			DistanceMiles: round2(leg.DistanceMeters / metersPerMile),
			DurationHours: round2(leg.DurationSeconds / secondsPerHour),
		})
	}

	return domain.RouteResult{
		DistanceMiles: round2(route.DistanceMeters / metersPerMile),
		DurationHours: round2(route.DurationSeconds / secondsPerHour),
		Polyline:      polyline,
		Legs:          legs,
	}
}

func geodesicMiles(a, b domain.Coordinates) float64 {
	var meters float64
	geodesic.WGS84.Inverse(a.Lat, a.Lon, b.Lat, b.Lon, &meters, nil, nil)
	return meters / metersPerMile
}
