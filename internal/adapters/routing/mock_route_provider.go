package routing

import (
	"context"
	"fmt"
	"trip-planner-service/internal/domain"
	"trip-planner-service/internal/ports"
)

type MockLeg struct {
	From, To domain.Coordinates
	Meters   float64
	Seconds  float64
}

// MockRouteProvider answers from a fixed table of legs. The geometry is the
// requested points themselves.
type MockRouteProvider struct {
	m map[string]ports.RouteLeg
}

func NewMockRouteProvider(legs []MockLeg) *MockRouteProvider {
	m := make(map[string]ports.RouteLeg, len(legs))
	for _, l := range legs {
		m[legKey(l.From, l.To)] = ports.RouteLeg{DistanceMeters: l.Meters, DurationSeconds: l.Seconds}
	}
	return &MockRouteProvider{m: m}
}

func (p *MockRouteProvider) Route(ctx context.Context, points []domain.Coordinates) (ports.Route, error) {
	if len(points) < 2 {
		return ports.Route{}, fmt.Errorf("mock route: got %d points: %w", len(points), domain.ErrInsufficientWaypoints)
	}

	var route ports.Route
	for i := 1; i < len(points); i++ {
		leg, ok := p.m[legKey(points[i-1], points[i])]
		if !ok {
			return ports.Route{}, fmt.Errorf("missing leg %s -> %s", points[i-1].LonLatString(), points[i].LonLatString())
		}
		route.Legs = append(route.Legs, leg)
		route.DistanceMeters += leg.DistanceMeters
		route.DurationSeconds += leg.DurationSeconds
	}

	for _, pt := range points {
		route.Geometry = append(route.Geometry, [2]float64{pt.Lon, pt.Lat})
	}

	return route, nil
}

func legKey(from, to domain.Coordinates) string {
	return from.LonLatString() + "|" + to.LonLatString()
}
