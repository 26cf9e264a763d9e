package services

import (
	"context"
	"fmt"
	"time"
	"trip-planner-service/internal/domain"
)

type PlanTripRequest struct {
	CurrentLocation string
	PickupLocation  string
	DropoffLocation string
	CycleHoursUsed  float64
	Now             time.Time
}

// PlanTripResult is the assembled plan plus the simulator's summary,
// which is reported but not persisted.
type PlanTripResult struct {
	Plan    domain.TripPlan
	Summary domain.Summary
}

// TripPlanner runs the planning pipeline: resolve, route, simulate, assemble.
type TripPlanner struct {
	Resolver *LocationResolver
	Builder  *RouteBuilder
}

func NewTripPlanner(resolver *LocationResolver, builder *RouteBuilder) *TripPlanner {
	return &TripPlanner{Resolver: resolver, Builder: builder}
}

// PlanTrip plans a trip from the current location through pickup to dropoff.
//
// Geocoding and routing failures degrade into approximate data flagged on the
// plan. The only errors are domain.ErrInsufficientWaypoints and
// domain.ErrCycleExhausted.
func (p *TripPlanner) PlanTrip(ctx context.Context, req PlanTripRequest) (PlanTripResult, error) {
	points := p.Resolver.ResolveAll(ctx, []string{
		req.CurrentLocation,
		req.PickupLocation,
		req.DropoffLocation,
	})

	route, err := p.Builder.BuildRoute(ctx, points)
	if err != nil {
		return PlanTripResult{}, fmt.Errorf("plan trip: %w", err)
	}

	hos, err := SimulateHOS(route.DistanceMiles, req.CycleHoursUsed, req.Now)
	if err != nil {
		return PlanTripResult{}, fmt.Errorf("plan trip: %w", err)
	}

	return PlanTripResult{
		Plan:    AssemblePlan(points[0], points[1], points[2], route, hos),
		Summary: hos.Summary,
	}, nil
}
