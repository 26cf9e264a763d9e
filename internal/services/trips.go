package services

import (
	"context"
	"fmt"
	"time"
	"trip-planner-service/internal/domain"
	"trip-planner-service/internal/platform/logging"
	"trip-planner-service/internal/ports"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type CreateTripRequest struct {
	CurrentLocation  string
	PickupLocation   string
	DropoffLocation  string
	CurrentCycleUsed float64
}

// TripService plans trips and stores them.
type TripService struct {
	Planner *TripPlanner
	Repo    ports.TripRepository

	// Optional. Publish failures are logged and never fail a request.
	Events ports.TripEventPublisher

	Now func() time.Time
	Log logrus.FieldLogger
}

// CreateTrip plans the trip before anything is stored, so a planning failure
// leaves no record behind.
func (s *TripService) CreateTrip(ctx context.Context, req CreateTripRequest) (domain.Trip, error) {
	now := s.now()

	res, err := s.Planner.PlanTrip(ctx, PlanTripRequest{
		CurrentLocation: req.CurrentLocation,
		PickupLocation:  req.PickupLocation,
		DropoffLocation: req.DropoffLocation,
		CycleHoursUsed:  req.CurrentCycleUsed,
		Now:             now,
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("create trip: %w", err)
	}

	trip := domain.Trip{
		ID:               uuid.NewString(),
		CurrentLocation:  req.CurrentLocation,
		PickupLocation:   req.PickupLocation,
		DropoffLocation:  req.DropoffLocation,
		CurrentCycleUsed: req.CurrentCycleUsed,
		Plan:             res.Plan,
		CreatedAt:        now.UTC(),
		UpdatedAt:        now.UTC(),
	}

	created, err := s.Repo.CreateTrip(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("create trip: store: %w", err)
	}

	s.publish(ctx, created, res.Summary)

	return created, nil
}

func (s *TripService) publish(ctx context.Context, trip domain.Trip, summary domain.Summary) {
	if s.Events == nil {
		return
	}

	evt := ports.TripPlannedEvent{
		TripID:            trip.ID,
		DistanceMiles:     trip.Plan.RouteSummary.DistanceMiles,
		DaysPlanned:       summary.DaysPlanned,
		CycleLimitReached: summary.CycleLimitReached,
		FallbackRoute:     trip.Plan.RouteSummary.FallbackRoute,
	}
	if err := s.Events.PublishTripPlanned(ctx, evt); err != nil {
		logging.OrStandard(s.Log).WithError(err).WithField("trip_id", trip.ID).Warn("publish trip.planned failed")
	}
}

func (s *TripService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}
