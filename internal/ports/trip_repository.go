package ports

import (
	"context"
	"trip-planner-service/internal/domain"
)

// Port: a boundary for storing and retrieving planned trips.
type TripRepository interface {
	CreateTrip(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	GetTrip(ctx context.Context, id string) (domain.Trip, error)
	ListTrips(ctx context.Context) ([]domain.Trip, error)
	DeleteTrip(ctx context.Context, id string) error
}
