package ports

import "context"

// Emitted after a trip has been planned and stored.
type TripPlannedEvent struct {
	TripID            string  `json:"trip_id"`
	DistanceMiles     float64 `json:"distance_miles"`
	DaysPlanned       int     `json:"days_planned"`
	CycleLimitReached bool    `json:"cycle_limit_reached"`
	FallbackRoute     bool    `json:"fallback_route"`
}

type TripEventPublisher interface {
	PublishTripPlanned(ctx context.Context, evt TripPlannedEvent) error
}
