package domain

import "errors"

var (
	// Fewer than two locations were given to the route builder.
	ErrInsufficientWaypoints = errors.New("at least two locations are required to build a route")
	// The driver's starting cycle hours are already at or above the cycle cap.
	ErrCycleExhausted = errors.New("driver has no remaining cycle hours available")

	// A pinned location names a point off the globe.
	ErrInvalidCoordinates = errors.New("coordinates out of range")
	// A route distance that is NaN or infinite cannot be simulated.
	ErrInvalidDistance = errors.New("route distance is not a finite number")

	ErrTripNotFound    = errors.New("trip not found")
	ErrNoGeocodeResult = errors.New("no geocoding result")
)
