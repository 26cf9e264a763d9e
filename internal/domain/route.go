package domain

// Per-leg breakdown of a multi-waypoint route. Segment is 1-based.
type LegSummary struct {
	Segment       int     `json:"segment"`
	DistanceMiles float64 `json:"distance_miles"`
	DurationHours float64 `json:"duration_hours"`
}

// Represents the driving route through an ordered list of waypoints.
// Polyline points are [lat, lon]. Fallback is set when the route was
// derived from straight geodesic legs instead of a routing service.
type RouteResult struct {
	DistanceMiles float64      `json:"distance_miles"`
	DurationHours float64      `json:"duration_hours"`
	Polyline      [][2]float64 `json:"polyline"`
	Legs          []LegSummary `json:"legs"`
	Fallback      bool         `json:"fallback"`
}
