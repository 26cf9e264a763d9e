package domain

import "time"

// Provenance of one resolved waypoint.
type GeocodingNote struct {
	Query       string `json:"query"`
	DisplayName string `json:"display_name"`
	Approximate bool   `json:"approximate"`
}

type RouteSummary struct {
	DistanceMiles float64         `json:"distance_miles"`
	DurationHours float64         `json:"duration_hours"`
	Legs          []LegSummary    `json:"legs"`
	Stops         []Stop          `json:"stops"`
	FallbackRoute bool            `json:"fallback_route"`
	Geocoding     []GeocodingNote `json:"geocoding"`
}

type MapMarker struct {
	Label       string  `json:"label"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Approximate bool    `json:"approximate"`
}

type MapData struct {
	Polyline [][2]float64 `json:"polyline"`
	Markers  []MapMarker  `json:"markers"`
}

// The assembled result of planning a trip. This is what gets persisted.
type TripPlan struct {
	RouteSummary RouteSummary `json:"route_summary"`
	HosLogs      []DayLog     `json:"hos_logs"`
	MapData      MapData      `json:"map_data"`
}

// A stored trip request together with its plan.
type Trip struct {
	ID               string
	CurrentLocation  string
	PickupLocation   string
	DropoffLocation  string
	CurrentCycleUsed float64
	Plan             TripPlan
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
