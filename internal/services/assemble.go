package services

import (
	"trip-planner-service/internal/domain"
)

// AssemblePlan combines the resolved waypoints, the route, and the HOS plan
// into the persisted trip plan.
//
// Route stops start with synthetic Start, Pickup, and Dropoff entries for the
// three waypoints, followed by the simulator's stops in the order they occurred.
func AssemblePlan(
	origin, pickup, dropoff domain.Waypoint,
	route domain.RouteResult,
	hos domain.HosPlan,
) domain.TripPlan {
	stops := make([]domain.Stop, 0, 3+len(hos.Stops))
	stops = append(stops,
		domain.Stop{Type: domain.StopStart, Details: origin.DisplayName},
		domain.Stop{Type: domain.StopPickup, Details: pickup.DisplayName, Timestamp: hos.PickupTimestamp},
		domain.Stop{Type: domain.StopDropoff, Details: dropoff.DisplayName, Timestamp: hos.DropoffTimestamp},
	)
	stops = append(stops, hos.Stops...)

	points := []domain.Waypoint{origin, pickup, dropoff}

	geocoding := make([]domain.GeocodingNote, 0, len(points))
	for _, p := range points {
		geocoding = append(geocoding, domain.GeocodingNote{
			Query:       p.Query,
			DisplayName: p.DisplayName,
			Approximate: p.Approximate,
		})
	}

	labels := []string{"Current Location", "Pickup", "Dropoff"}
	markers := make([]domain.MapMarker, 0, len(points))
	for i, p := range points {
		markers = append(markers, domain.MapMarker{
			Label:       labels[i],
			Latitude:    p.Latitude,
			Longitude:   p.Longitude,
			Approximate: p.Approximate,
		})
	}

	legs := route.Legs
	if legs == nil {
		legs = []domain.LegSummary{}
	}
	polyline := route.Polyline
	if polyline == nil {
		polyline = [][2]float64{}
	}
	logs := hos.Logs
	if logs == nil {
		logs = []domain.DayLog{}
	}

	return domain.TripPlan{
		RouteSummary: domain.RouteSummary{
			DistanceMiles: route.DistanceMiles,
			DurationHours: route.DurationHours,
			Legs:          legs,
			Stops:         stops,
			FallbackRoute: route.Fallback,
			Geocoding:     geocoding,
		},
		HosLogs: logs,
		MapData: domain.MapData{
			Polyline: polyline,
			Markers:  markers,
		},
	}
}
