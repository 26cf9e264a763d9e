package domain

import "strings"

// A location resolved from a free-text query.
// Approximate marks a fallback resolution that did not come from a geocoder.
type Waypoint struct {
	Query       string  `json:"query"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	DisplayName string  `json:"display_name"`
	Approximate bool    `json:"approximate"`
}

func (w Waypoint) Coordinates() Coordinates {
	return Coordinates{Lon: w.Longitude, Lat: w.Latitude}
}

// NormalizeQuery returns the cache key for a place query: lower case with
// collapsed whitespace.
func NormalizeQuery(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
