package domain

import "strconv"

// Immutable geographic coordinates (longitude, latitude).
type Coordinates struct {
	Lon float64
	Lat float64
}

// Return coordinates as [lon, lat] for external API compatibility.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.Lon, c.Lat} }

// Return coordinates as "lon,lat", the path form routing services expect.
func (c Coordinates) LonLatString() string {
	return strconv.FormatFloat(c.Lon, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lat, 'f', -1, 64)
}

// Return coordinates as a [lat, lon] polyline point.
func (c Coordinates) LatLon() [2]float64 { return [2]float64{c.Lat, c.Lon} }

// Report whether the coordinates lie on the globe: latitude in [-90, 90] and
// longitude in [-180, 180]. NaN is never valid.
func (c Coordinates) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}
