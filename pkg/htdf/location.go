package htdf

import "math"

type Location struct {
	Type        string    `json:"-" groups:"basic"`
	Coordinates []float64 `json:"coordinates" groups:"basic"`
}

const earthRadiusM = 6371000.0

// DistanceFrom returns the great-circle distance in metres between two locations.
// Coordinates are GeoJSON ordered (lon, lat).
func (l *Location) DistanceFrom(other Location) float64 {
	lon1 := l.Coordinates[0] * math.Pi / 180
	lat1 := l.Coordinates[1] * math.Pi / 180
	lon2 := other.Coordinates[0] * math.Pi / 180
	lat2 := other.Coordinates[1] * math.Pi / 180

	dLat := lat2 - lat1
	dLon := lon2 - lon1

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)

	return earthRadiusM * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
