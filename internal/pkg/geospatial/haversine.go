package geospatial

import (
	"math"

	"github.com/golang/geo/s2"
)

const earthRadiusMeters = 6371000.0

// Haversine calculates the great-circle distance in meters between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)
	return p1.Distance(p2).Radians() * earthRadiusMeters
}

// Offset returns the point reached by moving northMeters north and eastMeters east.
// Equirectangular approximation, fine for the few kilometres the debug presets use.
func Offset(lat, lon, northMeters, eastMeters float64) (float64, float64) {
	dLat := northMeters / 111320.0
	dLon := eastMeters / (111320.0 * math.Cos(lat*math.Pi/180))
	return lat + dLat, lon + dLon
}

// ValidLatLon reports whether the pair lies on the WGS 84 globe.
func ValidLatLon(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
