package domain

import (
	"strings"

	"github.com/parkpulse/web/internal/pkg/geospatial"
)

// Coordinate is a WGS 84 position. A new reading replaces the prior one;
// coordinates are never mutated in place.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// GeoMode selects where the user's position comes from in preview builds.
type GeoMode string

const (
	GeoModeReal GeoMode = "real"
	GeoModeNear GeoMode = "near"
	GeoModeIn   GeoMode = "in"
)

// ParseGeoMode accepts "real", "near" or "in" in any case.
func ParseGeoMode(s string) (GeoMode, bool) {
	switch GeoMode(strings.ToLower(strings.TrimSpace(s))) {
	case GeoModeReal:
		return GeoModeReal, true
	case GeoModeNear:
		return GeoModeNear, true
	case GeoModeIn:
		return GeoModeIn, true
	}
	return GeoModeReal, false
}

// debugNearOffsetMeters puts the near preset outside InParkThresholdMeters
// but well inside NearbyDisplayRadiusMeters.
const debugNearOffsetMeters = 2000.0

// Debug presets around Europa-Park's central plaza.
var (
	DebugInParkCoordinate   = Coordinate{Latitude: 48.2660, Longitude: 7.7220}
	DebugNearParkCoordinate = eastOf(DebugInParkCoordinate, debugNearOffsetMeters)
)

func eastOf(c Coordinate, meters float64) Coordinate {
	lat, lng := geospatial.Offset(c.Latitude, c.Longitude, 0, meters)
	return Coordinate{Latitude: lat, Longitude: lng}
}

// ResolveDebugCoordinate returns the preset for mode, or nil when the real
// device location should be used.
func ResolveDebugCoordinate(mode GeoMode) *Coordinate {
	switch mode {
	case GeoModeIn:
		c := DebugInParkCoordinate
		return &c
	case GeoModeNear:
		c := DebugNearParkCoordinate
		return &c
	default:
		return nil
	}
}
