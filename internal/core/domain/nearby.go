package domain

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/parkpulse/web/internal/pkg/geospatial"
)

const (
	// InParkThresholdMeters is the distance under which the user counts as inside a park.
	InParkThresholdMeters = 1000.0
	// NearbyDisplayRadiusMeters bounds the parks listed on the nearby page. It is a
	// separate tier from InParkThresholdMeters and from the upstream classification.
	NearbyDisplayRadiusMeters = 5000.0

	DefaultNearbyRadius = 1000.0
	MaxNearbyRadius     = 50000.0
	DefaultNearbyLimit  = 6
	MaxNearbyLimit      = 50
)

// NearbyType tags the variant held by a NearbyResult.
type NearbyType string

const (
	NearbyTypeInPark      NearbyType = "in_park"
	NearbyTypeNearbyParks NearbyType = "nearby_parks"
)

// InParkData is the payload when the user is inside a park.
type InParkData struct {
	Park        ParkWithDistance         `json:"park"`
	Attractions []AttractionWithDistance `json:"attractions"`
}

// NearbyParksData is the payload when the user is outside every park.
type NearbyParksData struct {
	Parks []ParkWithDistance `json:"parks"`
	Count int                `json:"count"`
}

// NearbyResult is a tagged union: exactly one of InPark and NearbyParks is set,
// matching Type.
type NearbyResult struct {
	Type         NearbyType
	UserLocation *Coordinate
	InPark       *InParkData
	NearbyParks  *NearbyParksData
}

type nearbyEnvelope struct {
	Type         NearbyType      `json:"type"`
	UserLocation *Coordinate     `json:"userLocation"`
	Data         json.RawMessage `json:"data"`
}

func (r NearbyResult) MarshalJSON() ([]byte, error) {
	var data any
	switch r.Type {
	case NearbyTypeInPark:
		data = r.InPark
	case NearbyTypeNearbyParks:
		data = r.NearbyParks
	default:
		return nil, fmt.Errorf("nearby result: unknown type %q", r.Type)
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(nearbyEnvelope{Type: r.Type, UserLocation: r.UserLocation, Data: raw})
}

func (r *NearbyResult) UnmarshalJSON(b []byte) error {
	var env nearbyEnvelope
	if err := json.Unmarshal(b, &env); err != nil {
		return err
	}
	*r = NearbyResult{Type: env.Type, UserLocation: env.UserLocation}
	switch env.Type {
	case NearbyTypeInPark:
		r.InPark = &InParkData{}
		return json.Unmarshal(env.Data, r.InPark)
	case NearbyTypeNearbyParks:
		r.NearbyParks = &NearbyParksData{}
		return json.Unmarshal(env.Data, r.NearbyParks)
	default:
		return fmt.Errorf("nearby result: unknown type %q", env.Type)
	}
}

// NearbyQuery is a validated nearby lookup.
type NearbyQuery struct {
	Coordinate *Coordinate
	Radius     float64
	Limit      int // 0 leaves the default to the upstream API
	ClientIP   string
}

// AnnotateDistances fills in distances from the user location and sorts parks
// nearest first. Upstream fields are left untouched.
func (r *NearbyResult) AnnotateDistances() {
	if r.UserLocation == nil {
		return
	}
	u := *r.UserLocation
	switch r.Type {
	case NearbyTypeInPark:
		if r.InPark == nil {
			return
		}
		p := &r.InPark.Park
		p.Distance = geospatial.Haversine(u.Latitude, u.Longitude, p.Latitude, p.Longitude)
		for i := range r.InPark.Attractions {
			annotateAttraction(&r.InPark.Attractions[i], u)
		}
	case NearbyTypeNearbyParks:
		if r.NearbyParks == nil {
			return
		}
		for i := range r.NearbyParks.Parks {
			p := &r.NearbyParks.Parks[i]
			p.Distance = geospatial.Haversine(u.Latitude, u.Longitude, p.Latitude, p.Longitude)
		}
		sort.SliceStable(r.NearbyParks.Parks, func(i, j int) bool {
			return r.NearbyParks.Parks[i].Distance < r.NearbyParks.Parks[j].Distance
		})
	}
}

func annotateAttraction(a *AttractionWithDistance, u Coordinate) {
	if a.Latitude == nil || a.Longitude == nil {
		return
	}
	d := geospatial.Haversine(u.Latitude, u.Longitude, *a.Latitude, *a.Longitude)
	a.Distance = &d
}

// Classify promotes a nearby-parks result to in-park when the nearest park is
// within InParkThresholdMeters of a known user location. Upstream in_park
// results are kept as they are. Parks must already carry distances.
func (r *NearbyResult) Classify() {
	if r.Type != NearbyTypeNearbyParks || r.NearbyParks == nil {
		return
	}
	parks := r.NearbyParks.Parks
	r.NearbyParks.Count = len(parks)
	if len(parks) == 0 || r.UserLocation == nil {
		return
	}

	nearest := parks[0]
	for _, p := range parks[1:] {
		if p.Distance < nearest.Distance {
			nearest = p
		}
	}
	if nearest.Distance > InParkThresholdMeters {
		return
	}

	attractions := make([]AttractionWithDistance, 0, len(nearest.Attractions))
	for _, a := range nearest.Attractions {
		awd := AttractionWithDistance{Attraction: a}
		annotateAttraction(&awd, *r.UserLocation)
		attractions = append(attractions, awd)
	}
	nearest.Attractions = nil

	r.Type = NearbyTypeInPark
	r.InPark = &InParkData{Park: nearest, Attractions: attractions}
	r.NearbyParks = nil
}
