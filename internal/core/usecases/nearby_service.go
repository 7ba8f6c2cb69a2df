package usecases

import (
	"context"
	"fmt"
	"math"

	"github.com/parkpulse/web/internal/core/domain"
	"github.com/parkpulse/web/internal/core/ports"
	"github.com/parkpulse/web/internal/pkg/geospatial"
	"github.com/parkpulse/web/internal/pkg/netutil"
)

// NearbyRequest is a nearby lookup as received from a client. Nil fields were
// not provided.
type NearbyRequest struct {
	Coordinate *domain.Coordinate
	Radius     *float64
	Limit      *int
	ClientIP   string
	IPOverride string // debug "ip" parameter
}

// NearbyService resolves the parks around a visitor.
type NearbyService struct {
	api             ports.ParkAPI
	images          ports.ImageResolver
	allowIPOverride bool
}

// NewNearbyService creates a new NearbyService. allowIPOverride enables the
// debug "ip" parameter used to test GeoIP fallback from a local machine.
func NewNearbyService(api ports.ParkAPI, images ports.ImageResolver, allowIPOverride bool) *NearbyService {
	return &NearbyService{api: api, images: images, allowIPOverride: allowIPOverride}
}

// Validate turns a request into an upstream query or returns a *domain.ValidationError.
func (s *NearbyService) Validate(req NearbyRequest) (domain.NearbyQuery, error) {
	q := domain.NearbyQuery{Radius: domain.DefaultNearbyRadius}

	if c := req.Coordinate; c != nil {
		if !geospatial.ValidLatLon(c.Latitude, c.Longitude) {
			return q, domain.ErrInvalidCoordinates
		}
		coord := *c
		q.Coordinate = &coord
	}

	if req.Radius != nil {
		r := *req.Radius
		if math.IsNaN(r) || r < 0 || r > domain.MaxNearbyRadius {
			return q, domain.ErrInvalidRadius
		}
		q.Radius = r
	}

	if req.Limit != nil {
		if *req.Limit < 1 || *req.Limit > domain.MaxNearbyLimit {
			return q, domain.ErrInvalidLimit
		}
		q.Limit = *req.Limit
	}

	override := ""
	if s.allowIPOverride {
		override = req.IPOverride
	}
	switch {
	case override != "":
		q.ClientIP = override
	case q.Coordinate == nil && netutil.IsLocalOrUnusableIP(req.ClientIP):
		return q, domain.ErrLocationRequired
	default:
		q.ClientIP = req.ClientIP
	}
	return q, nil
}

// Resolve validates req, queries the upstream API and classifies the result.
func (s *NearbyService) Resolve(ctx context.Context, req NearbyRequest) (*domain.NearbyResult, error) {
	q, err := s.Validate(req)
	if err != nil {
		return nil, err
	}

	res, err := s.api.Nearby(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("upstream nearby: %w", err)
	}
	if res.UserLocation == nil && q.Coordinate != nil {
		res.UserLocation = q.Coordinate
	}

	res.AnnotateDistances()
	res.Classify()
	s.enrich(res)
	return res, nil
}

func (s *NearbyService) enrich(res *domain.NearbyResult) {
	switch {
	case res.InPark != nil:
		if res.InPark.Attractions == nil {
			res.InPark.Attractions = []domain.AttractionWithDistance{}
		}
		if s.images != nil {
			res.InPark.Park.BackgroundImage = s.images.Resolve(res.InPark.Park.Slug)
		}
	case res.NearbyParks != nil:
		if res.NearbyParks.Parks == nil {
			res.NearbyParks.Parks = []domain.ParkWithDistance{}
		}
		if s.images != nil {
			for i := range res.NearbyParks.Parks {
				p := &res.NearbyParks.Parks[i]
				p.BackgroundImage = s.images.Resolve(p.Slug)
			}
		}
	}
}
