package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/parkpulse/web/internal/core/domain"
	"github.com/parkpulse/web/internal/core/ports"
)

// ParkService serves park, calendar and destination data for the API and pages.
type ParkService struct {
	api    ports.ParkAPI
	images ports.ImageResolver
	cache  ports.CacheService
	ttl    int
}

// NewParkService creates a new ParkService. ttl is in seconds.
func NewParkService(api ports.ParkAPI, images ports.ImageResolver, cache ports.CacheService, ttl int) *ParkService {
	return &ParkService{api: api, images: images, cache: cache, ttl: ttl}
}

// Get returns a park with its background image. Upstream failures are
// returned as they are.
func (s *ParkService) Get(ctx context.Context, path domain.ParkPath) (*domain.ParkDetail, error) {
	d, _, err := s.park(ctx, path, failFast)
	return d, err
}

// GetWithFallback is Get, but when upstream is unreachable or fails with a
// 5xx it returns the last successfully fetched park with stale set. An
// upstream 4xx is still returned as an error.
func (s *ParkService) GetWithFallback(ctx context.Context, path domain.ParkPath) (*domain.ParkDetail, bool, error) {
	return s.park(ctx, path, serveLastGood)
}

func (s *ParkService) park(ctx context.Context, path domain.ParkPath, mode onFailure) (*domain.ParkDetail, bool, error) {
	if err := path.Validate(); err != nil {
		return nil, false, err
	}
	park, stale, err := cachedFetch(ctx, s.cache, "park:"+path.String(), s.ttl, mode, func(ctx context.Context) (*domain.Park, error) {
		return s.api.Park(ctx, path)
	})
	if err != nil {
		return nil, false, fmt.Errorf("upstream park %s: %w", path, err)
	}
	d := &domain.ParkDetail{Park: *park}
	if s.images != nil {
		d.BackgroundImage = s.images.Resolve(park.Slug)
	}
	return d, stale, nil
}

// Attraction returns a park and one of its attractions by slug.
func (s *ParkService) Attraction(ctx context.Context, path domain.ParkPath, slug string) (*domain.ParkDetail, *domain.Attraction, bool, error) {
	if !domain.ValidSlug(slug) {
		return nil, nil, false, &domain.ValidationError{Message: "Invalid attraction parameter"}
	}
	park, stale, err := s.GetWithFallback(ctx, path)
	if err != nil {
		return nil, nil, false, err
	}
	for i := range park.Attractions {
		if park.Attractions[i].Slug == slug {
			a := park.Attractions[i]
			return park, &a, stale, nil
		}
	}
	return nil, nil, false, domain.ErrNotFound
}

// ValidateDateRange checks calendar bounds in YYYY-MM-DD form.
func ValidateDateRange(from, to string) error {
	if from == "" || to == "" {
		return domain.ErrMissingDateRange
	}
	f, err := time.Parse(time.DateOnly, from)
	if err != nil {
		return domain.ErrInvalidDate
	}
	t, err := time.Parse(time.DateOnly, to)
	if err != nil {
		return domain.ErrInvalidDate
	}
	if f.After(t) {
		return domain.ErrInvalidDateRange
	}
	return nil
}

// Calendar returns the operating calendar of a park between from and to inclusive.
func (s *ParkService) Calendar(ctx context.Context, path domain.ParkPath, from, to string) (*domain.ParkCalendar, error) {
	if err := path.Validate(); err != nil {
		return nil, err
	}
	if err := ValidateDateRange(from, to); err != nil {
		return nil, err
	}
	key := fmt.Sprintf("calendar:%s:%s:%s", path, from, to)
	cal, _, err := cachedFetch(ctx, s.cache, key, s.ttl, failFast, func(ctx context.Context) (*domain.ParkCalendar, error) {
		return s.api.Calendar(ctx, path, from, to)
	})
	if err != nil {
		return nil, fmt.Errorf("upstream calendar %s: %w", path, err)
	}
	if cal.Days == nil {
		cal.Days = []domain.CalendarDay{}
	}
	return cal, nil
}

// Destinations returns the continent tree used by the listing pages, falling
// back to the last good tree like GetWithFallback.
func (s *ParkService) Destinations(ctx context.Context) ([]domain.Continent, bool, error) {
	tree, stale, err := cachedFetch(ctx, s.cache, "destinations", s.ttl, serveLastGood, s.api.Destinations)
	if err != nil {
		return nil, false, fmt.Errorf("upstream destinations: %w", err)
	}
	return tree, stale, nil
}
