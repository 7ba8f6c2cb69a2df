package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/parkpulse/web/internal/core/domain"
	"github.com/parkpulse/web/internal/core/ports"
	"github.com/parkpulse/web/internal/pkg/geospatial"
)

// FavoritesService looks up favorited entities and persists visitor favorites.
// The repository, publisher and dispatcher are optional.
type FavoritesService struct {
	api        ports.ParkAPI
	images     ports.ImageResolver
	repo       ports.FavoritesRepository
	publisher  ports.EventPublisher
	dispatcher ports.SyncDispatcher
	now        func() time.Time
}

// NewFavoritesService creates a new FavoritesService.
func NewFavoritesService(
	api ports.ParkAPI,
	images ports.ImageResolver,
	repo ports.FavoritesRepository,
	publisher ports.EventPublisher,
	dispatcher ports.SyncDispatcher,
) *FavoritesService {
	return &FavoritesService{
		api:        api,
		images:     images,
		repo:       repo,
		publisher:  publisher,
		dispatcher: dispatcher,
		now:        time.Now,
	}
}

// Lookup fetches the favorited entities from upstream and attaches background images.
func (s *FavoritesService) Lookup(ctx context.Context, q domain.FavoritesQuery) (*domain.FavoritesResponse, error) {
	if c := q.Coordinate; c != nil && !geospatial.ValidLatLon(c.Latitude, c.Longitude) {
		return nil, domain.ErrInvalidCoordinates
	}
	q.Favorites.Normalize()
	if err := q.Favorites.Validate(); err != nil {
		return nil, err
	}

	res := &domain.FavoritesResponse{}
	if !q.Favorites.Empty() {
		var err error
		res, err = s.api.Favorites(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("upstream favorites: %w", err)
		}
	}

	for i := range res.Parks {
		p := &res.Parks[i]
		if q.Coordinate != nil && p.Distance == 0 {
			p.Distance = geospatial.Haversine(q.Coordinate.Latitude, q.Coordinate.Longitude, p.Latitude, p.Longitude)
		}
		if s.images != nil {
			p.BackgroundImage = s.images.Resolve(p.Slug)
		}
	}
	for _, items := range [][]domain.FavoriteItem{res.Attractions, res.Shows, res.Restaurants} {
		for i := range items {
			if s.images != nil && items[i].ParkSlug != "" {
				items[i].BackgroundImage = s.images.Resolve(items[i].ParkSlug)
			}
		}
	}

	if res.Parks == nil {
		res.Parks = []domain.ParkWithDistance{}
	}
	if res.Attractions == nil {
		res.Attractions = []domain.FavoriteItem{}
	}
	if res.Shows == nil {
		res.Shows = []domain.FavoriteItem{}
	}
	if res.Restaurants == nil {
		res.Restaurants = []domain.FavoriteItem{}
	}
	return res, nil
}

// Stored returns the server-side favorites for a visitor, or domain.ErrNotFound.
func (s *FavoritesService) Stored(ctx context.Context, visitorID string) (*domain.StoredFavorites, error) {
	if s.repo == nil || visitorID == "" {
		return nil, domain.ErrNotFound
	}
	return s.repo.Get(ctx, visitorID)
}

// Sync accepts the full favorites set of a visitor. The write is handed to the
// dispatcher when one is configured and applied inline otherwise.
func (s *FavoritesService) Sync(ctx context.Context, visitorID string, favs domain.Favorites) (domain.Favorites, error) {
	favs.Normalize()
	if err := favs.Validate(); err != nil {
		return favs, err
	}
	if visitorID == "" {
		return favs, fmt.Errorf("sync favorites: missing visitor id")
	}

	at := s.now().UTC()
	if s.dispatcher != nil {
		if err := s.dispatcher.DispatchFavoritesSync(ctx, visitorID, favs, at); err != nil {
			return favs, fmt.Errorf("dispatch favorites sync: %w", err)
		}
		return favs, nil
	}
	return favs, s.PersistAndPublish(ctx, visitorID, favs, at)
}

// Persist stores the favorites. Writes older than the stored row are ignored
// and reported as false. Without a repository every write counts as applied.
func (s *FavoritesService) Persist(ctx context.Context, visitorID string, favs domain.Favorites, at time.Time) (bool, error) {
	if s.repo == nil {
		return true, nil
	}
	written, err := s.repo.Save(ctx, visitorID, favs, at)
	if err != nil {
		return false, fmt.Errorf("save favorites: %w", err)
	}
	return written, nil
}

// Publish announces a favorites change to other sessions of the visitor.
func (s *FavoritesService) Publish(ctx context.Context, visitorID string, favs domain.Favorites, at time.Time) error {
	if s.publisher == nil {
		return nil
	}
	return s.publisher.PublishFavoritesChanged(ctx, &domain.FavoritesChanged{
		VisitorID: visitorID,
		Favorites: favs,
		UpdatedAt: at,
	})
}

// PersistAndPublish stores the favorites and, if the write was applied, publishes
// the change. Publish failures are logged and do not fail the sync.
func (s *FavoritesService) PersistAndPublish(ctx context.Context, visitorID string, favs domain.Favorites, at time.Time) error {
	written, err := s.Persist(ctx, visitorID, favs, at)
	if err != nil {
		return err
	}
	if !written {
		return nil
	}
	if err := s.Publish(ctx, visitorID, favs, at); err != nil {
		slog.Warn("publish favorites changed", "component", "favorites-sync", "visitor_id", visitorID, "error", err)
	}
	return nil
}
