package ports

import (
	"context"
	"time"

	"github.com/parkpulse/web/internal/core/domain"
)

// ParkAPI is the upstream wait-time API.
type ParkAPI interface {
	Nearby(ctx context.Context, q domain.NearbyQuery) (*domain.NearbyResult, error)
	Favorites(ctx context.Context, q domain.FavoritesQuery) (*domain.FavoritesResponse, error)
	Search(ctx context.Context, query string) (*domain.SearchResponse, error)
	Park(ctx context.Context, path domain.ParkPath) (*domain.Park, error)
	Calendar(ctx context.Context, path domain.ParkPath, from, to string) (*domain.ParkCalendar, error)
	Destinations(ctx context.Context) ([]domain.Continent, error)
}

// ImageResolver maps a park slug to a background image URL, nil when none exists.
type ImageResolver interface {
	Resolve(slug string) *string
}

// FlagDecrypter opens the encrypted flag-override cookie.
type FlagDecrypter interface {
	Decrypt(token string) (map[string]any, error)
}

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishFavoritesChanged(ctx context.Context, ev *domain.FavoritesChanged) error
}

// SyncDispatcher hands a favorites write to a durable workflow engine.
type SyncDispatcher interface {
	DispatchFavoritesSync(ctx context.Context, visitorID string, favs domain.Favorites, at time.Time) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
