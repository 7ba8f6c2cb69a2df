package usecases_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/parkpulse/web/internal/core/domain"
)

// --- Mock ParkAPI ---

type mockParkAPI struct {
	nearbyFn       func(ctx context.Context, q domain.NearbyQuery) (*domain.NearbyResult, error)
	favoritesFn    func(ctx context.Context, q domain.FavoritesQuery) (*domain.FavoritesResponse, error)
	searchFn       func(ctx context.Context, query string) (*domain.SearchResponse, error)
	parkFn         func(ctx context.Context, path domain.ParkPath) (*domain.Park, error)
	calendarFn     func(ctx context.Context, path domain.ParkPath, from, to string) (*domain.ParkCalendar, error)
	destinationsFn func(ctx context.Context) ([]domain.Continent, error)
}

func (m *mockParkAPI) Nearby(ctx context.Context, q domain.NearbyQuery) (*domain.NearbyResult, error) {
	if m.nearbyFn != nil {
		return m.nearbyFn(ctx, q)
	}
	return &domain.NearbyResult{Type: domain.NearbyTypeNearbyParks, NearbyParks: &domain.NearbyParksData{}}, nil
}

func (m *mockParkAPI) Favorites(ctx context.Context, q domain.FavoritesQuery) (*domain.FavoritesResponse, error) {
	if m.favoritesFn != nil {
		return m.favoritesFn(ctx, q)
	}
	return &domain.FavoritesResponse{}, nil
}

func (m *mockParkAPI) Search(ctx context.Context, query string) (*domain.SearchResponse, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, query)
	}
	return domain.EmptySearch(), nil
}

func (m *mockParkAPI) Park(ctx context.Context, path domain.ParkPath) (*domain.Park, error) {
	if m.parkFn != nil {
		return m.parkFn(ctx, path)
	}
	return nil, domain.ErrNotFound
}

func (m *mockParkAPI) Calendar(ctx context.Context, path domain.ParkPath, from, to string) (*domain.ParkCalendar, error) {
	if m.calendarFn != nil {
		return m.calendarFn(ctx, path, from, to)
	}
	return &domain.ParkCalendar{Park: path.Park, From: from, To: to}, nil
}

func (m *mockParkAPI) Destinations(ctx context.Context) ([]domain.Continent, error) {
	if m.destinationsFn != nil {
		return m.destinationsFn(ctx)
	}
	return nil, nil
}

// --- Mock ImageResolver ---

type mockImages map[string]string

func (m mockImages) Resolve(slug string) *string {
	if v, ok := m[slug]; ok {
		return &v
	}
	return nil
}

// --- In-memory CacheService ---

var errCacheMiss = errors.New("valkey nil message")

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache { return &memCache{data: make(map[string][]byte)} }

func (c *memCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return nil, errCacheMiss
	}
	return v, nil
}

func (c *memCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *memCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

// --- Favorites backends ---

type mockFavoritesRepo struct {
	saveFn func(ctx context.Context, visitorID string, favs domain.Favorites, at time.Time) (bool, error)
	getFn  func(ctx context.Context, visitorID string) (*domain.StoredFavorites, error)
}

func (m *mockFavoritesRepo) Save(ctx context.Context, visitorID string, favs domain.Favorites, at time.Time) (bool, error) {
	if m.saveFn != nil {
		return m.saveFn(ctx, visitorID, favs, at)
	}
	return true, nil
}

func (m *mockFavoritesRepo) Get(ctx context.Context, visitorID string) (*domain.StoredFavorites, error) {
	if m.getFn != nil {
		return m.getFn(ctx, visitorID)
	}
	return nil, domain.ErrNotFound
}

type mockPublisher struct {
	events []*domain.FavoritesChanged
	err    error
}

func (m *mockPublisher) PublishFavoritesChanged(ctx context.Context, ev *domain.FavoritesChanged) error {
	m.events = append(m.events, ev)
	return m.err
}

type mockDispatcher struct {
	calls int
	favs  domain.Favorites
}

func (m *mockDispatcher) DispatchFavoritesSync(ctx context.Context, visitorID string, favs domain.Favorites, at time.Time) error {
	m.calls++
	m.favs = favs
	return nil
}

type mockDecrypter struct {
	overrides map[string]any
	err       error
}

func (m *mockDecrypter) Decrypt(token string) (map[string]any, error) {
	return m.overrides, m.err
}

func ptr[T any](v T) *T { return &v }
