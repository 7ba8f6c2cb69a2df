package http_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/parkpulse/web/internal/core/domain"
)

// ---- Mock upstream API ----

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

// ---- Mock images ----

type mockImages map[string]string

func (m mockImages) Resolve(slug string) *string {
	if v, ok := m[slug]; ok {
		return &v
	}
	return nil
}

// ---- In-memory cache ----

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (m *memCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, errors.New("valkey nil message")
	}
	return v, nil
}

func (m *memCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// ---- Mock favorites repository ----

type mockFavoritesRepo struct {
	mu     sync.Mutex
	stored map[string]domain.StoredFavorites
}

func newMockFavoritesRepo() *mockFavoritesRepo {
	return &mockFavoritesRepo{stored: map[string]domain.StoredFavorites{}}
}

func (m *mockFavoritesRepo) Save(ctx context.Context, visitorID string, favs domain.Favorites, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.stored[visitorID]; ok && prev.UpdatedAt.After(at) {
		return false, nil
	}
	m.stored[visitorID] = domain.StoredFavorites{VisitorID: visitorID, Favorites: favs, UpdatedAt: at}
	return true, nil
}

func (m *mockFavoritesRepo) Get(ctx context.Context, visitorID string) (*domain.StoredFavorites, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.stored[visitorID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}
