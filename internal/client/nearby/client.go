// Package nearby resolves "what is around me" for a geolocation state and
// caches answers per position and parameters.
package nearby

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/parkpulse/web/internal/client/api"
	"github.com/parkpulse/web/internal/client/geolocation"
	"github.com/parkpulse/web/internal/core/domain"
)

const (
	DefaultFreshFor  = 5 * time.Minute
	DefaultRetainFor = 10 * time.Minute
)

// Fetcher performs the nearby request. *api.Client implements it.
type Fetcher interface {
	Nearby(ctx context.Context, coord *domain.Coordinate, radius float64, limit int) (*domain.NearbyResult, error)
}

// FetchError is a non-2xx answer from the nearby endpoint.
type FetchError struct {
	Status  int
	Message string
}

func (e *FetchError) Error() string { return e.Message }

// Params are the search bounds of a query.
type Params struct {
	Radius float64
	Limit  int
}

func DefaultParams() Params {
	return Params{Radius: domain.DefaultNearbyRadius, Limit: domain.DefaultNearbyLimit}
}

func (p Params) validate() error {
	if math.IsNaN(p.Radius) || p.Radius < 0 || p.Radius > domain.MaxNearbyRadius {
		return domain.ErrInvalidRadius
	}
	if p.Limit < 1 || p.Limit > domain.MaxNearbyLimit {
		return domain.ErrInvalidLimit
	}
	return nil
}

// QueryResult is what a view needs to render the nearby section. Data may
// be set together with Err when a refresh failed and the last good answer is
// still retained.
type QueryResult struct {
	Data      *domain.NearbyResult
	Err       error
	Enabled   bool
	IsStale   bool
	FetchedAt time.Time
}

type cacheKey struct {
	hasCoord bool
	lat, lng float64
	radius   float64
	limit    int
}

type entry struct {
	data      *domain.NearbyResult
	fetchedAt time.Time
	lastUsed  time.Time
}

type Client struct {
	fetcher   Fetcher
	freshFor  time.Duration
	retainFor time.Duration
	now       func() time.Time

	mu      sync.Mutex
	entries map[cacheKey]*entry
}

type Option func(*Client)

// WithCacheWindows overrides the fresh and retention windows.
func WithCacheWindows(fresh, retain time.Duration) Option {
	return func(c *Client) {
		c.freshFor = fresh
		c.retainFor = retain
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

func NewClient(f Fetcher, opts ...Option) *Client {
	c := &Client{
		fetcher:   f,
		freshFor:  DefaultFreshFor,
		retainFor: DefaultRetainFor,
		now:       time.Now,
		entries:   make(map[cacheKey]*entry),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Fetch calls the nearby endpoint once, bypassing the cache. A nil coord
// lets the server locate the caller by IP.
func (c *Client) Fetch(ctx context.Context, coord *domain.Coordinate, p Params) (*domain.NearbyResult, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	res, err := c.fetcher.Nearby(ctx, coord, p.Radius, p.Limit)
	if err != nil {
		var rerr *api.ResponseError
		if errors.As(err, &rerr) {
			msg := rerr.Message
			if msg == "" {
				msg = fmt.Sprintf("failed to fetch nearby parks: %s", rerr.StatusText)
			}
			return nil, &FetchError{Status: rerr.Status, Message: msg}
		}
		return nil, err
	}
	return res, nil
}

// Query answers from the cache when fresh and fetches otherwise. It stays
// disabled while the position is loading, unless the position can no longer
// arrive because permission was denied or the read failed.
func (c *Client) Query(ctx context.Context, st geolocation.State, p Params) QueryResult {
	if st.Loading && !st.PermissionDenied && !st.Error {
		return QueryResult{}
	}

	key := cacheKey{radius: p.Radius, limit: p.Limit}
	if st.Position != nil {
		key.hasCoord = true
		key.lat, key.lng = st.Position.Latitude, st.Position.Longitude
	}

	now := c.now()
	c.mu.Lock()
	c.evictLocked(now)
	e := c.entries[key]
	if e != nil {
		e.lastUsed = now
		if now.Sub(e.fetchedAt) < c.freshFor {
			res := QueryResult{Data: e.data, Enabled: true, FetchedAt: e.fetchedAt}
			c.mu.Unlock()
			return res
		}
	}
	c.mu.Unlock()

	data, err := c.Fetch(ctx, st.Position, p)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		if e := c.entries[key]; e != nil {
			return QueryResult{Data: e.data, Err: err, Enabled: true, IsStale: true, FetchedAt: e.fetchedAt}
		}
		return QueryResult{Err: err, Enabled: true}
	}
	done := c.now()
	c.entries[key] = &entry{data: data, fetchedAt: done, lastUsed: done}
	return QueryResult{Data: data, Enabled: true, FetchedAt: done}
}

// evictLocked drops entries unused for longer than the retention window.
func (c *Client) evictLocked(now time.Time) {
	for k, e := range c.entries {
		if now.Sub(e.lastUsed) > c.retainFor {
			delete(c.entries, k)
		}
	}
}

// Len reports the number of cached answers.
func (c *Client) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
