// Package favorites keeps the visitor's favorite parks, attractions, shows
// and restaurants. The persisted cookie value is the source of truth; the
// server copy is synced in the background after a quiet period.
package favorites

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/parkpulse/web/internal/core/domain"
	"github.com/parkpulse/web/internal/pkg/logging"
)

const (
	DefaultDebounce    = 400 * time.Millisecond
	DefaultMaxAttempts = 5
	DefaultBackoff     = time.Second
	maxBackoff         = 30 * time.Second
	syncTimeout        = 10 * time.Second
)

// Persister loads and saves the encoded favorites cookie value.
type Persister interface {
	Load() (string, error)
	Save(value string) error
}

// Syncer pushes the full favorites set to the server. *api.Client
// implements it.
type Syncer interface {
	SyncFavorites(ctx context.Context, favs domain.Favorites) error
}

type Config struct {
	Persister   Persister
	Syncer      Syncer // optional
	Logger      *slog.Logger
	Debounce    time.Duration
	MaxAttempts int
	Backoff     time.Duration
}

type Store struct {
	cfg Config
	log *slog.Logger

	mu      sync.Mutex
	favs    domain.Favorites
	subs    map[int]func(domain.Favorites)
	nextSub int
	timer   *time.Timer
	gen     uint64
	closed  bool

	inflight sync.WaitGroup
	done     chan struct{}
}

// NewStore loads the persisted set. A malformed value starts an empty set
// rather than failing.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Persister == nil {
		return nil, errors.New("favorites: persister is required")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = DefaultBackoff
	}
	s := &Store{
		cfg:  cfg,
		log:  logging.Component(cfg.Logger, "favorites-store"),
		subs: make(map[int]func(domain.Favorites)),
		done: make(chan struct{}),
	}
	favs, err := s.load()
	if err != nil {
		return nil, err
	}
	s.favs = favs
	return s, nil
}

func (s *Store) load() (domain.Favorites, error) {
	raw, err := s.cfg.Persister.Load()
	if err != nil {
		return domain.Favorites{}, fmt.Errorf("load favorites: %w", err)
	}
	favs, err := domain.DecodeFavoritesCookie(raw)
	if err != nil {
		s.log.Warn("discarding malformed favorites", "error", err)
		favs, _ = domain.DecodeFavoritesCookie("")
	}
	return favs, nil
}

// IsFavorite reports whether id is favorited under t.
func (s *Store) IsFavorite(t domain.FavoriteType, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.favs.Contains(t, id)
}

// IDs returns the ids favorited under t.
func (s *Store) IDs(t domain.FavoriteType) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.favs.IDs(t)
}

// Snapshot returns a copy of the whole set.
func (s *Store) Snapshot() domain.Favorites {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.favs.Clone()
}

// Add favorites id under t. Adding an existing id is a no-op.
func (s *Store) Add(t domain.FavoriteType, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	return s.mutate(func(f *domain.Favorites) bool { return f.Add(t, id) })
}

// Remove drops id from t. Removing a missing id is a no-op.
func (s *Store) Remove(t domain.FavoriteType, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	return s.mutate(func(f *domain.Favorites) bool { return f.Remove(t, id) })
}

// Toggle flips id under t and reports whether it is now a favorite.
func (s *Store) Toggle(t domain.FavoriteType, id string) (bool, error) {
	if err := checkID(id); err != nil {
		return false, err
	}
	var now bool
	err := s.mutate(func(f *domain.Favorites) bool {
		if f.Contains(t, id) {
			now = false
			return f.Remove(t, id)
		}
		now = true
		return f.Add(t, id)
	})
	if err != nil {
		return false, err
	}
	return now, nil
}

func checkID(id string) error {
	if strings.TrimSpace(id) == "" {
		return &domain.ValidationError{Message: "Favorite id must not be empty"}
	}
	return nil
}

// mutate applies fn to a copy, persists it and only then publishes it.
// A failed save leaves the previous set in place.
func (s *Store) mutate(fn func(*domain.Favorites) bool) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return errors.New("favorites: store closed")
	}
	next := s.favs.Clone()
	if !fn(&next) {
		s.mu.Unlock()
		return nil
	}
	if err := next.Validate(); err != nil {
		s.mu.Unlock()
		return err
	}
	value, err := domain.EncodeFavoritesCookie(next)
	if err == nil {
		err = s.cfg.Persister.Save(value)
	}
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("save favorites: %w", err)
	}
	s.favs = next
	s.scheduleLocked()
	snap, subs := s.snapshotLocked()
	s.mu.Unlock()

	notify(subs, snap)
	return nil
}

// Reload re-reads the persister, e.g. after another session changed the
// cookie, and notifies subscribers.
func (s *Store) Reload() error {
	favs, err := s.load()
	if err != nil {
		return err
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.favs = favs
	snap, subs := s.snapshotLocked()
	s.mu.Unlock()
	notify(subs, snap)
	return nil
}

// Subscribe registers fn for every change. The returned func unsubscribes.
func (s *Store) Subscribe(fn func(domain.Favorites)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Flush syncs a pending change now instead of waiting for the debounce and
// waits for any sync already running. It returns the outcome of the flushed
// sync, or nil when nothing was pending.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	if s.timer == nil {
		s.mu.Unlock()
		s.inflight.Wait()
		return nil
	}
	s.timer.Stop()
	s.timer = nil
	s.gen++
	gen := s.gen
	favs := s.favs.Clone()
	s.inflight.Add(1)
	s.mu.Unlock()

	err := s.syncWithRetry(ctx, gen, favs)
	s.inflight.Done()
	s.inflight.Wait()
	return err
}

// Close stops the debounce timer, cancels retries and waits for an
// in-flight sync to return.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.subs = map[int]func(domain.Favorites){}
	close(s.done)
	s.mu.Unlock()
	s.inflight.Wait()
}

func (s *Store) scheduleLocked() {
	if s.cfg.Syncer == nil {
		return
	}
	s.gen++
	gen := s.gen
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.cfg.Debounce, func() { s.fire(gen) })
}

func (s *Store) fire(gen uint64) {
	s.mu.Lock()
	if s.closed || gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	favs := s.favs.Clone()
	s.inflight.Add(1)
	s.mu.Unlock()

	defer s.inflight.Done()
	_ = s.syncWithRetry(context.Background(), gen, favs)
}

// syncWithRetry sends favs until it succeeds, attempts run out, or a newer
// change supersedes it. Local state is never rolled back.
func (s *Store) syncWithRetry(ctx context.Context, gen uint64, favs domain.Favorites) error {
	backoff := s.cfg.Backoff
	var err error
	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		sctx, cancel := context.WithTimeout(ctx, syncTimeout)
		err = s.cfg.Syncer.SyncFavorites(sctx, favs)
		cancel()
		if err == nil {
			s.log.Debug("favorites synced", "attempt", attempt)
			return nil
		}
		s.log.Warn("favorites sync failed", "attempt", attempt, "max_attempts", s.cfg.MaxAttempts, "error", err)
		if attempt == s.cfg.MaxAttempts {
			break
		}

		select {
		case <-time.After(backoff):
		case <-s.done:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}

		s.mu.Lock()
		superseded := gen != s.gen
		s.mu.Unlock()
		if superseded {
			s.log.Debug("favorites sync superseded by a newer change")
			return nil
		}
	}
	return fmt.Errorf("favorites sync gave up after %d attempts: %w", s.cfg.MaxAttempts, err)
}

func (s *Store) snapshotLocked() (domain.Favorites, []func(domain.Favorites)) {
	subs := make([]func(domain.Favorites), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	return s.favs.Clone(), subs
}

func notify(subs []func(domain.Favorites), f domain.Favorites) {
	for _, fn := range subs {
		fn(f)
	}
}
