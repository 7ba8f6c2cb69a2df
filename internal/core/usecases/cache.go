package usecases

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/parkpulse/web/internal/core/domain"
	"github.com/parkpulse/web/internal/core/ports"
)

// lastGoodTTL is how long a successful upstream response is kept around to be
// shown, flagged stale, when a later refresh fails.
const lastGoodTTL = 24 * 60 * 60

// onFailure selects what cachedFetch does when the upstream call fails.
type onFailure int

const (
	// failFast returns the error. JSON routes use it since they have no way
	// to flag old data.
	failFast onFailure = iota
	// serveLastGood returns the last-good copy with stale set. Pages use it
	// and show a stale banner.
	serveLastGood
)

// cachedFetch serves key from the cache while it is fresh and otherwise calls
// fetch. Successful results are stored for ttl seconds plus a longer-lived
// last-good copy. With serveLastGood, a transport failure or upstream 5xx
// returns that copy with stale set; an upstream 4xx never does. A nil cache
// always calls fetch.
func cachedFetch[T any](ctx context.Context, cache ports.CacheService, key string, ttl int, mode onFailure, fetch func(context.Context) (T, error)) (v T, stale bool, err error) {
	if cache != nil && ttl > 0 {
		if data, err := cache.Get(ctx, key); err == nil {
			if err := json.Unmarshal(data, &v); err == nil {
				return v, false, nil
			}
		}
	}

	v, err = fetch(ctx)
	if err != nil {
		if cache != nil && mode == serveLastGood && !domain.IsUpstreamAnswer(err) {
			if data, cerr := cache.Get(ctx, key+":last"); cerr == nil {
				var last T
				if json.Unmarshal(data, &last) == nil {
					slog.Warn("serving last known response", "key", key, "error", err)
					return last, true, nil
				}
			}
		}
		return v, false, err
	}

	if cache != nil {
		if data, err := json.Marshal(v); err == nil {
			if ttl > 0 {
				_ = cache.Set(ctx, key, data, ttl)
			}
			_ = cache.Set(ctx, key+":last", data, lastGoodTTL)
		}
	}
	return v, false, nil
}
