package http

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/parkpulse/web/internal/adapters/flags"
	"github.com/parkpulse/web/internal/core/domain"
	"github.com/parkpulse/web/internal/pkg/metrics"
)

// NearbyHandler resolves the parks around the caller. Wait times must be
// fresh, so responses are never cached.
func NearbyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderCacheControl, "no-store")

		req, err := parseNearbyRequest(c)
		if err != nil {
			return respondError(c, "nearby-proxy", "Failed to fetch nearby parks", err)
		}

		res, err := deps.Nearby.Resolve(c.UserContext(), req)
		if err != nil {
			return respondError(c, "nearby-proxy", "Failed to fetch nearby parks", err)
		}

		source := "coordinates"
		if req.Coordinate == nil {
			source = "ip"
		}
		metrics.NearbyResults.WithLabelValues(string(res.Type), source).Inc()
		return c.JSON(res)
	}
}

// FavoritesHandler returns the favorited entities with live data. Ids come
// from the query string, the favorites cookie, or the visitor's stored copy.
func FavoritesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderCacheControl, "no-store")

		coord, err := queryCoordinate(c)
		if err != nil {
			return respondError(c, "favorites-proxy", "Failed to fetch favorites", err)
		}

		favs := requestFavorites(c)
		if !hasFavoritesInput(c) {
			if id, ok := visitorID(c); ok {
				stored, err := deps.Favorites.Stored(c.UserContext(), id)
				switch {
				case err == nil:
					favs = stored.Favorites
				case !errors.Is(err, domain.ErrNotFound):
					LoggerFromCtx(c.UserContext()).Warn("load stored favorites", "component", "favorites-proxy", "error", err)
				}
			}
		}

		res, err := deps.Favorites.Lookup(c.UserContext(), domain.FavoritesQuery{
			Favorites:  favs,
			Coordinate: coord,
			ClientIP:   clientIP(c),
			Cookie:     c.Get(fiber.HeaderCookie),
		})
		if err != nil {
			return respondError(c, "favorites-proxy", "Failed to fetch favorites", err)
		}
		return c.JSON(res)
	}
}

// SyncFavoritesHandler accepts the full favorites set of a visitor, refreshes
// the favorites cookie and hands the write to the sync pipeline.
func SyncFavoritesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var favs domain.Favorites
		if err := json.Unmarshal(c.Body(), &favs); err != nil {
			metrics.FavoritesSyncs.WithLabelValues("invalid").Inc()
			return errBadRequest(c, domain.ErrInvalidFavorites.Message)
		}

		id := ensureVisitorID(c, deps.SecureCookie)
		synced, err := deps.Favorites.Sync(c.UserContext(), id, favs)
		if err != nil {
			metrics.FavoritesSyncs.WithLabelValues("error").Inc()
			return respondError(c, "favorites-sync", "Failed to sync favorites", err)
		}
		if err := setFavoritesCookie(c, synced, deps.SecureCookie); err != nil {
			return respondError(c, "favorites-sync", "Failed to sync favorites", err)
		}

		metrics.FavoritesSyncs.WithLabelValues("accepted").Inc()
		c.Set(fiber.HeaderCacheControl, "no-store")
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
			"synced":    true,
			"favorites": synced,
		})
	}
}

// DebugGeoModeHandler reports the debug geolocation mode from the flag
// override cookie. Any failure yields "real".
func DebugGeoModeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderCacheControl, "no-store")
		mode := deps.DebugMode.Mode(c.Cookies(flags.CookieName))
		return c.JSON(fiber.Map{"mode": mode})
	}
}

// SearchHandler proxies search queries. Queries under three characters get
// an empty result.
func SearchHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := deps.Search.Search(c.UserContext(), c.Query("q"))
		if err != nil {
			return respondError(c, "search-proxy", "Search failed", err)
		}
		return c.JSON(res)
	}
}

// ParkHandler returns a single park with its attractions.
func ParkHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		park, err := deps.Parks.Get(c.UserContext(), parkPathParams(c))
		if err != nil {
			return respondError(c, "park-proxy", "Failed to fetch park", err)
		}
		return c.JSON(park)
	}
}

// ParkCalendarHandler returns a park's operating calendar between from and to.
func ParkCalendarHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cal, err := deps.Parks.Calendar(c.UserContext(), parkPathParams(c), c.Query("from"), c.Query("to"))
		if err != nil {
			return respondError(c, "calendar-proxy", "Failed to fetch park calendar", err)
		}
		return c.JSON(cal)
	}
}
