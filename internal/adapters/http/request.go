package http

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/parkpulse/web/internal/core/domain"
	"github.com/parkpulse/web/internal/core/usecases"
	"github.com/parkpulse/web/internal/pkg/netutil"
)

const (
	visitorCookieName   = "visitor_id"
	visitorCookieMaxAge = 365 * 24 * time.Hour
)

// clientIP returns the address to geolocate: the forwarded-for chain first,
// then X-Real-IP, then the socket peer.
func clientIP(c *fiber.Ctx) string {
	if chain := c.Get(fiber.HeaderXForwardedFor); chain != "" {
		if ip := netutil.SelectClientIP(chain); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(c.Get("X-Real-IP")); ip != "" {
		return ip
	}
	return c.IP()
}

// queryCoordinate reads lat/lng. Coordinates are only considered when both are
// present; a present but unparsable value is invalid.
func queryCoordinate(c *fiber.Ctx) (*domain.Coordinate, error) {
	rawLat, rawLng := c.Query("lat"), c.Query("lng")
	if rawLat == "" || rawLng == "" {
		return nil, nil
	}
	lat, err := strconv.ParseFloat(rawLat, 64)
	if err != nil {
		return nil, domain.ErrInvalidCoordinates
	}
	lng, err := strconv.ParseFloat(rawLng, 64)
	if err != nil {
		return nil, domain.ErrInvalidCoordinates
	}
	return &domain.Coordinate{Latitude: lat, Longitude: lng}, nil
}

func parseNearbyRequest(c *fiber.Ctx) (usecases.NearbyRequest, error) {
	req := usecases.NearbyRequest{
		ClientIP:   clientIP(c),
		IPOverride: strings.TrimSpace(c.Query("ip")),
	}

	coord, err := queryCoordinate(c)
	if err != nil {
		return req, err
	}
	req.Coordinate = coord

	if raw := c.Query("radius"); raw != "" {
		r, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return req, domain.ErrInvalidRadius
		}
		req.Radius = &r
	}
	if raw := c.Query("limit"); raw != "" {
		l, err := strconv.Atoi(raw)
		if err != nil {
			return req, domain.ErrInvalidLimit
		}
		req.Limit = &l
	}
	return req, nil
}

// splitIDs parses a comma-separated id list. ok is false when the parameter is absent.
func splitIDs(c *fiber.Ctx, name string) (ids []string, ok bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, false
	}
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, true
}

// requestFavorites builds the favorites set from id parameters, falling back
// per category to the favorites cookie.
func requestFavorites(c *fiber.Ctx) domain.Favorites {
	stored, err := domain.DecodeFavoritesCookie(c.Cookies(domain.FavoritesCookieName))
	if err != nil {
		LoggerFromCtx(c.UserContext()).Warn("ignoring malformed favorites cookie", "component", "favorites-proxy", "error", err)
		stored = domain.Favorites{}
	}

	params := []struct {
		name string
		dst  *[]string
	}{
		{"parkIds", &stored.Parks},
		{"attractionIds", &stored.Attractions},
		{"showIds", &stored.Shows},
		{"restaurantIds", &stored.Restaurants},
	}
	for _, p := range params {
		if ids, ok := splitIDs(c, p.name); ok {
			*p.dst = ids
		}
	}
	return stored
}

// hasFavoritesInput reports whether the request carries any favorites source.
func hasFavoritesInput(c *fiber.Ctx) bool {
	if c.Cookies(domain.FavoritesCookieName) != "" {
		return true
	}
	for _, name := range []string{"parkIds", "attractionIds", "showIds", "restaurantIds"} {
		if c.Query(name) != "" {
			return true
		}
	}
	return false
}

// visitorID returns the visitor cookie if it holds a valid UUID.
func visitorID(c *fiber.Ctx) (string, bool) {
	id, err := uuid.Parse(c.Cookies(visitorCookieName))
	if err != nil {
		return "", false
	}
	return id.String(), true
}

// ensureVisitorID returns the visitor id, minting and setting a new cookie when absent.
func ensureVisitorID(c *fiber.Ctx, secure bool) string {
	if id, ok := visitorID(c); ok {
		return id
	}
	id := uuid.NewString()
	c.Cookie(&fiber.Cookie{
		Name:     visitorCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(visitorCookieMaxAge.Seconds()),
		Secure:   secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return id
}

func setFavoritesCookie(c *fiber.Ctx, favs domain.Favorites, secure bool) error {
	value, err := domain.EncodeFavoritesCookie(favs)
	if err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     domain.FavoritesCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(domain.FavoritesCookieMaxAge.Seconds()),
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return nil
}

func parkPathParams(c *fiber.Ctx) domain.ParkPath {
	return domain.ParkPath{
		Continent: c.Params("continent"),
		Country:   c.Params("country"),
		City:      c.Params("city"),
		Park:      c.Params("park"),
	}
}
