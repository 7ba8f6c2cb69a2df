package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// revalidateSeconds matches the upstream revalidation window.
const revalidateSeconds = "300"

// CachingMiddleware sets Cache-Control headers on GET responses based on path.
// Handlers that set the header themselves win.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != fiber.MethodGet {
			return err
		}
		if existing := c.GetRespHeader(fiber.HeaderCacheControl); existing != "" {
			return err
		}

		path := c.Path()
		var ttl string

		switch {
		case path == "/healthz" || path == "/readyz":
			ttl = "no-cache"

		case path == "/metrics":
			ttl = "no-cache"

		// Per-visitor or live data
		case strings.HasPrefix(path, "/api/nearby"),
			strings.HasPrefix(path, "/api/favorites"),
			strings.HasPrefix(path, "/api/debug-geo-mode"),
			strings.HasPrefix(path, "/ws"),
			strings.HasSuffix(path, "/nearby"),
			strings.HasSuffix(path, "/favorites"):
			ttl = "no-store"

		case strings.HasPrefix(path, "/api/"):
			ttl = "public, s-maxage=" + revalidateSeconds + ", stale-while-revalidate=60"

		case strings.HasPrefix(path, "/docs"):
			ttl = "public, max-age=3600"

		case path == "/":
			ttl = "private, no-cache" // varies by Accept-Language

		default:
			ttl = "public, s-maxage=" + revalidateSeconds + ", stale-while-revalidate=60"
		}

		c.Set(fiber.HeaderCacheControl, ttl)
		return err
	}
}
