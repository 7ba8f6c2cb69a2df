package http

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
)

// isProbePath reports paths hit by orchestrator probes and scrapers. They are
// exempt from rate limiting and logged at debug.
func isProbePath(path string) bool {
	switch path {
	case "/healthz", "/readyz", "/metrics":
		return true
	}
	return false
}

// AccessLogMiddleware logs one structured line per request. 5xx and handler
// errors log at error, 4xx at warn, probes at debug. Coordinates in the query
// string are never logged.
func AccessLogMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		method := c.Method()
		path := c.Path()

		err := c.Next()

		status := c.Response().StatusCode()
		attrs := []slog.Attr{
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.Int("bytes_out", len(c.Response().Body())),
			slog.String("request_id", RequestIDFromCtx(c.UserContext())),
			slog.Bool("visitor", c.Cookies(visitorCookieName) != ""),
		}
		if locale := c.Params("locale"); locale != "" {
			attrs = append(attrs, slog.String("locale", locale))
		}

		level := slog.LevelInfo
		switch {
		case err != nil:
			attrs = append(attrs, slog.String("error", err.Error()))
			level = slog.LevelError
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		case isProbePath(path):
			level = slog.LevelDebug
		}

		slog.LogAttrs(c.UserContext(), level, method+" "+path, attrs...)
		return err
	}
}
