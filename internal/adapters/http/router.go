package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/parkpulse/web/internal/pkg/metrics"
)

const requestTimeout = 15 * time.Second

// RouterOptions carries the settings SetupRoutes needs beyond the dependencies.
type RouterOptions struct {
	Version string
	// OpenAPI is the document served under /docs. Nil disables the docs routes.
	OpenAPI []byte
	// RateLimit is the number of requests per minute per client. Zero disables limiting.
	RateLimit int
}

// SetupRoutes registers the JSON API, GraphQL, WebSocket and page routes.
// Page routes are registered last because "/:locale" matches any single segment.
func SetupRoutes(app *fiber.App, deps *Dependencies, opts RouterOptions) {
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(requestid.New())
	app.Use(RequestIDLogMiddleware())
	app.Use(AccessLogMiddleware())

	if opts.RateLimit > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        opts.RateLimit,
			Expiration: 1 * time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return clientIP(c)
			},
			Next: func(c *fiber.Ctx) bool {
				return isProbePath(c.Path())
			},
			LimitReached: func(c *fiber.Ctx) error {
				return newError(c, fiber.StatusTooManyRequests, "rate_limited", "Too many requests, please try again later")
			},
		}))
	}

	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", opts.Version)
		return c.Next()
	})

	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout, fast internal checks)
	app.Get("/healthz", HealthHandler(opts.Version))
	app.Get("/readyz", ReadyHandler(deps))

	api := app.Group("/api")
	api.Get("/nearby", timeout.NewWithContext(NearbyHandler(deps), requestTimeout))
	api.Get("/favorites", timeout.NewWithContext(FavoritesHandler(deps), requestTimeout))
	api.Put("/favorites", timeout.NewWithContext(SyncFavoritesHandler(deps), requestTimeout))
	api.Get("/debug-geo-mode", DebugGeoModeHandler(deps))
	api.Get("/search", timeout.NewWithContext(SearchHandler(deps), requestTimeout))
	api.Get("/parks/:continent/:country/:city/:park", timeout.NewWithContext(ParkHandler(deps), requestTimeout))
	api.Get("/parks/:continent/:country/:city/:park/calendar", timeout.NewWithContext(ParkCalendarHandler(deps), requestTimeout))
	api.Use(func(c *fiber.Ctx) error {
		return errNotFound(c, "Not found")
	})

	app.Post("/graphql", timeout.NewWithContext(GraphQLHandler(deps), requestTimeout))

	SetupDocs(app, opts.OpenAPI)

	app.Use("/ws/favorites", FavoritesFeedUpgrade(deps))
	if deps.Feed != nil {
		app.Get("/ws/favorites", websocket.New(FavoritesFeedHandler(deps.Feed)))
	}

	if deps.Pages != nil {
		app.Get("/", RootRedirectHandler())
		app.Get("/:locale", timeout.NewWithContext(HomePageHandler(deps), requestTimeout))
		app.Get("/:locale/nearby", timeout.NewWithContext(NearbyPageHandler(deps), requestTimeout))
		app.Get("/:locale/favorites", timeout.NewWithContext(FavoritesPageHandler(deps), requestTimeout))
		places := timeout.NewWithContext(PlacePageHandler(deps), requestTimeout)
		app.Get("/:locale/parks/:continent", places)
		app.Get("/:locale/parks/:continent/:country", places)
		app.Get("/:locale/parks/:continent/:country/:city", places)
		app.Get("/:locale/parks/:continent/:country/:city/:park", timeout.NewWithContext(ParkPageHandler(deps), requestTimeout))
		app.Get("/:locale/parks/:continent/:country/:city/:park/attractions/:attraction", timeout.NewWithContext(AttractionPageHandler(deps), requestTimeout))
	}
}
