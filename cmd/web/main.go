package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.temporal.io/sdk/client"
	temporallog "go.temporal.io/sdk/log"

	apispec "github.com/parkpulse/web/api"
	"github.com/parkpulse/web/internal/adapters/flags"
	"github.com/parkpulse/web/internal/adapters/http"
	"github.com/parkpulse/web/internal/adapters/images"
	natsadapter "github.com/parkpulse/web/internal/adapters/nats"
	"github.com/parkpulse/web/internal/adapters/postgres"
	"github.com/parkpulse/web/internal/adapters/upstream"
	"github.com/parkpulse/web/internal/adapters/valkey"
	"github.com/parkpulse/web/internal/core/ports"
	"github.com/parkpulse/web/internal/core/usecases"
	"github.com/parkpulse/web/internal/pkg/config"
	"github.com/parkpulse/web/internal/pkg/logging"
	"github.com/parkpulse/web/internal/pkg/telemetry"
	"github.com/parkpulse/web/internal/render"
	"github.com/parkpulse/web/internal/workflows"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load("parkpulse-web")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	api := upstream.New(upstream.Config{
		BaseURL:   cfg.Upstream.BaseURL,
		APIKey:    cfg.Upstream.APIKey,
		UserAgent: cfg.Upstream.UserAgent,
		Timeout:   time.Duration(cfg.Upstream.Timeout) * time.Second,
		Headers:   cfg.Upstream.Headers,
	})
	imgs := images.NewResolver(cfg.Images.Dir, cfg.Images.URLPrefix)

	deps := &http.Dependencies{SecureCookie: cfg.Server.SecureCookie}

	// Cache
	var cache ports.CacheService
	if cfg.Valkey.Addr != "" {
		vc, err := valkey.New(cfg.Valkey.Addr, "parkpulse")
		if err != nil {
			slog.Warn("valkey unavailable", "error", err)
		} else {
			defer vc.Close()
			cache = vc
			deps.Cache = vc
		}
	}

	// Database
	var repo ports.FavoritesRepository
	if cfg.Database.Enabled {
		db, err := postgres.New(ctx, cfg.Database.DSN(), postgres.WithMaxConns(cfg.Database.MaxConns))
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()
		go db.ReportPoolStats(ctx, 15*time.Second)
		repo = postgres.NewFavoritesRepo(db)
		deps.DB = db
	}

	// NATS
	var publisher ports.EventPublisher
	if cfg.NATS.URL != "" {
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable", "error", err)
		} else {
			defer pub.Close()
			publisher = pub
		}

		sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats ws conn unavailable", "error", err)
		} else {
			defer sub.Close()
			deps.Feed = sub
		}
	}

	// Temporal
	var dispatcher ports.SyncDispatcher
	if cfg.Temporal.Enabled {
		tc, err := client.Dial(client.Options{
			HostPort:  cfg.Temporal.HostPort,
			Namespace: cfg.Temporal.Namespace,
			Logger:    temporallog.NewStructuredLogger(slog.Default()),
		})
		if err != nil {
			slog.Warn("temporal unavailable, favorites sync runs inline", "error", err)
		} else {
			defer tc.Close()
			dispatcher = workflows.NewDispatcher(tc, cfg.Temporal.TaskQueue)
		}
	}

	decrypter := debugDecrypter(cfg.Flags.Secret)

	pages, err := render.New()
	if err != nil {
		log.Fatalf("templates: %v", err)
	}

	ttl := cfg.Upstream.Revalidate
	deps.Nearby = usecases.NewNearbyService(api, imgs, cfg.Nearby.AllowIPOverride)
	deps.Favorites = usecases.NewFavoritesService(api, imgs, repo, publisher, dispatcher)
	deps.Search = usecases.NewSearchService(api, cache, ttl)
	deps.Parks = usecases.NewParkService(api, imgs, cache, ttl)
	deps.DebugMode = usecases.NewDebugModeService(decrypter)
	deps.Pages = pages

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    256 * 1024,
		AppName:      "ParkPulse Web",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowMethods:     "GET,PUT,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowCredentials: false,
		MaxAge:           3600,
	}))
	app.Static(cfg.Images.URLPrefix, cfg.Images.Dir, fiber.Static{
		MaxAge: 86400,
	})

	http.SetupRoutes(app, deps, http.RouterOptions{
		Version:   version,
		OpenAPI:   apispec.OpenAPI,
		RateLimit: 120,
	})

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("web server starting", "addr", addr, "version", version)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

// debugDecrypter builds the flag override decrypter. Without a usable secret
// it returns nil and the debug geolocation mode always reads "real".
func debugDecrypter(secret string) ports.FlagDecrypter {
	if secret == "" {
		return nil
	}
	d, err := flags.NewDecrypter(secret)
	if err != nil {
		slog.Warn("flags secret unusable, debug geolocation mode stays real", "error", err)
		return nil
	}
	return d
}
