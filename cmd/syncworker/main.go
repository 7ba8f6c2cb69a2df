package main

import (
	"context"
	"log"
	"log/slog"

	"go.temporal.io/sdk/client"
	temporallog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/parkpulse/web/internal/adapters/nats"
	"github.com/parkpulse/web/internal/adapters/postgres"
	"github.com/parkpulse/web/internal/core/ports"
	"github.com/parkpulse/web/internal/core/usecases"
	"github.com/parkpulse/web/internal/pkg/config"
	"github.com/parkpulse/web/internal/pkg/logging"
	"github.com/parkpulse/web/internal/workflows"
)

func main() {
	cfg, err := config.Load("parkpulse-syncworker")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx := context.Background()

	if !cfg.Database.Enabled {
		log.Fatal("syncworker needs database.enabled=true")
	}
	db, err := postgres.New(ctx, cfg.Database.DSN(), postgres.WithMaxConns(cfg.Database.MaxConns))
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	var publisher ports.EventPublisher
	if cfg.NATS.URL != "" {
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable, favorites changes will not be broadcast", "error", err)
		} else {
			defer pub.Close()
			publisher = pub
		}
	}

	// The workflow only needs persistence and publishing; lookups stay on the web tier.
	favorites := usecases.NewFavoritesService(nil, nil, postgres.NewFavoritesRepo(db), publisher, nil)

	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    temporallog.NewStructuredLogger(slog.Default()),
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})

	w.RegisterWorkflow(workflows.FavoritesSyncWorkflow)
	w.RegisterActivity(&workflows.FavoritesActivities{Favorites: favorites})

	slog.Info("syncworker started", "task_queue", cfg.Temporal.TaskQueue, "namespace", cfg.Temporal.Namespace)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
