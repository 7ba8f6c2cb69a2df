package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/parkpulse/web/internal/adapters/postgres"
	"github.com/parkpulse/web/internal/pkg/config"
	"github.com/parkpulse/web/internal/pkg/logging"
	"github.com/parkpulse/web/migrations"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: migrate <up|down>")
	}

	cfg, err := config.Load("parkpulse-migrate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	var scripts []string
	switch os.Args[1] {
	case "up":
		scripts = migrations.Up()
	case "down":
		scripts = migrations.Down()
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN(), postgres.WithMaxConns(1))
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	if err := run(ctx, db, scripts); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}
	slog.Info("migrations applied", "direction", os.Args[1], "count", len(scripts))
}

// run applies each script in its own transaction and stops at the first
// failure.
func run(ctx context.Context, db *postgres.DB, scripts []string) error {
	for _, name := range scripts {
		sql, err := migrations.Read(name)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		err = pgx.BeginFunc(ctx, db.Pool, func(tx pgx.Tx) error {
			_, err := tx.Exec(ctx, string(sql))
			return err
		})
		if err != nil {
			return fmt.Errorf("apply %s: %w", name, err)
		}
		slog.Info("migration applied", "script", name)
	}
	return nil
}
