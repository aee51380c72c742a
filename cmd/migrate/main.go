package main

import (
	"context"
	"database/sql"
	"flag"
	"os"
	"time"

	"placement-backend/config"
	"placement-backend/migrations"
	"placement-backend/pkg/logger"

	_ "github.com/lib/pq"
)

// Applies embedded migrations in order, recording each version in schema_migrations.
func main() {
	dryRun := flag.Bool("dry-run", false, "list pending migrations without applying them")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Log.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	logger.Init(cfg.LogLevel)

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := run(ctx, db, *dryRun); err != nil {
		logger.Log.Error("Migration failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, db *sql.DB, dryRun bool) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`); err != nil {
		return err
	}

	all, err := migrations.All()
	if err != nil {
		return err
	}

	for _, m := range all {
		var exists bool
		if err := db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)`, m.Version,
		).Scan(&exists); err != nil {
			return err
		}
		if exists {
			continue
		}
		if dryRun {
			logger.Log.Info("Pending migration", "version", m.Version)
			continue
		}
		if err := apply(ctx, db, m); err != nil {
			return err
		}
		logger.Log.Info("Applied migration", "version", m.Version)
	}
	return nil
}

func apply(ctx context.Context, db *sql.DB, m migrations.Migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, m.Version); err != nil {
		return err
	}
	return tx.Commit()
}
