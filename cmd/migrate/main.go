package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/pageza/recipe-search/backend/config"
	"github.com/pageza/recipe-search/backend/internal/database"
	"github.com/pageza/recipe-search/backend/internal/logging"
)

// Creates the recipes table so the external loader has a target. Safe to
// run repeatedly.
func main() {
	dbPath := flag.String("db", "", "SQLite file to migrate (overrides DB_PATH)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if *dbPath != "" {
		cfg.DBDriver = config.DriverSQLite
		cfg.DBPath = *dbPath
	}

	logger := logging.New(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := database.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.RunMigrations(db.DB); err != nil {
		logger.Error("migration failed", "error", err)
		os.Exit(1)
	}
	logger.Info("migrations applied", "driver", cfg.DBDriver)
}
