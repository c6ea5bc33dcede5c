package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/pageza/recipe-search/backend/config"
	"github.com/pageza/recipe-search/backend/internal/logging"
)

// DB owns the connection pool for the lifetime of the process.
type DB struct {
	*gorm.DB
	sqlDB *sql.DB
}

// New opens the store selected by cfg.DBDriver and verifies it with a ping.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*DB, error) {
	gormCfg := &gorm.Config{
		Logger: logging.NewGormLogger(logger, cfg.DBSlowQuery),
	}

	var (
		gdb *gorm.DB
		err error
	)
	switch cfg.DBDriver {
	case config.DriverPostgres:
		logger.Info("connecting to database",
			"driver", cfg.DBDriver, "host", cfg.DBHost, "port", cfg.DBPort, "user", cfg.DBUser)

		gdb, err = openPostgres(cfg.DSN(), gormCfg, gorm.Open)
	case config.DriverSQLite:
		logger.Info("connecting to database", "driver", cfg.DBDriver, "path", cfg.DBPath)
		gdb, err = gorm.Open(sqlite.Open(cfg.DBPath), gormCfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("error getting connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.DBConnMaxLifetime)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	logger.Info("successfully connected to database", "driver", gdb.Dialector.Name())
	return &DB{DB: gdb, sqlDB: sqlDB}, nil
}

type gormOpener func(gorm.Dialector, ...gorm.Option) (*gorm.DB, error)

// openPostgres builds the lib/pq pool and hands it to gorm. The pool is
// closed if gorm rejects it.
func openPostgres(dsn string, gormCfg *gorm.Config, open gormOpener) (*gorm.DB, error) {
	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	gdb, err := open(postgres.New(postgres.Config{Conn: sqlDB}), gormCfg)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return gdb, nil
}

// Wrap adopts an already opened gorm handle. Used by tests.
func Wrap(gdb *gorm.DB) (*DB, error) {
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	return &DB{DB: gdb, sqlDB: sqlDB}, nil
}

// HealthCheck checks if the database is accessible
func (db *DB) HealthCheck(ctx context.Context) error {
	return db.sqlDB.PingContext(ctx)
}

// Close releases every pooled connection.
func (db *DB) Close() error {
	return db.sqlDB.Close()
}
