package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	coreconfig "orderbot/core/config"
	"orderbot/core/logger"

	"log/slog"
)

// DSN builds the driver-specific connection string.
func DSN(cfg coreconfig.DatabaseConfig) string {
	if cfg.Driver == coreconfig.DriverSQLite {
		return cfg.Path
	}
	return fmt.Sprintf(
		"user=%s password=%s host=%s port=%s dbname=%s sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name, cfg.SSLMode,
	)
}

// URL builds the connection URL consumed by golang-migrate.
func URL(cfg coreconfig.DatabaseConfig) string {
	if cfg.Driver == coreconfig.DriverSQLite {
		return "sqlite://" + cfg.Path
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name, cfg.SSLMode,
	)
}

// Connect opens the database connection, configures the pool, and verifies connectivity.
func Connect(cfg coreconfig.DatabaseConfig) (*sqlx.DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	start := time.Now()
	db, err := sqlx.ConnectContext(ctx, cfg.Driver, DSN(cfg))
	took := time.Since(start)
	if err != nil {
		attrs := connectAttrs(cfg)
		attrs = append(attrs, slog.String("err", err.Error()))
		logger.DB.LogAttrs(ctx, slog.LevelError, "db connect failed", attrs...)
		return nil, fmt.Errorf("db connect: %w", err)
	}

	maxConns := cfg.MaxConnections
	if cfg.Driver == coreconfig.DriverSQLite {
		// A single writer avoids SQLITE_BUSY on concurrent snapshot rewrites.
		maxConns = 1
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)

	attrs := connectAttrs(cfg)
	attrs = append(attrs,
		slog.Int("pool_open", maxConns),
		slog.Duration("duration", logger.RoundMS(took)),
	)
	logger.DB.LogAttrs(ctx, slog.LevelInfo, "db connected", attrs...)
	return db, nil
}

func connectAttrs(cfg coreconfig.DatabaseConfig) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("event", "db.connect"),
		slog.String("driver", cfg.Driver),
	}
	if cfg.Driver == coreconfig.DriverSQLite {
		return append(attrs, slog.String("path", cfg.Path))
	}
	return append(attrs,
		slog.String("host", cfg.Host),
		slog.String("port", cfg.Port),
		slog.String("db", cfg.Name),
	)
}
