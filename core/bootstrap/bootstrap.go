package bootstrap

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	coreconfig "orderbot/core/config"
	coredatabase "orderbot/core/database"
	"orderbot/core/logger"
)

// Run initializes the logger, connects to the database, and applies migrations.
func Run(cfg *coreconfig.Config) (*sqlx.DB, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: nil config provided")
	}

	if err := logger.InitLogger(cfg); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	db, err := coredatabase.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: database initialization failed: %w", err)
	}

	if err := coredatabase.RunMigrations(cfg.Database); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: migrations failed: %w", err)
	}

	return db, nil
}
