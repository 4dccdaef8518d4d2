package main

import (
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/joestump/joe-bookmarks/internal/config"
	"github.com/joestump/joe-bookmarks/internal/db"
	"github.com/joestump/joe-bookmarks/internal/logger"
)

// setup loads config, builds the logger, and opens and migrates the
// database. The caller closes the returned database and syncs the logger.
func setup() (*config.Config, *zap.Logger, *sqlx.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return nil, nil, nil, err
	}

	database, err := db.New(cfg.DB.Driver, cfg.DB.DSN)
	if err != nil {
		return nil, nil, nil, err
	}

	if err := db.Migrate(database, cfg.DB.Driver); err != nil {
		_ = database.Close()
		return nil, nil, nil, err
	}
	return cfg, log, database, nil
}
