package app

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-todo-server/internal/config"
	"github.com/adanyl0v/go-todo-server/internal/database"
	"github.com/adanyl0v/go-todo-server/internal/models"
)

// DatabaseOpener builds a connection from the configuration without
// contacting the server. Queries are logged with logger.
type DatabaseOpener func(cfg config.DatabaseConfig, logger zerolog.Logger) (*database.DB, error)

func openDatabase(cfg config.DatabaseConfig, logger zerolog.Logger) (*database.DB, error) {
	return database.Open(database.Options{
		Dialect:        cfg.Dialect,
		Host:           cfg.Host,
		Port:           cfg.Port,
		Username:       cfg.Username,
		Password:       cfg.Password,
		Database:       cfg.Name,
		Charset:        database.DefaultCharset,
		Collate:        database.DefaultCollate,
		ConnectTimeout: cfg.ConnectTimeout,
		Logger:         logger.With().Str("component", "gorm").Logger(),
	})
}

// prepareDatabase registers the models, checks the connection and
// synchronizes the schema. With a forced sync every table is recreated
// and all rows are lost.
func prepareDatabase(ctx context.Context, logger zerolog.Logger, db *database.DB, force bool) error {
	err := db.Register(&models.Todo{})
	if err != nil {
		logger.Error().
			Err(err).
			Msg("failed to register models")
		return err
	}

	err = db.Authenticate(ctx)
	if err != nil {
		logger.Error().
			Err(err).
			Str("dialect", db.Dialect()).
			Str("host", db.Options().Host).
			Msg("failed to authenticate database")
		return err
	}
	logger.Info().
		Str("dialect", db.Dialect()).
		Str("host", db.Options().Host).
		Int("port", db.Options().Port).
		Msg("connected to database")

	err = db.Sync(ctx, database.SyncOptions{Force: force})
	if err != nil {
		logger.Error().
			Err(err).
			Msg("failed to sync schema")
		return err
	}
	logger.Info().
		Bool("force", force).
		Strs("tables", db.Tables()).
		Msg("synced schema")

	return nil
}

func closeDatabase(logger zerolog.Logger, db *database.DB) {
	err := db.Close()
	if err != nil {
		logger.Error().
			Err(err).
			Msg("failed to close database")
		return
	}
	logger.Info().Msg("disconnected from database")
}
