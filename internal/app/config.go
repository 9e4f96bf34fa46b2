package app

import (
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-todo-server/internal/config"
)

func readConfig(logger zerolog.Logger, reader config.Reader) (*config.Config, error) {
	cfg, err := reader.Read()
	if err != nil {
		logger.Error().
			Err(err).
			Msg("failed to read env")
		return nil, err
	}
	logger.Info().
		Str("env", cfg.Env).
		Str("app", cfg.AppName).
		Msg("read env")

	return cfg, nil
}
