package app

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-todo-server/internal/config"
)

// NewDefaultLogger is used until the configuration is read.
func NewDefaultLogger(w io.Writer) zerolog.Logger {
	zerolog.TimestampFieldName = "timestamp"

	logger := zerolog.New(w).
		Level(zerolog.InfoLevel).
		With().
		Timestamp().
		Caller().
		Int("pid", os.Getpid()).
		Logger()

	logger.Info().Msg("initialized default logger")
	return logger
}

// NewApplicationLogger adjusts logger to the configured environment.
// In the local environment the output is rewritten for humans and sent
// to w, which should be the writer logger already uses.
func NewApplicationLogger(logger zerolog.Logger, env string, w io.Writer) (zerolog.Logger, error) {
	switch env {
	case config.EnvDev:
		logger = logger.Level(zerolog.DebugLevel)
	case config.EnvProd:
		logger = logger.Level(zerolog.InfoLevel)
	case config.EnvLocal:
		consoleWriter := zerolog.NewConsoleWriter()
		consoleWriter.TimeFormat = time.DateTime
		consoleWriter.Out = w
		logger = logger.Output(consoleWriter).Level(zerolog.TraceLevel)
	default:
		logger.Error().
			Str("env", env).
			Msg("unknown env")
		return logger, fmt.Errorf("unknown env: %s", env)
	}

	logger.Info().Msg("initialized application logger")
	return logger, nil
}
