package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/adanyl0v/go-todo-server/internal/app"
	"github.com/adanyl0v/go-todo-server/internal/config"
)

func main() {
	logger := app.NewDefaultLogger(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := app.Run(ctx, logger, config.NewEnvReader())
	if err != nil {
		logger.Error().
			Err(err).
			Msg("application stopped with an error")
		stop()
		os.Exit(1)
	}
}
