package app

import (
	"fmt"

	"github.com/rs/zerolog"
	"go.uber.org/dig"

	"github.com/adanyl0v/go-todo-server/internal/database"
	"github.com/adanyl0v/go-todo-server/internal/delivery/http/v1"
	"github.com/adanyl0v/go-todo-server/internal/services"
)

// NewContainer registers the constructors of the services and handlers.
// Nothing is constructed until the server is built, so the database
// handle may be provided later with provideDatabase.
func NewContainer(logger zerolog.Logger) (*dig.Container, error) {
	container := dig.New()

	providers := []any{
		func() zerolog.Logger { return logger },
		services.NewTodoService,
		v1.New,
	}
	for _, provider := range providers {
		err := container.Provide(provider)
		if err != nil {
			return nil, fmt.Errorf("register provider: %w", err)
		}
	}

	return container, nil
}

func provideDatabase(container *dig.Container, db *database.DB) error {
	err := container.Provide(func() *database.DB { return db })
	if err != nil {
		return fmt.Errorf("register database: %w", err)
	}
	return nil
}
