package services

import (
	"context"
	"errors"

	"github.com/adanyl0v/go-todo-server/internal/models"
)

var (
	ErrTodoNotFound      = errors.New("todo not found")
	ErrInvalidTodoStatus = errors.New("invalid todo status")
)

type TodoService interface {
	// CreateTodo stores a new todo with the in_progress status.
	CreateTodo(ctx context.Context, params CreateTodoParams) (*models.Todo, error)

	// GetTodos returns a page of todos, newest first. A zero limit
	// falls back to a default page size and larger limits are capped
	// at 100. An empty page is not an error.
	GetTodos(ctx context.Context, offset, limit uint32) ([]*models.Todo, error)

	// GetTodoByID returns ErrTodoNotFound if the todo doesn't exist.
	GetTodoByID(ctx context.Context, id string) (*models.Todo, error)

	// UpdateTodo changes only the fields set in params.
	//
	// It returns ErrTodoNotFound if the todo doesn't exist.
	UpdateTodo(ctx context.Context, params UpdateTodoParams) (*models.Todo, error)

	// UpdateTodoStatus returns ErrInvalidTodoStatus for an unknown
	// status or ErrTodoNotFound if the todo doesn't exist.
	UpdateTodoStatus(ctx context.Context, params UpdateTodoStatusParams) (*models.Todo, error)

	DeleteTodo(ctx context.Context, id string) error
}

type CreateTodoParams struct {
	Title       string
	Description string
}

type UpdateTodoParams struct {
	ID          string
	Title       *string
	Description *string
}

type UpdateTodoStatusParams struct {
	ID     string
	Status string
}
