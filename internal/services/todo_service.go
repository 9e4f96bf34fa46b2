package services

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/adanyl0v/go-todo-server/internal/database"
	"github.com/adanyl0v/go-todo-server/internal/models"
)

const (
	defaultTodosLimit = 32
	maxTodosLimit     = 100
)

type todoServiceImpl struct {
	logger zerolog.Logger
	db     *database.DB
}

func NewTodoService(
	logger zerolog.Logger,
	db *database.DB,
) TodoService {
	return &todoServiceImpl{
		logger: logger,
		db:     db,
	}
}

func (s *todoServiceImpl) CreateTodo(ctx context.Context, params CreateTodoParams) (*models.Todo, error) {
	todo := &models.Todo{
		Title:       params.Title,
		Description: params.Description,
		Status:      models.StatusInProgress,
	}

	err := s.db.WithContext(ctx).Create(todo).Error
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to insert todo")
		return nil, err
	}

	s.logger.Info().
		Uint64("todo_id", todo.ID).
		Msg("created todo")
	return todo, nil
}

func (s *todoServiceImpl) GetTodos(ctx context.Context, offset, limit uint32) ([]*models.Todo, error) {
	switch {
	case limit == 0:
		limit = defaultTodosLimit
	case limit > maxTodosLimit:
		limit = maxTodosLimit
	}

	var todos []*models.Todo
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Limit(int(limit)).
		Offset(int(offset)).
		Find(&todos).
		Error
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to select todos")
		return nil, err
	}
	if todos == nil {
		todos = []*models.Todo{}
	}

	s.logger.Debug().
		Int("count", len(todos)).
		Uint32("offset", offset).
		Uint32("limit", limit).
		Msg("selected todos")
	return todos, nil
}

func (s *todoServiceImpl) GetTodoByID(ctx context.Context, id string) (*models.Todo, error) {
	todoID, ok := parseTodoID(id)
	if !ok {
		return nil, ErrTodoNotFound
	}

	todo := new(models.Todo)
	err := s.db.WithContext(ctx).First(todo, todoID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Debug().
				Str("todo_id", id).
				Msg("todo not found")
			return nil, ErrTodoNotFound
		}

		s.logger.Error().
			Err(err).
			Str("todo_id", id).
			Msg("failed to select todo")
		return nil, err
	}
	return todo, nil
}

func (s *todoServiceImpl) UpdateTodo(ctx context.Context, params UpdateTodoParams) (*models.Todo, error) {
	todoID, ok := parseTodoID(params.ID)
	if !ok {
		return nil, ErrTodoNotFound
	}
	if params.Title == nil && params.Description == nil {
		return s.GetTodoByID(ctx, params.ID)
	}

	fields := map[string]any{"updated_at": time.Now().UTC()}
	if params.Title != nil {
		fields["title"] = *params.Title
	}
	if params.Description != nil {
		fields["description"] = *params.Description
	}

	err := s.updateTodo(ctx, todoID, fields)
	if err != nil {
		if !errors.Is(err, ErrTodoNotFound) {
			s.logger.Error().
				Err(err).
				Str("todo_id", params.ID).
				Msg("failed to update todo")
		}
		return nil, err
	}

	s.logger.Info().
		Str("todo_id", params.ID).
		Msg("updated todo")
	return s.GetTodoByID(ctx, params.ID)
}

func (s *todoServiceImpl) UpdateTodoStatus(ctx context.Context, params UpdateTodoStatusParams) (*models.Todo, error) {
	if !models.IsValidStatus(params.Status) {
		return nil, ErrInvalidTodoStatus
	}
	todoID, ok := parseTodoID(params.ID)
	if !ok {
		return nil, ErrTodoNotFound
	}

	err := s.updateTodo(ctx, todoID, map[string]any{
		"status":     params.Status,
		"updated_at": time.Now().UTC(),
	})
	if err != nil {
		if !errors.Is(err, ErrTodoNotFound) {
			s.logger.Error().
				Err(err).
				Str("todo_id", params.ID).
				Msg("failed to update todo status")
		}
		return nil, err
	}

	s.logger.Info().
		Str("todo_id", params.ID).
		Str("status", params.Status).
		Msg("updated todo status")
	return s.GetTodoByID(ctx, params.ID)
}

func (s *todoServiceImpl) DeleteTodo(ctx context.Context, id string) error {
	todoID, ok := parseTodoID(id)
	if !ok {
		return ErrTodoNotFound
	}

	res := s.db.WithContext(ctx).Delete(&models.Todo{}, todoID)
	err := affectedOne(res)
	if err != nil {
		if !errors.Is(err, ErrTodoNotFound) {
			s.logger.Error().
				Err(err).
				Str("todo_id", id).
				Msg("failed to delete todo")
		}
		return err
	}

	s.logger.Info().
		Str("todo_id", id).
		Msg("deleted todo")
	return nil
}

func (s *todoServiceImpl) updateTodo(ctx context.Context, todoID uint64, fields map[string]any) error {
	res := s.db.WithContext(ctx).
		Model(&models.Todo{}).
		Where("id = ?", todoID).
		Updates(fields)
	return affectedOne(res)
}

// affectedOne returns ErrTodoNotFound when no row was affected.
func affectedOne(res *gorm.DB) error {
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrTodoNotFound
	}
	return nil
}

func parseTodoID(id string) (uint64, bool) {
	todoID, err := strconv.ParseUint(id, 10, 63)
	if err != nil || todoID == 0 {
		return 0, false
	}
	return todoID, true
}
