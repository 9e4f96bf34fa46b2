package v1

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/go-todo-server/internal/models"
	"github.com/adanyl0v/go-todo-server/internal/services"
)

type getTodoResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func newGetTodoResponse(todo *models.Todo) getTodoResponse {
	return getTodoResponse{
		ID:          strconv.FormatUint(todo.ID, 10),
		Title:       todo.Title,
		Description: todo.Description,
		Status:      todo.Status,
		CreatedAt:   todo.CreatedAt,
		UpdatedAt:   todo.UpdatedAt,
	}
}

type createTodoRequest struct {
	Title       string  `json:"title" binding:"required,max=255"`
	Description *string `json:"description,omitempty"`
}

func (h *handlerImpl) HandleCreateTodo(c *gin.Context) {
	var req createTodoRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	params := services.CreateTodoParams{Title: req.Title}
	if req.Description != nil {
		params.Description = *req.Description
	}

	todo, err := h.todos.CreateTodo(c, params)
	if err != nil {
		h.abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newGetTodoResponse(todo))
}

func (h *handlerImpl) HandleGetTodos(c *gin.Context) {
	offset, err := parseUint32Query(c, "offset")
	if err != nil {
		abort(c, newBadRequestError("invalid offset"))
		return
	}
	limit, err := parseUint32Query(c, "limit")
	if err != nil {
		abort(c, newBadRequestError("invalid limit"))
		return
	}

	todos, err := h.todos.GetTodos(c, offset, limit)
	if err != nil {
		h.abortWithServiceError(c, err)
		return
	}

	response := make([]getTodoResponse, len(todos))
	for i, todo := range todos {
		response[i] = newGetTodoResponse(todo)
	}
	c.JSON(http.StatusOK, response)
}

func (h *handlerImpl) HandleGetTodo(c *gin.Context) {
	todo, err := h.todos.GetTodoByID(c, c.Param("id"))
	if err != nil {
		h.abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newGetTodoResponse(todo))
}

type updateTodoRequest struct {
	Title       *string `json:"title,omitempty" binding:"omitempty,min=1,max=255"`
	Description *string `json:"description,omitempty"`
}

func (h *handlerImpl) HandleUpdateTodo(c *gin.Context) {
	var req updateTodoRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	todo, err := h.todos.UpdateTodo(c, services.UpdateTodoParams{
		ID:          c.Param("id"),
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		h.abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newGetTodoResponse(todo))
}

func (h *handlerImpl) HandleSetTodoStatus(c *gin.Context) {
	status := c.Query("status")
	if status == "" {
		abort(c, newBadRequestError("no status provided"))
		return
	}

	todo, err := h.todos.UpdateTodoStatus(c, services.UpdateTodoStatusParams{
		ID:     c.Param("id"),
		Status: status,
	})
	if err != nil {
		h.abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newGetTodoResponse(todo))
}

func (h *handlerImpl) HandleDeleteTodo(c *gin.Context) {
	err := h.todos.DeleteTodo(c, c.Param("id"))
	if err != nil {
		h.abortWithServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *handlerImpl) abortWithServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTodoNotFound):
		abort(c, newNotFoundError(err.Error()))
	case errors.Is(err, services.ErrInvalidTodoStatus):
		abort(c, newBadRequestError(err.Error()))
	default:
		h.logger.Error().
			Err(err).
			Str("path", c.Request.URL.Path).
			Msg("todo service failed")
		abort(c, newStatusTextError(http.StatusInternalServerError))
	}
}

func parseUint32Query(c *gin.Context, key string) (uint32, error) {
	value := c.Query(key)
	if value == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint32(n), nil
}
