package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-todo-server/internal/services"
)

type Handler interface {
	// Register mounts the todo routes on router.
	Register(router gin.IRouter)

	HandleCreateTodo(c *gin.Context)
	HandleGetTodos(c *gin.Context)
	HandleGetTodo(c *gin.Context)
	HandleUpdateTodo(c *gin.Context)
	HandleSetTodoStatus(c *gin.Context)
	HandleDeleteTodo(c *gin.Context)
}

type handlerImpl struct {
	logger zerolog.Logger
	todos  services.TodoService
}

func New(
	logger zerolog.Logger,
	todoService services.TodoService,
) Handler {
	return &handlerImpl{
		logger: logger,
		todos:  todoService,
	}
}

func (h *handlerImpl) Register(router gin.IRouter) {
	todos := router.Group("/todos")
	todos.GET("", h.HandleGetTodos)
	todos.POST("", h.HandleCreateTodo)

	todo := todos.Group("/:id")
	todo.GET("", h.HandleGetTodo)
	todo.PATCH("", h.HandleUpdateTodo)
	todo.DELETE("", h.HandleDeleteTodo)
	todo.PATCH("/status", h.HandleSetTodoStatus)
}
