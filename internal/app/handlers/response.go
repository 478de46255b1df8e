package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kalpovskii/todo-api/internal/app/models"
	"github.com/kalpovskii/todo-api/internal/app/repositories"
	"github.com/kalpovskii/todo-api/internal/log"
)

const (
	MsgTodoNotFound = "Todo not found"
	MsgTodoDeleted  = "Todo deleted"
)

// Response is the envelope of every JSON response.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// TodoResponse documents a single-todo envelope.
type TodoResponse struct {
	Success bool        `json:"success" example:"true"`
	Data    models.Todo `json:"data"`
}

// TodoListResponse documents a todo-list envelope.
type TodoListResponse struct {
	Success bool          `json:"success" example:"true"`
	Data    []models.Todo `json:"data"`
}

// MessageResponse documents an envelope that carries only a message.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func ok(c *gin.Context, status int, data any) {
	c.JSON(status, Response{Success: true, Data: data})
}

func fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Response{Success: false, Message: message})
}

// ErrorHandler turns the last error a handler attached with c.Error into a
// response. It is the only place handler errors become status codes.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		writeError(c, c.Errors.Last().Err)
	}
}

func writeError(c *gin.Context, err error) {
	if errors.Is(err, repositories.ErrNotFound) {
		fail(c, http.StatusNotFound, MsgTodoNotFound)
		return
	}

	log.Error().
		Err(err).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Str("rid", c.GetString(log.ContextKeyRequestID)).
		Msg("unhandled request error")
	fail(c, http.StatusInternalServerError, err.Error())
}
