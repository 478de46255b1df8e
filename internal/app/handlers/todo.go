package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kalpovskii/todo-api/internal/app/models"
)

// TodoService is what the handlers need from the service layer.
type TodoService interface {
	List(ctx context.Context) ([]models.Todo, error)
	Get(ctx context.Context, id string) (*models.Todo, error)
	Create(ctx context.Context, in models.TodoInput) (*models.Todo, error)
	Update(ctx context.Context, id string, patch models.TodoPatch) (*models.Todo, error)
	Delete(ctx context.Context, id string) (*models.Todo, error)
}

type TodoHandler struct {
	service TodoService
}

func NewTodoHandler(service TodoService) *TodoHandler {
	return &TodoHandler{service: service}
}

// List godoc
//
//	@Summary	Get all todos
//	@Tags		Todos
//	@Produce	json
//	@Success	200	{object}	TodoListResponse
//	@Failure	500	{object}	MessageResponse
//	@Router		/api/todos [get]
func (h *TodoHandler) List(c *gin.Context) {
	todos, err := h.service.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	if todos == nil {
		todos = []models.Todo{}
	}
	ok(c, http.StatusOK, todos)
}

// Get godoc
//
//	@Summary	Get a todo by ID
//	@Tags		Todos
//	@Produce	json
//	@Param		id	path		string	true	"Todo ID"
//	@Success	200	{object}	TodoResponse
//	@Failure	404	{object}	MessageResponse
//	@Failure	500	{object}	MessageResponse
//	@Router		/api/todos/{id} [get]
func (h *TodoHandler) Get(c *gin.Context) {
	todo, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, http.StatusOK, todo)
}

// Create godoc
//
//	@Summary	Create a new todo
//	@Tags		Todos
//	@Accept		json
//	@Produce	json
//	@Param		todo	body		models.TodoInput	true	"Todo to create"
//	@Success	201		{object}	TodoResponse
//	@Failure	400		{object}	MessageResponse
//	@Failure	500		{object}	MessageResponse
//	@Router		/api/todos [post]
func (h *TodoHandler) Create(c *gin.Context) {
	in, err := decodeInput(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	todo, err := h.service.Create(c.Request.Context(), in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, http.StatusCreated, todo)
}

// Update godoc
//
//	@Summary	Update a todo
//	@Tags		Todos
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string				true	"Todo ID"
//	@Param		todo	body		models.TodoPatch	true	"Fields to change"
//	@Success	200		{object}	TodoResponse
//	@Failure	404		{object}	MessageResponse
//	@Failure	500		{object}	MessageResponse
//	@Router		/api/todos/{id} [put]
//	@Router		/api/todos/{id} [patch]
func (h *TodoHandler) Update(c *gin.Context) {
	patch, err := decodePatch(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	todo, err := h.service.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, http.StatusOK, todo)
}

// Delete godoc
//
//	@Summary	Delete a todo
//	@Tags		Todos
//	@Produce	json
//	@Param		id	path		string	true	"Todo ID"
//	@Success	200	{object}	MessageResponse
//	@Failure	404	{object}	MessageResponse
//	@Failure	500	{object}	MessageResponse
//	@Router		/api/todos/{id} [delete]
func (h *TodoHandler) Delete(c *gin.Context) {
	if _, err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Message: MsgTodoDeleted})
}
