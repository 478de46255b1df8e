package services

import (
	"context"
	"time"

	"github.com/kalpovskii/todo-api/internal/app/models"
	"github.com/kalpovskii/todo-api/internal/app/repositories"
	"github.com/kalpovskii/todo-api/internal/log"
)

type EventPublisher interface {
	Publish(ctx context.Context, event models.TodoEvent) error
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, models.TodoEvent) error { return nil }

type TodoService struct {
	repo   repositories.TodoRepository
	cache  repositories.TodoCache
	events EventPublisher
}

// NewTodoService wires the repository with an optional cache and event
// publisher; nil disables either.
func NewTodoService(repo repositories.TodoRepository, cache repositories.TodoCache, events EventPublisher) *TodoService {
	if cache == nil {
		cache = repositories.NoopTodoCache{}
	}
	if events == nil {
		events = noopPublisher{}
	}
	return &TodoService{
		repo:   repo,
		cache:  cache,
		events: events,
	}
}

func (s *TodoService) List(ctx context.Context) ([]models.Todo, error) {
	cached, gen, cacheErr := s.cache.GetTodoList(ctx)
	if cacheErr == nil && cached != nil {
		return cached, nil
	}
	logMiss(cacheErr, "list", "")

	todos, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	if cacheErr == nil {
		_ = s.cache.FillTodoList(ctx, todos, gen)
	}
	return todos, nil
}

func (s *TodoService) Get(ctx context.Context, id string) (*models.Todo, error) {
	cached, gen, cacheErr := s.cache.GetTodo(ctx, id)
	if cacheErr == nil && cached != nil {
		return cached, nil
	}
	logMiss(cacheErr, "todo", id)

	todo, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	// Only the canonical spelling of an id is cached, so invalidation by
	// todo.ID reaches every cached copy.
	if cacheErr == nil && todo.ID == id {
		_ = s.cache.FillTodo(ctx, todo, gen)
	}
	return todo, nil
}

func (s *TodoService) Create(ctx context.Context, in models.TodoInput) (*models.Todo, error) {
	todo, err := s.repo.Create(ctx, in)
	if err != nil {
		return nil, err
	}

	logInvalidate(s.cache.InvalidateTodoList(ctx), "")
	s.publish(ctx, models.EventCreated, todo.ID, todo)

	return todo, nil
}

func (s *TodoService) Update(ctx context.Context, id string, patch models.TodoPatch) (*models.Todo, error) {
	todo, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	logInvalidate(s.cache.InvalidateTodo(ctx, todo.ID), todo.ID)
	s.publish(ctx, models.EventUpdated, todo.ID, todo)

	return todo, nil
}

func (s *TodoService) Delete(ctx context.Context, id string) (*models.Todo, error) {
	todo, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}

	logInvalidate(s.cache.InvalidateTodo(ctx, todo.ID), todo.ID)
	s.publish(ctx, models.EventDeleted, todo.ID, nil)

	return todo, nil
}

func logInvalidate(err error, id string) {
	if err != nil {
		log.Warn().Err(err).Str("id", id).Msg("failed to invalidate todo cache")
	}
}

func logMiss(err error, kind, id string) {
	if err != nil {
		log.Warn().Err(err).Str("cache", kind).Str("id", id).Msg("todo cache unavailable")
		return
	}
	log.Debug().Str("cache", kind).Str("id", id).Msg("todo cache miss")
}

func (s *TodoService) publish(ctx context.Context, action models.EventAction, id string, todo *models.Todo) {
	event := models.TodoEvent{
		Action: action,
		ID:     id,
		Todo:   todo,
		At:     time.Now().UTC(),
	}
	if err := s.events.Publish(ctx, event); err != nil {
		log.Warn().Err(err).Str("action", string(action)).Str("id", id).Msg("failed to publish todo event")
	}
}
