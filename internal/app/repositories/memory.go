package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kalpovskii/todo-api/internal/app/models"
)

type memoryEntry struct {
	todo models.Todo
	seq  uint64
}

// MemoryTodoRepo keeps todos in process memory. It backs the memory://
// storage scheme and the tests.
type MemoryTodoRepo struct {
	mu    sync.RWMutex
	todos map[string]memoryEntry
	seq   uint64
	now   func() time.Time
}

func NewMemoryTodoRepo() *MemoryTodoRepo {
	return &MemoryTodoRepo{
		todos: make(map[string]memoryEntry),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (r *MemoryTodoRepo) EnsureSchema(context.Context) error { return nil }

func (r *MemoryTodoRepo) Close(context.Context) error { return nil }

func (r *MemoryTodoRepo) List(ctx context.Context) ([]models.Todo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	entries := make([]memoryEntry, 0, len(r.todos))
	for _, e := range r.todos {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.todo.CreatedAt.Equal(b.todo.CreatedAt) {
			return a.todo.CreatedAt.After(b.todo.CreatedAt)
		}
		return a.seq > b.seq
	})

	todos := make([]models.Todo, 0, len(entries))
	for _, e := range entries {
		todos = append(todos, e.todo)
	}
	return todos, nil
}

func (r *MemoryTodoRepo) Get(ctx context.Context, id string) (*models.Todo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.todos[id]
	if !ok {
		return nil, ErrNotFound
	}
	t := e.todo
	return &t, nil
}

func (r *MemoryTodoRepo) Create(ctx context.Context, in models.TodoInput) (*models.Todo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := r.now()
	t := models.Todo{
		ID:          uuid.New().String(),
		Title:       in.Title,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	r.todos[t.ID] = memoryEntry{todo: t, seq: r.seq}
	return &t, nil
}

func (r *MemoryTodoRepo) Update(ctx context.Context, id string, patch models.TodoPatch) (*models.Todo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.todos[id]
	if !ok {
		return nil, ErrNotFound
	}

	if patch.Title != nil {
		e.todo.Title = *patch.Title
	}
	if patch.Description != nil {
		e.todo.Description = *patch.Description
	}
	if patch.Completed != nil {
		e.todo.Completed = *patch.Completed
	}

	now := r.now()
	if !now.After(e.todo.UpdatedAt) {
		now = e.todo.UpdatedAt.Add(time.Nanosecond)
	}
	e.todo.UpdatedAt = now

	r.todos[id] = e
	t := e.todo
	return &t, nil
}

func (r *MemoryTodoRepo) Delete(ctx context.Context, id string) (*models.Todo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.todos[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(r.todos, id)
	t := e.todo
	return &t, nil
}
