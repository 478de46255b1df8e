package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/kalpovskii/todo-api/internal/app/models"
)

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func sameTodo(t *testing.T, got, want *models.Todo) {
	t.Helper()
	if got.ID != want.ID || got.Title != want.Title || got.Description != want.Description || got.Completed != want.Completed {
		t.Fatalf("unexpected todo: got %+v, want %+v", got, want)
	}
	if !got.CreatedAt.Equal(want.CreatedAt) || !got.UpdatedAt.Equal(want.UpdatedAt) {
		t.Fatalf("unexpected timestamps: got %v/%v, want %v/%v", got.CreatedAt, got.UpdatedAt, want.CreatedAt, want.UpdatedAt)
	}
}

// runRepositoryContract checks the behaviour every backend must share.
// newRepo must return an empty repository; unknownID must be well-formed for
// the backend but match nothing.
func runRepositoryContract(t *testing.T, newRepo func(t *testing.T) TodoRepository, unknownID string) {
	ctx := context.Background()

	t.Run("empty list", func(t *testing.T) {
		repo := newRepo(t)

		todos, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if todos == nil || len(todos) != 0 {
			t.Fatalf("expected empty non-nil slice, got %#v", todos)
		}
	})

	t.Run("create sets defaults", func(t *testing.T) {
		repo := newRepo(t)

		todo, err := repo.Create(ctx, models.TodoInput{Title: "A", Description: "B"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if todo.ID == "" {
			t.Fatal("expected generated id")
		}
		if todo.Title != "A" || todo.Description != "B" {
			t.Errorf("unexpected fields: %+v", todo)
		}
		if todo.Completed {
			t.Error("expected completed=false")
		}
		if todo.CreatedAt.IsZero() || !todo.CreatedAt.Equal(todo.UpdatedAt) {
			t.Errorf("expected createdAt == updatedAt, got %v and %v", todo.CreatedAt, todo.UpdatedAt)
		}
	})

	t.Run("get returns created record", func(t *testing.T) {
		repo := newRepo(t)

		created, err := repo.Create(ctx, models.TodoInput{Title: "Buy milk"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		got, err := repo.Get(ctx, created.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		sameTodo(t, got, created)
	})

	t.Run("list is newest first", func(t *testing.T) {
		repo := newRepo(t)

		r1, err := repo.Create(ctx, models.TodoInput{Title: "first"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		r2, err := repo.Create(ctx, models.TodoInput{Title: "second"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		todos, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(todos) != 2 {
			t.Fatalf("expected 2 todos, got %d", len(todos))
		}
		if todos[0].ID != r2.ID || todos[1].ID != r1.ID {
			t.Fatalf("expected [%s %s], got [%s %s]", r2.ID, r1.ID, todos[0].ID, todos[1].ID)
		}
	})

	t.Run("update changes only supplied fields", func(t *testing.T) {
		repo := newRepo(t)

		created, err := repo.Create(ctx, models.TodoInput{Title: "title", Description: "desc"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		updated, err := repo.Update(ctx, created.ID, models.TodoPatch{Completed: boolPtr(true)})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !updated.Completed {
			t.Error("expected completed=true")
		}
		if updated.Title != "title" || updated.Description != "desc" {
			t.Errorf("unspecified fields changed: %+v", updated)
		}
		if updated.ID != created.ID || !updated.CreatedAt.Equal(created.CreatedAt) {
			t.Errorf("identity changed: %+v", updated)
		}
		if !updated.UpdatedAt.After(created.UpdatedAt) {
			t.Errorf("expected updatedAt to increase: %v -> %v", created.UpdatedAt, updated.UpdatedAt)
		}

		again, err := repo.Update(ctx, created.ID, models.TodoPatch{Title: strPtr("renamed"), Description: strPtr("")})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if again.Title != "renamed" || again.Description != "" || !again.Completed {
			t.Errorf("unexpected todo after second update: %+v", again)
		}
		if !again.UpdatedAt.After(updated.UpdatedAt) {
			t.Errorf("expected updatedAt to increase: %v -> %v", updated.UpdatedAt, again.UpdatedAt)
		}

		got, err := repo.Get(ctx, created.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		sameTodo(t, got, again)
	})

	t.Run("empty patch refreshes updatedAt", func(t *testing.T) {
		repo := newRepo(t)

		created, err := repo.Create(ctx, models.TodoInput{Title: "t"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		updated, err := repo.Update(ctx, created.ID, models.TodoPatch{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if updated.Title != "t" || updated.Completed {
			t.Errorf("unexpected todo: %+v", updated)
		}
		if !updated.UpdatedAt.After(created.UpdatedAt) {
			t.Errorf("expected updatedAt to increase: %v -> %v", created.UpdatedAt, updated.UpdatedAt)
		}
	})

	t.Run("delete removes the record", func(t *testing.T) {
		repo := newRepo(t)

		created, err := repo.Create(ctx, models.TodoInput{Title: "gone"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		deleted, err := repo.Delete(ctx, created.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		sameTodo(t, deleted, created)

		if _, err := repo.Get(ctx, created.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("get after delete: expected ErrNotFound, got %v", err)
		}
		if _, err := repo.Update(ctx, created.ID, models.TodoPatch{Title: strPtr("x")}); !errors.Is(err, ErrNotFound) {
			t.Errorf("update after delete: expected ErrNotFound, got %v", err)
		}
		if _, err := repo.Delete(ctx, created.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("delete after delete: expected ErrNotFound, got %v", err)
		}

		todos, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(todos) != 0 {
			t.Errorf("expected empty list, got %d", len(todos))
		}
	})

	t.Run("unknown and malformed ids are not found", func(t *testing.T) {
		repo := newRepo(t)

		for _, id := range []string{unknownID, "not-a-real-id", "", "123"} {
			if _, err := repo.Get(ctx, id); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get(%q): expected ErrNotFound, got %v", id, err)
			}
			if _, err := repo.Update(ctx, id, models.TodoPatch{Completed: boolPtr(true)}); !errors.Is(err, ErrNotFound) {
				t.Errorf("Update(%q): expected ErrNotFound, got %v", id, err)
			}
			if _, err := repo.Delete(ctx, id); !errors.Is(err, ErrNotFound) {
				t.Errorf("Delete(%q): expected ErrNotFound, got %v", id, err)
			}
		}
	})
}
