package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/kalpovskii/todo-api/internal/app/models"
)

func TestMemoryTodoRepo_Contract(t *testing.T) {
	runRepositoryContract(t, func(t *testing.T) TodoRepository {
		return NewMemoryTodoRepo()
	}, uuid.NewString())
}

func TestMemoryTodoRepo_FrozenClock(t *testing.T) {
	ctx := context.Background()
	frozen := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	repo := NewMemoryTodoRepo()
	repo.now = func() time.Time { return frozen }

	t.Run("same createdAt keeps insertion order", func(t *testing.T) {
		r1, _ := repo.Create(ctx, models.TodoInput{Title: "one"})
		r2, _ := repo.Create(ctx, models.TodoInput{Title: "two"})
		r3, _ := repo.Create(ctx, models.TodoInput{Title: "three"})

		todos, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []string{r3.ID, r2.ID, r1.ID}
		for i, id := range want {
			if todos[i].ID != id {
				t.Fatalf("position %d: expected %s, got %s", i, id, todos[i].ID)
			}
		}
	})

	t.Run("updatedAt still increases", func(t *testing.T) {
		created, _ := repo.Create(ctx, models.TodoInput{Title: "t"})

		first, err := repo.Update(ctx, created.ID, models.TodoPatch{Completed: boolPtr(true)})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		second, err := repo.Update(ctx, created.ID, models.TodoPatch{Completed: boolPtr(false)})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !first.UpdatedAt.After(created.UpdatedAt) || !second.UpdatedAt.After(first.UpdatedAt) {
			t.Fatalf("expected strictly increasing updatedAt: %v, %v, %v", created.UpdatedAt, first.UpdatedAt, second.UpdatedAt)
		}
		if !second.CreatedAt.Equal(frozen) {
			t.Errorf("createdAt changed: %v", second.CreatedAt)
		}
	})
}

func TestMemoryTodoRepo_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryTodoRepo()

	created, _ := repo.Create(ctx, models.TodoInput{Title: "original"})
	created.Title = "mutated by caller"

	got, err := repo.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Title != "original" {
		t.Fatalf("store state leaked to caller: %+v", got)
	}
}

func TestMemoryTodoRepo_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	repo := NewMemoryTodoRepo()
	if _, err := repo.List(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if _, err := repo.Create(ctx, models.TodoInput{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("memory scheme", func(t *testing.T) {
		store, err := Open(ctx, "memory://", Options{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := store.(*MemoryTodoRepo); !ok {
			t.Fatalf("expected *MemoryTodoRepo, got %T", store)
		}
		if err := store.EnsureSchema(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := store.Close(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("unsupported scheme", func(t *testing.T) {
		if _, err := Open(ctx, "redis://localhost:6379", Options{}); err == nil {
			t.Fatal("expected error for unsupported scheme")
		}
	})

	t.Run("unparsable uri", func(t *testing.T) {
		if _, err := Open(ctx, "://nope", Options{}); err == nil {
			t.Fatal("expected error for unparsable uri")
		}
	})
}
