package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/kalpovskii/todo-api/internal/app/models"
)

// runCacheContract expects a cache nobody else writes to during the run.
func runCacheContract(t *testing.T, cache TodoCache) {
	ctx := context.Background()

	newTodo := func(title string) *models.Todo {
		now := time.Now().UTC().Truncate(time.Millisecond)
		return &models.Todo{ID: uuid.NewString(), Title: title, CreatedAt: now, UpdatedAt: now}
	}

	if err := cache.InvalidateTodoList(ctx); err != nil {
		t.Fatal(err)
	}

	t.Run("miss", func(t *testing.T) {
		got, gen, err := cache.GetTodo(ctx, uuid.NewString())
		if err != nil || got != nil || gen != 0 {
			t.Fatalf("expected (nil, 0, nil), got (%v, %d, %v)", got, gen, err)
		}
	})

	t.Run("fill then hit", func(t *testing.T) {
		todo := newTodo("cached")

		_, gen, err := cache.GetTodo(ctx, todo.ID)
		if err != nil {
			t.Fatal(err)
		}
		if err := cache.FillTodo(ctx, todo, gen); err != nil {
			t.Fatal(err)
		}

		got, _, err := cache.GetTodo(ctx, todo.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got == nil || got.Title != "cached" || !got.CreatedAt.Equal(todo.CreatedAt) {
			t.Fatalf("unexpected cached todo: %+v", got)
		}
	})

	t.Run("fill after invalidation is dropped", func(t *testing.T) {
		todo := newTodo("stale")

		_, gen, err := cache.GetTodo(ctx, todo.ID)
		if err != nil {
			t.Fatal(err)
		}
		if err := cache.InvalidateTodo(ctx, todo.ID); err != nil {
			t.Fatal(err)
		}
		if err := cache.FillTodo(ctx, todo, gen); err != nil {
			t.Fatal(err)
		}

		got, newGen, err := cache.GetTodo(ctx, todo.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got != nil {
			t.Fatalf("expected stale fill to be dropped, got %+v", got)
		}
		if newGen == gen {
			t.Fatal("expected invalidation to move the generation")
		}

		if err := cache.FillTodo(ctx, todo, newGen); err != nil {
			t.Fatal(err)
		}
		if got, _, _ := cache.GetTodo(ctx, todo.ID); got == nil {
			t.Fatal("expected fill at the current generation to land")
		}
	})

	t.Run("invalidating a todo drops the list", func(t *testing.T) {
		todo := newTodo("listed")

		_, gen, err := cache.GetTodoList(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if err := cache.FillTodoList(ctx, []models.Todo{*todo}, gen); err != nil {
			t.Fatal(err)
		}
		if got, _, _ := cache.GetTodoList(ctx); len(got) != 1 {
			t.Fatalf("expected cached list, got %+v", got)
		}

		if err := cache.InvalidateTodo(ctx, todo.ID); err != nil {
			t.Fatal(err)
		}
		if got, _, _ := cache.GetTodoList(ctx); got != nil {
			t.Fatalf("expected list miss, got %+v", got)
		}
	})

	t.Run("empty list is a hit", func(t *testing.T) {
		_, gen, err := cache.GetTodoList(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if err := cache.FillTodoList(ctx, []models.Todo{}, gen); err != nil {
			t.Fatal(err)
		}
		got, _, err := cache.GetTodoList(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if got == nil || len(got) != 0 {
			t.Fatalf("expected empty non-nil list, got %#v", got)
		}
	})
}

func TestRedisTodoCache_Miniredis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cache := NewRedisTodoCache(rdb)
	runCacheContract(t, cache)

	t.Run("values expire", func(t *testing.T) {
		ctx := context.Background()
		todo := &models.Todo{ID: uuid.NewString(), Title: "short lived"}

		if err := cache.FillTodo(ctx, todo, 0); err != nil {
			t.Fatal(err)
		}
		mr.FastForward(DefaultTodoTTL + time.Second)

		if got, _, _ := cache.GetTodo(ctx, todo.ID); got != nil {
			t.Fatalf("expected expiry, got %+v", got)
		}
	})

	t.Run("unreachable redis is an error", func(t *testing.T) {
		broken := NewRedisTodoCache(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1}))
		if _, _, err := broken.GetTodo(context.Background(), "x"); err == nil {
			t.Fatal("expected error")
		}
	})
}
