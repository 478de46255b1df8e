package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kalpovskii/todo-api/internal/app/models"
)

// Generation is the invalidation counter seen on a cache miss. A fill only
// lands if no invalidation happened since the miss.
type Generation int64

// TodoCache is a best-effort read-through cache. A miss is a nil value
// together with the generation to hand back to the matching Fill call.
type TodoCache interface {
	GetTodo(ctx context.Context, id string) (*models.Todo, Generation, error)
	FillTodo(ctx context.Context, todo *models.Todo, gen Generation) error

	GetTodoList(ctx context.Context) ([]models.Todo, Generation, error)
	FillTodoList(ctx context.Context, todos []models.Todo, gen Generation) error

	// InvalidateTodo drops the cached todo and the cached list.
	InvalidateTodo(ctx context.Context, id string) error
	InvalidateTodoList(ctx context.Context) error
}

const (
	DefaultTodoTTL     = 60 * time.Second
	DefaultTodoListTTL = 15 * time.Second

	// Counters outlive any value they guard.
	generationTTL = time.Hour
)

// cacheEntry names a cached value and its generation counter. Both share a
// hash tag so the fill script stays on one cluster slot.
type cacheEntry struct {
	value string
	gen   string
	ttl   time.Duration
}

func entry(tag string, ttl time.Duration) cacheEntry {
	return cacheEntry{
		value: "{" + tag + "}",
		gen:   "{" + tag + "}:gen",
		ttl:   ttl,
	}
}

// fillScript stores ARGV[2] under KEYS[1] only while KEYS[2] still holds the
// generation observed at miss time.
var fillScript = redis.NewScript(`
local current = redis.call('GET', KEYS[2]) or '0'
if current ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

type RedisTodoCache struct {
	rdb     redis.UniversalClient
	todoTTL time.Duration
	listTTL time.Duration
}

func NewRedisTodoCache(rdb redis.UniversalClient) *RedisTodoCache {
	return &RedisTodoCache{
		rdb:     rdb,
		todoTTL: DefaultTodoTTL,
		listTTL: DefaultTodoListTTL,
	}
}

func (r *RedisTodoCache) todoEntry(id string) cacheEntry {
	return entry("todo:"+id, r.todoTTL)
}

func (r *RedisTodoCache) listEntry() cacheEntry {
	return entry("todos:list", r.listTTL)
}

func (r *RedisTodoCache) GetTodo(ctx context.Context, id string) (*models.Todo, Generation, error) {
	var todo models.Todo
	hit, gen, err := r.get(ctx, r.todoEntry(id), &todo)
	if err != nil || !hit {
		return nil, gen, err
	}
	return &todo, gen, nil
}

func (r *RedisTodoCache) FillTodo(ctx context.Context, todo *models.Todo, gen Generation) error {
	return r.fill(ctx, r.todoEntry(todo.ID), todo, gen)
}

func (r *RedisTodoCache) GetTodoList(ctx context.Context) ([]models.Todo, Generation, error) {
	todos := []models.Todo{}
	hit, gen, err := r.get(ctx, r.listEntry(), &todos)
	if err != nil || !hit {
		return nil, gen, err
	}
	return todos, gen, nil
}

func (r *RedisTodoCache) FillTodoList(ctx context.Context, todos []models.Todo, gen Generation) error {
	return r.fill(ctx, r.listEntry(), todos, gen)
}

func (r *RedisTodoCache) InvalidateTodo(ctx context.Context, id string) error {
	return r.invalidate(ctx, r.todoEntry(id), r.listEntry())
}

func (r *RedisTodoCache) InvalidateTodoList(ctx context.Context) error {
	return r.invalidate(ctx, r.listEntry())
}

func (r *RedisTodoCache) get(ctx context.Context, e cacheEntry, dst any) (bool, Generation, error) {
	vals, err := r.rdb.MGet(ctx, e.value, e.gen).Result()
	if err != nil {
		return false, 0, fmt.Errorf("cache get %s: %w", e.value, err)
	}

	var gen Generation
	if s, ok := vals[1].(string); ok {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return false, 0, fmt.Errorf("cache generation %s: %w", e.gen, err)
		}
		gen = Generation(n)
	}

	s, ok := vals[0].(string)
	if !ok {
		return false, gen, nil
	}
	if err := json.Unmarshal([]byte(s), dst); err != nil {
		return false, gen, fmt.Errorf("cache decode %s: %w", e.value, err)
	}
	return true, gen, nil
}

func (r *RedisTodoCache) fill(ctx context.Context, e cacheEntry, v any, gen Generation) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	keys := []string{e.value, e.gen}
	if err := fillScript.Run(ctx, r.rdb, keys, int64(gen), data, e.ttl.Milliseconds()).Err(); err != nil {
		return fmt.Errorf("cache fill %s: %w", e.value, err)
	}
	return nil
}

// invalidate bumps each generation before deleting the value, so a fill
// racing with it either loses the generation check or is deleted.
func (r *RedisTodoCache) invalidate(ctx context.Context, entries ...cacheEntry) error {
	_, err := r.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, e := range entries {
			pipe.Incr(ctx, e.gen)
			pipe.Expire(ctx, e.gen, generationTTL)
			pipe.Del(ctx, e.value)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}

// NoopTodoCache always misses.
type NoopTodoCache struct{}

func (NoopTodoCache) GetTodo(context.Context, string) (*models.Todo, Generation, error) {
	return nil, 0, nil
}

func (NoopTodoCache) FillTodo(context.Context, *models.Todo, Generation) error { return nil }

func (NoopTodoCache) GetTodoList(context.Context) ([]models.Todo, Generation, error) {
	return nil, 0, nil
}

func (NoopTodoCache) FillTodoList(context.Context, []models.Todo, Generation) error { return nil }

func (NoopTodoCache) InvalidateTodo(context.Context, string) error { return nil }

func (NoopTodoCache) InvalidateTodoList(context.Context) error { return nil }
