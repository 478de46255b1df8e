package repositories

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kalpovskii/todo-api/internal/app/models"
)

// ErrNotFound is returned for ids that match no record, including ids the
// backend cannot parse.
var ErrNotFound = errors.New("todo not found")

type TodoRepository interface {
	List(ctx context.Context) ([]models.Todo, error)
	Get(ctx context.Context, id string) (*models.Todo, error)
	Create(ctx context.Context, in models.TodoInput) (*models.Todo, error)
	Update(ctx context.Context, id string, patch models.TodoPatch) (*models.Todo, error)
	Delete(ctx context.Context, id string) (*models.Todo, error)
}

// Store is a TodoRepository that owns a backend connection.
type Store interface {
	TodoRepository
	EnsureSchema(ctx context.Context) error
	Close(ctx context.Context) error
}

type Options struct {
	// Database overrides the database named in a MongoDB URI.
	Database string
	Timeout  time.Duration
}

const defaultDatabase = "todo-api"

// Open connects to the backend named by the URI scheme and verifies it is
// reachable.
func Open(ctx context.Context, uri string, opts Options) (Store, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("parse storage uri: %w", err)
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	switch strings.ToLower(u.Scheme) {
	case "mongodb", "mongodb+srv":
		database := opts.Database
		if database == "" {
			database = strings.TrimPrefix(u.Path, "/")
		}
		if database == "" {
			database = defaultDatabase
		}
		repo, err := NewMongoTodoRepo(ctx, uri, database)
		if err != nil {
			return nil, err
		}
		return repo, nil
	case "postgres", "postgresql":
		repo, err := NewPostgresTodoRepo(ctx, uri)
		if err != nil {
			return nil, err
		}
		return repo, nil
	case "memory":
		return NewMemoryTodoRepo(), nil
	default:
		return nil, fmt.Errorf("unsupported storage scheme %q", u.Scheme)
	}
}
