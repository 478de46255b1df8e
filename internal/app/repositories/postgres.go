package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/kalpovskii/todo-api/internal/app/models"
)

const todoColumns = "id, title, description, completed, created_at, updated_at"

type PostgresTodoRepo struct {
	db *sql.DB
}

func NewPostgresTodoRepo(ctx context.Context, dsn string) (*PostgresTodoRepo, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &PostgresTodoRepo{db: db}, nil
}

func (r *PostgresTodoRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS todos (
			id UUID PRIMARY KEY,
			seq BIGSERIAL,
			title TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			completed BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS todos_created_at_idx ON todos (created_at DESC, seq DESC);
	`)
	if err != nil {
		return fmt.Errorf("create todos table: %w", err)
	}
	return nil
}

func (r *PostgresTodoRepo) Close(context.Context) error {
	return r.db.Close()
}

func (r *PostgresTodoRepo) List(ctx context.Context) ([]models.Todo, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+todoColumns+" FROM todos ORDER BY created_at DESC, seq DESC")
	if err != nil {
		return nil, fmt.Errorf("select todos: %w", err)
	}
	defer rows.Close()

	todos := []models.Todo{}
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan todo: %w", err)
		}
		todos = append(todos, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("select todos: %w", err)
	}
	return todos, nil
}

func (r *PostgresTodoRepo) Get(ctx context.Context, id string) (*models.Todo, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, "SELECT "+todoColumns+" FROM todos WHERE id = $1", uid)
	return rowErr("select todo", row)
}

func (r *PostgresTodoRepo) Create(ctx context.Context, in models.TodoInput) (*models.Todo, error) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	todo := &models.Todo{
		ID:          uuid.New().String(),
		Title:       in.Title,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO todos (id, title, description, completed, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)",
		todo.ID, todo.Title, todo.Description, todo.Completed, todo.CreatedAt, todo.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert todo: %w", err)
	}
	return todo, nil
}

func (r *PostgresTodoRepo) Update(ctx context.Context, id string, patch models.TodoPatch) (*models.Todo, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}

	now := time.Now().UTC().Truncate(time.Microsecond)
	row := r.db.QueryRowContext(ctx, `
		UPDATE todos SET
			title = COALESCE($2, title),
			description = COALESCE($3, description),
			completed = COALESCE($4, completed),
			updated_at = GREATEST($5, updated_at + INTERVAL '1 microsecond')
		WHERE id = $1
		RETURNING `+todoColumns,
		uid, patch.Title, patch.Description, patch.Completed, now)
	return rowErr("update todo", row)
}

func (r *PostgresTodoRepo) Delete(ctx context.Context, id string) (*models.Todo, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, "DELETE FROM todos WHERE id = $1 RETURNING "+todoColumns, uid)
	return rowErr("delete todo", row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTodo(s rowScanner) (*models.Todo, error) {
	var t models.Todo
	if err := s.Scan(&t.ID, &t.Title, &t.Description, &t.Completed, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return &t, nil
}

func rowErr(op string, row *sql.Row) (*models.Todo, error) {
	t, err := scanTodo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return t, nil
}
