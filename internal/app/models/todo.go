package models

import (
	"time"
)

type Todo struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TodoInput carries the fields accepted on create. Everything else takes
// store defaults.
type TodoInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// TodoPatch is a partial update. Nil fields are left untouched.
type TodoPatch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

func (p TodoPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Completed == nil
}

type EventAction string

const (
	EventCreated EventAction = "todo.created"
	EventUpdated EventAction = "todo.updated"
	EventDeleted EventAction = "todo.deleted"
)

type TodoEvent struct {
	Action EventAction `json:"action"`
	ID     string      `json:"id"`
	Todo   *Todo       `json:"todo,omitempty"`
	At     time.Time   `json:"at"`
}
