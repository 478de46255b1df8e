package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"

	"github.com/kalpovskii/todo-api/internal/app/models"
)

var (
	trueValues  = map[any]bool{true: true, "true": true, float64(1): true, "1": true, "yes": true}
	falseValues = map[any]bool{false: true, "false": true, float64(0): true, "0": true, "no": true}
)

// castError is a field value that cannot be turned into the field's type.
type castError struct {
	path   string
	kind   string
	value  json.RawMessage
	reason error
}

func (e *castError) Error() string {
	msg := fmt.Sprintf("cast to %s failed for value %s at path %q", e.kind, e.value, e.path)
	if e.reason != nil {
		msg += ": " + e.reason.Error()
	}
	return msg
}

func (e *castError) Unwrap() error { return e.reason }

// readFields splits a JSON object body into its raw members. An absent body
// or a top-level array carries no fields.
func readFields(c *gin.Context) (map[string]json.RawMessage, error) {
	if c.Request.Body == nil {
		return nil, nil
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return nil, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}
	return fields, nil
}

func decodeInput(c *gin.Context) (models.TodoInput, error) {
	var in models.TodoInput
	fields, err := readFields(c)
	if err != nil {
		return in, err
	}

	title, err := stringField(fields, "title")
	if err != nil {
		return in, err
	}
	description, err := stringField(fields, "description")
	if err != nil {
		return in, err
	}

	if title != nil {
		in.Title = *title
	}
	if description != nil {
		in.Description = *description
	}
	return in, nil
}

func decodePatch(c *gin.Context) (models.TodoPatch, error) {
	var patch models.TodoPatch
	fields, err := readFields(c)
	if err != nil {
		return patch, err
	}

	if patch.Title, err = stringField(fields, "title"); err != nil {
		return models.TodoPatch{}, err
	}
	if patch.Description, err = stringField(fields, "description"); err != nil {
		return models.TodoPatch{}, err
	}
	if patch.Completed, err = boolField(fields, "completed"); err != nil {
		return models.TodoPatch{}, err
	}
	return patch, nil
}

// fieldValue returns nil for absent and null members.
func fieldValue(fields map[string]json.RawMessage, name string) (any, error) {
	raw, ok := fields[name]
	if !ok {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return v, nil
}

// stringField accepts strings, numbers and booleans.
func stringField(fields map[string]json.RawMessage, name string) (*string, error) {
	v, err := fieldValue(fields, name)
	if err != nil || v == nil {
		return nil, err
	}

	switch v.(type) {
	case string, float64, bool:
		s, err := cast.ToStringE(v)
		if err != nil {
			return nil, &castError{path: name, kind: "string", value: fields[name], reason: err}
		}
		return &s, nil
	default:
		return nil, &castError{path: name, kind: "string", value: fields[name]}
	}
}

// boolField accepts true/false, 1/0 and the strings "true", "false", "1",
// "0", "yes" and "no".
func boolField(fields map[string]json.RawMessage, name string) (*bool, error) {
	v, err := fieldValue(fields, name)
	if err != nil || v == nil {
		return nil, err
	}

	switch v.(type) {
	case string, float64, bool:
		if trueValues[v] {
			b := true
			return &b, nil
		}
		if falseValues[v] {
			b := false
			return &b, nil
		}
	}
	return nil, &castError{path: name, kind: "boolean", value: fields[name]}
}
