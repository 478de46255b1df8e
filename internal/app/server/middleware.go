package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kalpovskii/todo-api/internal/app/handlers"
	"github.com/kalpovskii/todo-api/internal/log"
)

const RequestIDHeader = "X-Request-Id"

// maxBodyBytes matches the 100kb default of common JSON body parsers.
const maxBodyBytes = 100 << 10

// recovery turns a handler panic into the usual 500 envelope. gin's own
// stack dump is dropped in favour of one structured log line.
func recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		message := fmt.Sprint(recovered)
		log.Error().
			Str("rid", c.GetString(log.ContextKeyRequestID)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msgf("panic: %s", message)
		c.AbortWithStatusJSON(http.StatusInternalServerError, handlers.Response{Success: false, Message: message})
	})
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(RequestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(log.ContextKeyRequestID, rid)
		c.Header(RequestIDHeader, rid)
		c.Next()
	}
}

// jsonBody rejects request bodies that are not a JSON object or array
// before any handler sees them. The body is buffered and put back for the
// handler to decode.
func jsonBody() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body == nil || c.Request.Body == http.NoBody {
			c.Next()
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				rejectBody(c, http.StatusRequestEntityTooLarge, "request entity too large")
				return
			}
			rejectBody(c, http.StatusBadRequest, err.Error())
			return
		}

		trimmed := bytes.TrimSpace(body)
		if len(trimmed) > 0 {
			if trimmed[0] != '{' && trimmed[0] != '[' {
				rejectBody(c, http.StatusBadRequest, "request body must be a JSON object or array")
				return
			}
			if !json.Valid(trimmed) {
				rejectBody(c, http.StatusBadRequest, syntaxMessage(trimmed))
				return
			}
		}

		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		c.Next()
	}
}

func syntaxMessage(body []byte) string {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return "invalid JSON body: " + err.Error()
	}
	return "invalid JSON body"
}

func rejectBody(c *gin.Context, status int, message string) {
	log.Warn().
		Str("rid", c.GetString(log.ContextKeyRequestID)).
		Str("path", c.Request.URL.Path).
		Msg(message)
	c.AbortWithStatusJSON(status, handlers.Response{Success: false, Message: message})
}
