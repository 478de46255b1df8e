package log

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	logger     = zerolog.New(os.Stdout).With().Timestamp().Logger()
	loggerLock sync.RWMutex
)

// Setup configures the global logger. Development gets a console writer,
// anything else gets JSON lines on stdout.
func Setup(env, level string) {
	var output io.Writer = os.Stdout
	if env != "production" {
		output = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.Kitchen,
		}
	}
	SetOutput(output)
	SetLevel(level)
}

// SetOutput replaces the writer, keeping the current level.
func SetOutput(w io.Writer) {
	loggerLock.Lock()
	defer loggerLock.Unlock()
	logger = zerolog.New(w).Level(logger.GetLevel()).With().Timestamp().Logger()
}

// SetLevel sets the global log level at runtime
func SetLevel(levelStr string) {
	level := parseLogLevel(levelStr)
	loggerLock.Lock()
	logger = logger.Level(level)
	loggerLock.Unlock()
}

func parseLogLevel(levelStr string) zerolog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

func current() *zerolog.Logger {
	loggerLock.RLock()
	defer loggerLock.RUnlock()
	l := logger
	return &l
}

func Debug() *zerolog.Event {
	return current().Debug()
}

func Info() *zerolog.Event {
	return current().Info()
}

func Warn() *zerolog.Event {
	return current().Warn()
}

func Error() *zerolog.Event {
	return current().Error()
}

// Fatal logs and exits with status 1 once the event is sent.
func Fatal() *zerolog.Event {
	return current().Fatal()
}
