// Package logging builds the zerolog loggers used by the CLIs, the client
// and the server.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const EnvLogLevel = "NOVAVOLT_LOG_LEVEL"

// New returns a logger tagged with app. EnvLogLevel, when set to a known
// level, overrides level.
func New(app, level string, console bool) zerolog.Logger {
	return NewWithWriter(os.Stderr, app, level, console)
}

func NewWithWriter(w io.Writer, app, level string, console bool) zerolog.Logger {
	if console {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	lvl, ok := ParseLevel(os.Getenv(EnvLogLevel))
	if !ok {
		if lvl, ok = ParseLevel(level); !ok {
			lvl = zerolog.InfoLevel
		}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Str("app", app).Logger()
}

// Init is New plus installing the result as the global zerolog logger.
func Init(app, level string, console bool) zerolog.Logger {
	logger := New(app, level, console)
	log.Logger = logger
	return logger
}

// Nop discards everything. Components fall back to it when no logger is given.
func Nop() zerolog.Logger { return zerolog.Nop() }

func ParseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return zerolog.InfoLevel, false
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "off", "none":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}
