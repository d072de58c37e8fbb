// Package logging builds the slog loggers handed to the generator components.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
)

// DefaultLevel is used when no level is configured.
const DefaultLevel = "error"

// ParseLevel maps a level name (debug, info, warn, warning, error; any case)
// to its slog level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error", "":
		return slog.LevelError, nil
	}
	return slog.LevelError, fmt.Errorf("logging: unknown level %q", name)
}

// New returns a text logger writing to w (stderr when nil) at level. An
// unknown level falls back to error and is reported once through the logger.
func New(level string, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	lvl, err := ParseLevel(level)
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
	if err != nil {
		logger.Error("invalid logging level, using error", "level", level)
	}
	return logger
}

// WithSession tags every record of logger with a fresh session id so the
// turns of one interactive run can be told apart.
func WithSession(logger *slog.Logger) (*slog.Logger, string) {
	id := uuid.NewString()
	return logger.With("session", id), id
}
