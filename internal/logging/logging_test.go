package logging_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/goliatone/go-crudgen/internal/logging"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"Warning": slog.LevelWarn,
		"warn":    slog.LevelWarn,
		"ERROR":   slog.LevelError,
		"":        slog.LevelError,
	}
	for in, want := range cases {
		got, err := logging.ParseLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := logging.ParseLevel("loud"); err == nil {
		t.Fatalf("expected an error for an unknown level")
	}
}

func TestNew_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New("error", &buf)
	logger.Info("hidden")
	logger.Error("shown", "code", 7)

	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") || !strings.Contains(out, "code=7") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestNew_UnknownLevelIsReported(t *testing.T) {
	var buf bytes.Buffer
	logging.New("loud", &buf)
	if !strings.Contains(buf.String(), "invalid logging level") {
		t.Fatalf("expected a warning, got %q", buf.String())
	}
}

func TestWithSession(t *testing.T) {
	var buf bytes.Buffer
	logger, id := logging.WithSession(logging.New("info", &buf))
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("session id %q is not a uuid: %v", id, err)
	}
	logger.Info("turn")
	if !strings.Contains(buf.String(), "session="+id) {
		t.Fatalf("session id missing from %q", buf.String())
	}
}
