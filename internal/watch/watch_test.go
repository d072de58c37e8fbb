package watch_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-crudgen/internal/watch"
)

func TestWatcher_RerunsOnChange(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "app.json")
	require.NoError(t, os.WriteFile(file, []byte("{}"), 0o644))

	calls := make(chan string, 8)
	w, err := watch.New(file, func(context.Context) error {
		data, err := os.ReadFile(file)
		if err != nil {
			return err
		}
		calls <- string(data)
		return nil
	}, watch.WithDebounce(20*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Equal(t, "{}", receive(t, calls))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(file, []byte(`{"name":"a"}`), 0o644))
	require.Equal(t, `{"name":"a"}`, receive(t, calls))

	cancel()
	require.NoError(t, <-done)
	require.Empty(t, calls, "unrelated files do not trigger a run")
}

func TestWatcher_ReportsLaterErrors(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "app.json")
	require.NoError(t, os.WriteFile(file, []byte("{}"), 0o644))

	runs := 0
	reported := make(chan error, 1)
	w, err := watch.New(file, func(context.Context) error {
		runs++
		if runs > 1 {
			return errors.New("invalid document")
		}
		return nil
	}, watch.WithDebounce(20*time.Millisecond), watch.WithErrorHandler(func(err error) { reported <- err }))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watcher time to register the directory before writing.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(file, []byte("{"), 0o644))

	select {
	case err := <-reported:
		require.ErrorContains(t, err, "invalid document")
	case <-time.After(5 * time.Second):
		t.Fatal("no error reported")
	}
	cancel()
	require.NoError(t, <-done)
}

func TestWatcher_FirstErrorStops(t *testing.T) {
	file := filepath.Join(t.TempDir(), "app.json")
	w, err := watch.New(file, func(context.Context) error { return errors.New("missing") })
	require.NoError(t, err)
	require.ErrorContains(t, w.Run(context.Background()), "missing")

	_, err = watch.New(file, nil)
	require.Error(t, err)
}

func receive(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(5 * time.Second):
		t.Fatal("callback not called")
		return ""
	}
}
