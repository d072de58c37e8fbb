// Package watch reruns a callback whenever an application document changes
// on disk.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for writes to settle.
const DefaultDebounce = 300 * time.Millisecond

// Callback is run once at start and again after every settled change.
type Callback func(ctx context.Context) error

// Watcher watches a single file. Callbacks never overlap.
type Watcher struct {
	file     string
	callback Callback
	debounce time.Duration
	logger   *slog.Logger
	onError  func(error)
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithErrorHandler receives callback errors after the first run. Without it
// they are only logged.
func WithErrorHandler(fn func(error)) Option {
	return func(w *Watcher) {
		w.onError = fn
	}
}

// New returns a watcher for file.
func New(file string, callback Callback, options ...Option) (*Watcher, error) {
	if callback == nil {
		return nil, fmt.Errorf("watch: callback is required")
	}
	abs, err := filepath.Abs(file)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve %s: %w", file, err)
	}
	w := &Watcher{
		file:     abs,
		callback: callback,
		debounce: DefaultDebounce,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range options {
		if opt != nil {
			opt(w)
		}
	}
	return w, nil
}

// Run calls the callback, then keeps calling it on change until ctx is
// done. An error from the first call is returned; later errors go to the
// error handler and the watch goes on.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: create watcher: %w", err)
	}
	defer fw.Close()

	// Editors often replace the file instead of writing it, so the parent
	// directory is watched and events are filtered by name.
	if err := fw.Add(filepath.Dir(w.file)); err != nil {
		return fmt.Errorf("watch: watch %s: %w", filepath.Dir(w.file), err)
	}

	if err := w.callback(ctx); err != nil {
		return err
	}
	w.logger.Info("watching", "file", w.file)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()
	var settled <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("change", "file", event.Name, "op", event.Op.String())
			timer.Reset(w.debounce)
			settled = timer.C

		case <-settled:
			settled = nil
			if err := w.callback(ctx); err != nil {
				w.report(err)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	name, err := filepath.Abs(event.Name)
	return err == nil && name == w.file
}

func (w *Watcher) report(err error) {
	w.logger.Error("regenerate failed", "file", w.file, "error", err)
	if w.onError != nil {
		w.onError(err)
	}
}
