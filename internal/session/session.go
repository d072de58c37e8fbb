// Package session runs the interactive loop: read a prompt, ask the provider
// for an application, regenerate the backend and print a summary.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/goliatone/go-crudgen/internal/console"
	"github.com/goliatone/go-crudgen/pkg/ir"
	"github.com/goliatone/go-crudgen/pkg/orchestrator"
	"github.com/goliatone/go-crudgen/pkg/provider"
)

// ExitCommand ends the session.
const ExitCommand = "/exit"

const (
	firstPrompt = "Describe your app"
	nextPrompt  = "Specify any modifications or enhancements"
)

// Generator regenerates an output tree. *orchestrator.Orchestrator
// satisfies it.
type Generator interface {
	Regenerate(ctx context.Context, app ir.Application) (orchestrator.Report, error)
	Snapshot() ([]byte, error)
	OutputDir() string
}

// Session holds one interactive run.
type Session struct {
	provider  provider.Provider
	generator Generator
	driver    console.PromptDriver
	printer   *console.Printer
	history   *console.History
	logger    *slog.Logger

	app *ir.Application
}

// Option configures a Session.
type Option func(*Session)

// WithDriver sets the prompt driver. Defaults to the terminal.
func WithDriver(driver console.PromptDriver) Option {
	return func(s *Session) {
		s.driver = driver
	}
}

// WithPrinter sets the output printer.
func WithPrinter(printer *console.Printer) Option {
	return func(s *Session) {
		s.printer = printer
	}
}

// WithHistory sets the prompt history used for suggestions.
func WithHistory(history *console.History) Option {
	return func(s *Session) {
		s.history = history
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// New returns a session asking p and writing through g.
func New(p provider.Provider, g Generator, options ...Option) (*Session, error) {
	if p == nil {
		return nil, errors.New("session: provider is required")
	}
	if g == nil {
		return nil, errors.New("session: generator is required")
	}
	s := &Session{provider: p, generator: g}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	if s.driver == nil {
		s.driver = console.NewSurveyDriver()
	}
	if s.printer == nil {
		s.printer = console.NewPrinter()
	}
	if s.history == nil {
		s.history, _ = console.LoadHistory(nil, "")
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	return s, nil
}

// App returns the last generated application, if any.
func (s *Session) App() (ir.Application, bool) {
	if s.app == nil {
		return ir.Application{}, false
	}
	return *s.app, true
}

// Resume seeds the provider with the snapshot left in the output directory
// by a previous run. It reports whether a snapshot was found and taken.
func (s *Session) Resume() (bool, error) {
	data, err := s.generator.Snapshot()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("session: %w", err)
	}
	app, err := ir.LoadSnapshot(data)
	if err != nil {
		return false, fmt.Errorf("session: load snapshot: %w", err)
	}
	seeded, err := provider.Seed(s.provider, data)
	if err != nil {
		return false, fmt.Errorf("session: seed %s: %w", s.provider.Name(), err)
	}
	if seeded {
		s.app = &app
	}
	return seeded, nil
}

// Run prompts until the user exits or aborts. A failing turn is reported
// and the loop goes on; only prompt errors end the session with an error.
func (s *Session) Run(ctx context.Context) error {
	s.printer.Header(fmt.Sprintf("crudgen with %s, output in %s", s.provider.Name(), s.generator.OutputDir()))

	resumed, err := s.Resume()
	if err != nil {
		s.printer.Warn("%v", err)
	}
	if resumed {
		s.printer.Info("Resuming from %s", orchestrator.SnapshotFile)
		s.summarize()
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		label := firstPrompt
		if s.app != nil {
			label = nextPrompt
		}
		input, err := s.driver.Input(ctx, console.InputConfig{
			Message: console.Accent(label),
			Help:    "Type " + ExitCommand + " to quit.",
			Suggest: s.history.Suggest,
		})
		if err != nil {
			if errors.Is(err, console.ErrAborted) || errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("session: prompt: %w", err)
		}

		prompt := strings.TrimSpace(input)
		if prompt == "" {
			continue
		}
		if prompt == ExitCommand {
			return nil
		}
		if err := s.history.Append(prompt); err != nil {
			s.logger.Warn("history not saved", "error", err)
		}
		if err := s.Turn(ctx, prompt); err != nil {
			s.logger.Error("turn failed", "error", err)
		}
	}
}

// Turn runs one prompt through the provider and the generator. Errors are
// printed and returned; the previous application stays current on failure.
func (s *Session) Turn(ctx context.Context, prompt string) error {
	spin := s.printer.Spin("Asking " + s.provider.Name())
	app, err := s.provider.Query(ctx, prompt)
	if err != nil {
		spin.Fail(err)
		return err
	}
	spin.Success("%s answered with %d entities", s.provider.Name(), len(app.Entities))

	spin = s.printer.Spin("Generating backend")
	report, err := s.generator.Regenerate(ctx, app)
	if err != nil {
		spin.Fail(err)
		return err
	}
	spin.Success("Wrote %d files to %s in %s", len(report.Written), report.OutputDir, report.Duration.Round(time.Millisecond))
	s.logger.Info("turn finished", "module", report.Module, "artifacts", len(report.Written))

	s.app = &app
	s.summarize()
	return nil
}

func (s *Session) summarize() {
	if s.app == nil {
		return
	}
	if err := s.printer.Markdown(console.Summary(*s.app)); err != nil {
		s.logger.Warn("summary not rendered", "error", err)
	}
}
