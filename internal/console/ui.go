// Package console holds the terminal presentation of the CLI: styled status
// lines, spinners, tables, markdown summaries and the interactive prompt.
package console

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/pterm/pterm"
)

var (
	primaryColor = lipgloss.Color("#7D56F4")
	successColor = lipgloss.Color("#04B575")
	errorColor   = lipgloss.Color("#FF4672")
	warnColor    = lipgloss.Color("#F2C94C")
	mutedColor   = lipgloss.Color("#6C7086")

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			PaddingBottom(1)
	successStyle = lipgloss.NewStyle().Foreground(successColor).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(errorColor).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(warnColor)
	infoStyle    = lipgloss.NewStyle().Foreground(mutedColor)
)

// Printer writes user facing output. Diagnostics go through slog, never here.
type Printer struct {
	out         io.Writer
	err         io.Writer
	interactive bool
	wordWrap    int
}

// PrinterOption configures a Printer.
type PrinterOption func(*Printer)

// WithWriters replaces stdout and stderr.
func WithWriters(out, err io.Writer) PrinterOption {
	return func(p *Printer) {
		if out != nil {
			p.out = out
		}
		if err != nil {
			p.err = err
		}
	}
}

// WithInteractive toggles spinners and markdown styling. Non interactive
// printers emit plain text, which is what tests and pipes want.
func WithInteractive(interactive bool) PrinterOption {
	return func(p *Printer) {
		p.interactive = interactive
	}
}

// NewPrinter returns a printer on stdout and stderr.
func NewPrinter(options ...PrinterOption) *Printer {
	p := &Printer{out: os.Stdout, err: os.Stderr, interactive: true, wordWrap: 80}
	for _, opt := range options {
		if opt != nil {
			opt(p)
		}
	}
	if !p.interactive {
		color.NoColor = true
		pterm.DisableColor()
	}
	return p
}

// Header prints a section title.
func (p *Printer) Header(title string) {
	p.line(p.out, headerStyle, title)
}

// Success prints a completed step.
func (p *Printer) Success(format string, args ...any) {
	p.line(p.out, successStyle, "✓ "+fmt.Sprintf(format, args...))
}

// Info prints a neutral status line.
func (p *Printer) Info(format string, args ...any) {
	p.line(p.out, infoStyle, fmt.Sprintf(format, args...))
}

// Warn prints a recoverable problem.
func (p *Printer) Warn(format string, args ...any) {
	p.line(p.err, warnStyle, "! "+fmt.Sprintf(format, args...))
}

// Error prints a failure.
func (p *Printer) Error(err error) {
	if err == nil {
		return
	}
	p.line(p.err, errorStyle, "✗ "+err.Error())
}

func (p *Printer) line(w io.Writer, style lipgloss.Style, text string) {
	if p.interactive {
		text = style.Render(text)
	}
	fmt.Fprintln(w, text)
}

// Table prints rows under a header row.
func (p *Printer) Table(header []string, rows [][]string) error {
	data := pterm.TableData{header}
	data = append(data, rows...)
	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return fmt.Errorf("console: render table: %w", err)
	}
	fmt.Fprintln(p.out, out)
	return nil
}

// Markdown renders md for the terminal. Non interactive printers write the
// source as is.
func (p *Printer) Markdown(md string) error {
	if !p.interactive {
		_, err := fmt.Fprint(p.out, md)
		return err
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(p.wordWrap),
	)
	if err != nil {
		return fmt.Errorf("console: markdown renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("console: render markdown: %w", err)
	}
	_, err = fmt.Fprint(p.out, out)
	return err
}

// Spinner tracks a long running step.
type Spinner struct {
	printer *Printer
	spinner *pterm.SpinnerPrinter
}

// Spin starts a spinner with text. Non interactive printers only print the
// outcome once Success or Fail is called.
func (p *Printer) Spin(text string) *Spinner {
	s := &Spinner{printer: p}
	if !p.interactive {
		return s
	}
	spinner, err := pterm.DefaultSpinner.WithWriter(p.out).WithRemoveWhenDone(true).Start(text)
	if err == nil {
		s.spinner = spinner
	}
	return s
}

// Success stops the spinner and reports the step as done.
func (s *Spinner) Success(format string, args ...any) {
	s.stop()
	s.printer.Success(format, args...)
}

// Fail stops the spinner and reports err.
func (s *Spinner) Fail(err error) {
	s.stop()
	s.printer.Error(err)
}

func (s *Spinner) stop() {
	if s.spinner != nil {
		_ = s.spinner.Stop()
		s.spinner = nil
	}
}

// Accent colors text for prompt labels.
func Accent(text string) string {
	return color.New(color.FgCyan, color.Bold).Sprint(text)
}
