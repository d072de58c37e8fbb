package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/goliatone/go-crudgen/pkg/apidoc"
	"github.com/goliatone/go-crudgen/pkg/format"
	"github.com/goliatone/go-crudgen/pkg/ir"
	"github.com/goliatone/go-crudgen/pkg/render"
	"github.com/goliatone/go-crudgen/pkg/view"
)

const (
	dirPerm  os.FileMode = 0o755
	filePerm os.FileMode = 0o644
)

// Renderer produces artifact content by template or asset id.
type Renderer interface {
	Render(id string, data any) (string, error)
	Passthrough(id string) (string, error)
}

// Transformer mutates the application view after it is built and before the
// plan is computed.
type Transformer interface {
	Transform(ctx context.Context, app *view.AppView) error
}

// TransformerFunc adapts plain functions to the Transformer interface.
type TransformerFunc func(ctx context.Context, app *view.AppView) error

// Transform executes the wrapped function when non-nil.
func (fn TransformerFunc) Transform(ctx context.Context, app *view.AppView) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, app)
}

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithFS sets the filesystem the tree is written to.
func WithFS(fs afero.Fs) Option {
	return func(o *Orchestrator) {
		o.fs = fs
	}
}

// WithOutputDir sets the root of the generated tree.
func WithOutputDir(dir string) Option {
	return func(o *Orchestrator) {
		o.outputDir = dir
	}
}

// WithRenderer injects the template renderer.
func WithRenderer(r Renderer) Option {
	return func(o *Orchestrator) {
		o.renderer = r
	}
}

// WithFormatter injects the artifact formatter.
func WithFormatter(f format.Formatter) Option {
	return func(o *Orchestrator) {
		o.formatter = f
	}
}

// WithLogger sets the logger used for progress messages.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithVersion sets the version advertised by the generated API description.
func WithVersion(version string) Option {
	return func(o *Orchestrator) {
		o.version = version
	}
}

// WithTransformer registers a hook that can adjust the views before
// rendering.
func WithTransformer(t Transformer) Option {
	return func(o *Orchestrator) {
		o.transformer = t
	}
}

// Orchestrator runs generation passes against one output directory.
type Orchestrator struct {
	fs          afero.Fs
	outputDir   string
	renderer    Renderer
	formatter   format.Formatter
	logger      *slog.Logger
	version     string
	transformer Transformer
}

// New constructs an Orchestrator. Missing dependencies default to the OS
// filesystem, the embedded templates and the built-in formatters.
func New(options ...Option) (*Orchestrator, error) {
	o := &Orchestrator{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}

	if o.fs == nil {
		o.fs = afero.NewOsFs()
	}
	if o.outputDir == "" {
		o.outputDir = "."
	}
	if o.version == "" {
		o.version = apidoc.DefaultAPIVersion
	}
	if o.renderer == nil {
		r, err := render.New(render.WithGlobals(map[string]any{
			"api_version": o.version,
		}))
		if err != nil {
			return nil, fmt.Errorf("orchestrator: default renderer: %w", err)
		}
		o.renderer = r
	}
	if o.formatter == nil {
		o.formatter = format.Default{}
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	return o, nil
}

// OutputDir returns the root of the generated tree.
func (o *Orchestrator) OutputDir() string {
	return o.outputDir
}

// Report summarises a generation pass.
type Report struct {
	OutputDir string
	Module    string
	// Written lists the artifact paths, relative to OutputDir, in write order.
	Written []string
	// Skipped lists the artifacts left out by a closed gate.
	Skipped  []string
	Duration time.Duration
}

// Generate writes the tree of app. Every artifact is rendered and formatted
// before the output directory is touched, so a failing template leaves the
// tree as it was. A failing write aborts the pass; artifacts written before
// it are left in place.
func (o *Orchestrator) Generate(ctx context.Context, app ir.Application) (Report, error) {
	return o.generate(ctx, app, false)
}

// Clean removes every path a generation pass owns. Missing paths are ignored
// and anything else in the output directory is left alone.
func (o *Orchestrator) Clean(ctx context.Context) error {
	if ctx == nil {
		return errors.New("orchestrator: context is required")
	}
	for _, name := range Generated {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := o.fs.RemoveAll(o.path(name)); err != nil {
			return &ArtifactError{Path: name, Op: "remove", Err: err}
		}
	}
	o.logger.Debug("output cleaned", "dir", o.outputDir)
	return nil
}

// Regenerate cleans the output directory and generates app from scratch. The
// clean only runs once every artifact has rendered.
func (o *Orchestrator) Regenerate(ctx context.Context, app ir.Application) (Report, error) {
	return o.generate(ctx, app, true)
}

// rendered is an artifact whose content is ready to be written.
type rendered struct {
	artifact Artifact
	content  []byte
}

func (o *Orchestrator) generate(ctx context.Context, app ir.Application, clean bool) (Report, error) {
	if ctx == nil {
		return Report{}, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}
	started := time.Now()

	v, err := view.Build(app)
	if err != nil {
		return Report{}, fmt.Errorf("orchestrator: build views: %w", err)
	}
	if o.transformer != nil {
		if err := o.transformer.Transform(ctx, v); err != nil {
			return Report{}, fmt.Errorf("orchestrator: transform views: %w", err)
		}
	}

	plan := Plan(v)
	report := Report{
		OutputDir: o.outputDir,
		Module:    v.Module,
		Skipped:   Skipped(v),
	}

	outputs := make([]rendered, 0, len(plan))
	for _, artifact := range plan {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		content, err := o.produce(artifact, app, v)
		if err != nil {
			return report, err
		}
		outputs = append(outputs, rendered{artifact: artifact, content: content})
	}

	if clean {
		if err := o.Clean(ctx); err != nil {
			return report, err
		}
	}

	if err := o.fs.MkdirAll(o.outputDir, dirPerm); err != nil {
		return report, &ArtifactError{Path: o.outputDir, Op: "create", Err: err}
	}
	for _, dir := range Directories(plan) {
		if err := o.fs.MkdirAll(o.path(dir), dirPerm); err != nil {
			return report, &ArtifactError{Path: dir, Op: "create", Err: err}
		}
	}

	for _, out := range outputs {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := afero.WriteFile(o.fs, o.path(out.artifact.Dest), out.content, filePerm); err != nil {
			return report, &ArtifactError{Path: out.artifact.Dest, Op: "write", Err: err}
		}
		o.logger.Debug("artifact written", "path", out.artifact.Dest, "kind", out.artifact.Kind, "bytes", len(out.content))
		report.Written = append(report.Written, out.artifact.Dest)
	}

	report.Duration = time.Since(started)
	o.logger.Info("generation finished",
		"dir", o.outputDir,
		"module", report.Module,
		"artifacts", len(report.Written),
		"duration", report.Duration,
	)
	return report, nil
}

// Snapshot reads the snapshot of the last generation pass. The error wraps
// os.ErrNotExist when the directory was never generated into.
func (o *Orchestrator) Snapshot() ([]byte, error) {
	data, err := afero.ReadFile(o.fs, o.path(SnapshotFile))
	if err != nil {
		return nil, &ArtifactError{Path: SnapshotFile, Op: "read", Err: err}
	}
	return data, nil
}

func (o *Orchestrator) produce(artifact Artifact, app ir.Application, v *view.AppView) ([]byte, error) {
	var (
		content []byte
		err     error
	)
	switch artifact.Kind {
	case KindAsset:
		var text string
		text, err = o.renderer.Passthrough(artifact.Template)
		content = []byte(text)
	case KindAPI:
		content, err = apidoc.Marshal(v, o.version)
	case KindSnapshot:
		content, err = ir.MarshalSnapshot(app)
	default:
		var data any = view.AppData{App: v}
		if artifact.Scope == render.ScopeEntity {
			data = view.EntityData{Entity: artifact.Entity, App: v}
		}
		var text string
		text, err = o.renderer.Render(artifact.Template, data)
		content = []byte(text)
	}
	if err != nil {
		return nil, &ArtifactError{Path: artifact.Dest, Op: "render", Err: err}
	}

	if fn := o.formatter.For(artifact.Dest); fn != nil {
		formatted, err := fn(content)
		if err != nil {
			return nil, &ArtifactError{Path: artifact.Dest, Op: "format", Err: err}
		}
		content = formatted
	}
	return content, nil
}

func (o *Orchestrator) path(rel string) string {
	return filepath.Join(o.outputDir, filepath.FromSlash(rel))
}
