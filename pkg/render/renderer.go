// Package render executes the artifact templates against the view shapes
// built by package view and serves the pass-through resources copied into
// every generated tree. It never writes to the output directory.
package render

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/goliatone/go-crudgen/pkg/render/template"
	"github.com/goliatone/go-crudgen/pkg/render/template/gotemplate"
	"github.com/goliatone/go-crudgen/pkg/view"
)

const templateExt = ".tpl"

// Option configures a Renderer.
type Option func(*Renderer)

// WithTemplatesFS replaces the embedded templates.
func WithTemplatesFS(files fs.FS) Option {
	return func(r *Renderer) {
		if files != nil {
			r.templates = files
		}
	}
}

// WithAssetsFS replaces the embedded pass-through resources.
func WithAssetsFS(files fs.FS) Option {
	return func(r *Renderer) {
		if files != nil {
			r.assets = files
		}
	}
}

// WithTemplate declares (or redeclares) the scope of a template id so custom
// template sets can add artifacts.
func WithTemplate(id string, scope Scope) Option {
	return func(r *Renderer) {
		r.scopes[strings.TrimSpace(id)] = scope
	}
}

// WithEngine replaces the pongo2 engine built over the templates FS.
func WithEngine(engine template.TemplateRenderer) Option {
	return func(r *Renderer) {
		r.engine = engine
	}
}

// WithGlobals sets values every template can read by name, next to app and
// entity.
func WithGlobals(globals map[string]any) Option {
	return func(r *Renderer) {
		for key, value := range globals {
			r.globals[key] = value
		}
	}
}

// Renderer renders templates by id.
type Renderer struct {
	engine    template.TemplateRenderer
	templates fs.FS
	assets    fs.FS
	scopes    map[string]Scope
	globals   map[string]any
}

// New builds a Renderer over the embedded templates unless options say
// otherwise.
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		templates: TemplatesFS(),
		assets:    AssetsFS(),
		scopes:    make(map[string]Scope, len(defaultScopes)),
		globals:   map[string]any{},
	}
	for id, scope := range defaultScopes {
		r.scopes[id] = scope
	}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}

	if r.engine != nil {
		if err := r.engine.GlobalContext(r.globals); err != nil {
			return nil, fmt.Errorf("render: engine globals: %w", err)
		}
		return r, nil
	}

	engine, err := gotemplate.New(
		gotemplate.WithFS(r.templates),
		gotemplate.WithExtension(templateExt),
		gotemplate.WithTrimBlocks(),
		gotemplate.WithGlobalData(r.globals),
	)
	if err != nil {
		return nil, fmt.Errorf("render: create engine: %w", err)
	}
	r.engine = engine
	return r, nil
}

// Scope reports the declared scope of a template id.
func (r *Renderer) Scope(id string) (Scope, bool) {
	scope, ok := r.scopes[id]
	return scope, ok
}

// Render executes template id with data, which must be the shape the
// template declares: view.AppData for ScopeApp, view.EntityData for
// ScopeEntity (values or pointers).
func (r *Renderer) Render(id string, data any) (string, error) {
	scope, ok := r.scopes[id]
	if !ok {
		return "", &TemplateError{ID: id, Reason: ReasonUnknown}
	}

	ctx, err := bind(scope, data)
	if err != nil {
		return "", &TemplateError{ID: id, Reason: ReasonShape, Err: err}
	}

	if _, err := fs.Stat(r.templates, id+templateExt); err != nil {
		return "", &TemplateError{ID: id, Reason: ReasonMissing, Err: err}
	}

	out, err := r.engine.RenderTemplate(id, ctx)
	if err != nil {
		return "", &TemplateError{ID: id, Reason: ReasonExecution, Err: err}
	}
	return out, nil
}

// Passthrough returns the static resource id verbatim.
func (r *Renderer) Passthrough(id string) (string, error) {
	data, err := fs.ReadFile(r.assets, id)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", &TemplateError{ID: id, Reason: ReasonMissing, Err: err}
		}
		return "", fmt.Errorf("render: read asset %q: %w", id, err)
	}
	return string(data), nil
}

func bind(scope Scope, data any) (map[string]any, error) {
	switch scope {
	case ScopeApp:
		var app *view.AppView
		switch d := data.(type) {
		case view.AppData:
			app = d.App
		case *view.AppData:
			if d != nil {
				app = d.App
			}
		default:
			return nil, fmt.Errorf("want view.AppData, got %T", data)
		}
		if app == nil {
			return nil, errors.New("application view is nil")
		}
		return map[string]any{"app": app}, nil

	case ScopeEntity:
		var d view.EntityData
		switch v := data.(type) {
		case view.EntityData:
			d = v
		case *view.EntityData:
			if v != nil {
				d = *v
			}
		default:
			return nil, fmt.Errorf("want view.EntityData, got %T", data)
		}
		if d.Entity == nil || d.App == nil {
			return nil, errors.New("entity and application views are required")
		}
		return map[string]any{"app": d.App, "entity": d.Entity}, nil
	}
	return nil, fmt.Errorf("unknown scope %q", scope)
}
