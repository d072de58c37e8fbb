package provider

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/goliatone/go-crudgen/pkg/ir"
)

// File answers every prompt with a description read from disk. It is the
// offline provider: prompts are ignored and the file is read again on each
// query, so edits between turns are picked up.
type File struct {
	fs   afero.Fs
	path string
}

// NewFile builds a file provider for cfg.File.
func NewFile(cfg Config) (*File, error) {
	if strings.TrimSpace(cfg.File) == "" {
		return nil, &Error{Provider: "file", Op: OpConfig, Err: errors.New("a description file is required")}
	}
	fs := cfg.FS
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &File{fs: fs, path: cfg.File}, nil
}

// Name reports the provider and the file it reads.
func (p *File) Name() string {
	return "File (" + filepath.Base(p.path) + ")"
}

// Query reads and validates the description file.
func (p *File) Query(ctx context.Context, _ string) (ir.Application, error) {
	if err := ctx.Err(); err != nil {
		return ir.Application{}, err
	}
	data, err := afero.ReadFile(p.fs, p.path)
	if err != nil {
		return ir.Application{}, &Error{Provider: "file", Op: OpRequest, Err: fmt.Errorf("read %s: %w", p.path, err)}
	}
	app, err := ir.ParseFile(p.path, data)
	if err != nil {
		return ir.Application{}, &Error{Provider: "file", Op: OpDecode, Raw: string(data), Err: err}
	}
	return app, nil
}
