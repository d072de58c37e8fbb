// Package crudgen generates a runnable CRUD backend from an application
// description. The subpackages hold the pipeline; this package wires the
// common path for callers that only want a tree on disk.
package crudgen

import (
	"context"
	"fmt"

	"github.com/spf13/afero"

	"github.com/goliatone/go-crudgen/pkg/ir"
	"github.com/goliatone/go-crudgen/pkg/orchestrator"
)

// Application aliases the intermediate representation root.
type Application = ir.Application

// Report aliases the summary of a generation pass.
type Report = orchestrator.Report

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) (*orchestrator.Orchestrator, error) {
	return orchestrator.New(options...)
}

// Parse validates and normalizes a JSON application document.
func Parse(data []byte) (Application, error) {
	return ir.Parse(data)
}

// LoadFile reads a JSON or YAML description from fs, picking the decoder
// from the extension.
func LoadFile(fs afero.Fs, path string) (Application, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return Application{}, fmt.Errorf("crudgen: read %s: %w", path, err)
	}
	return ir.ParseFile(path, data)
}

// Generate regenerates the backend of app into outputDir.
func Generate(ctx context.Context, app Application, outputDir string, options ...orchestrator.Option) (Report, error) {
	options = append([]orchestrator.Option{orchestrator.WithOutputDir(outputDir)}, options...)
	orch, err := orchestrator.New(options...)
	if err != nil {
		return Report{}, err
	}
	return orch.Regenerate(ctx, app)
}
