package testsupport

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/goliatone/go-crudgen/pkg/ir"
)

// Fixture names shipped in testdata/.
const (
	FixtureTask          = "task.json"
	FixtureUserProject   = "user_project.json"
	FixtureManyToOne     = "user_project_many_to_one.json"
	FixtureGallery       = "gallery.json"
	FixtureFull          = "full.yaml"
	defaultFixtureFolder = "testdata"
)

// FixturePath resolves a fixture shipped with this package, independent of
// the working directory of the calling test.
func FixturePath(name string) string {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return filepath.Join(defaultFixtureFolder, name)
	}
	return filepath.Join(filepath.Dir(file), defaultFixtureFolder, name)
}

// LoadApplication reads a fixture and parses it into a normalized IR.
// Testing helpers fail the test on error to keep contract tests concise.
func LoadApplication(t *testing.T, name string) ir.Application {
	t.Helper()

	app, err := LoadApplicationFromPath(FixturePath(name))
	if err != nil {
		t.Fatalf("load application: %v", err)
	}
	return app
}

// LoadApplicationFromPath returns an Application without requiring
// testing.T, allowing callers to wire fixtures in setup functions.
func LoadApplicationFromPath(path string) (ir.Application, error) {
	if path == "" {
		return ir.Application{}, errors.New("testsupport: application path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ir.Application{}, fmt.Errorf("testsupport: read application: %w", err)
	}
	app, err := ir.ParseFile(path, data)
	if err != nil {
		return ir.Application{}, fmt.Errorf("testsupport: parse application: %w", err)
	}
	return app, nil
}

// MustReadFixture returns the raw bytes of a fixture.
func MustReadFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(FixturePath(name))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	return data
}

// MustParse parses an inline JSON document.
func MustParse(t *testing.T, doc string) ir.Application {
	t.Helper()
	app, err := ir.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("parse document: %v", err)
	}
	return app
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
