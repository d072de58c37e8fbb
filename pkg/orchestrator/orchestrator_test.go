package orchestrator_test

import (
	"context"
	"errors"
	"go/parser"
	"go/token"
	"os"
	"path"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-crudgen/pkg/format"
	"github.com/goliatone/go-crudgen/pkg/ir"
	"github.com/goliatone/go-crudgen/pkg/orchestrator"
	"github.com/goliatone/go-crudgen/pkg/render"
	"github.com/goliatone/go-crudgen/pkg/testsupport"
	"github.com/goliatone/go-crudgen/pkg/view"
)

const outDir = "/out"

func newOrchestrator(t *testing.T, fs afero.Fs, options ...orchestrator.Option) *orchestrator.Orchestrator {
	t.Helper()
	options = append([]orchestrator.Option{
		orchestrator.WithFS(fs),
		orchestrator.WithOutputDir(outDir),
	}, options...)
	orch, err := orchestrator.New(options...)
	require.NoError(t, err)
	return orch
}

func TestGenerate_SingleEntityTree(t *testing.T) {
	fs := afero.NewMemMapFs()
	orch := newOrchestrator(t, fs)
	app := testsupport.LoadApplication(t, testsupport.FixtureTask)

	report, err := orch.Generate(testsupport.Context(), app)
	require.NoError(t, err)

	want := []string{
		"go.mod",
		"README.md",
		"app/settings/settings.go",
		"app/models/models.go",
		"app/schemas/schemas.go",
		"app/crud/crud.go",
		"app/db/db.go",
		"app/deps/deps.go",
		"app/endpoints/endpoints.go",
		"app/endpoints/task.go",
		"cmd/server/main.go",
		"openapi.json",
		"templates/index.html",
		"static/css/style.css",
		".crudgen.json.lock",
	}
	if diff := cmp.Diff(want, report.Written); diff != "" {
		t.Fatalf("written artifacts mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"app/enums/enums.go", "app/storage/storage.go"}, report.Skipped); diff != "" {
		t.Fatalf("skipped artifacts mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, "task-tracker", report.Module)

	for _, rel := range report.Written {
		ok, err := afero.Exists(fs, path.Join(outDir, rel))
		require.NoError(t, err)
		require.Truef(t, ok, "%s not written", rel)
	}
	for _, rel := range report.Skipped {
		ok, _ := afero.Exists(fs, path.Join(outDir, rel))
		require.Falsef(t, ok, "%s should not exist", rel)
	}
	ok, _ := afero.DirExists(fs, path.Join(outDir, "app/enums"))
	require.False(t, ok, "gated directories are not created")
}

func TestGenerate_GoArtifactsParse(t *testing.T) {
	fixtures := []string{
		testsupport.FixtureTask,
		testsupport.FixtureUserProject,
		testsupport.FixtureGallery,
		testsupport.FixtureFull,
	}
	for _, fixture := range fixtures {
		t.Run(fixture, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			report, err := newOrchestrator(t, fs).Generate(testsupport.Context(), testsupport.LoadApplication(t, fixture))
			require.NoError(t, err)

			fset := token.NewFileSet()
			for _, rel := range report.Written {
				if !strings.HasSuffix(rel, ".go") {
					continue
				}
				src, err := afero.ReadFile(fs, path.Join(outDir, rel))
				require.NoError(t, err)
				if _, err := parser.ParseFile(fset, rel, src, parser.AllErrors); err != nil {
					t.Fatalf("%s does not parse: %v\n%s", rel, err, src)
				}
			}
		})
	}
}

func TestGenerate_FullTreeIncludesGatedArtifacts(t *testing.T) {
	fs := afero.NewMemMapFs()
	report, err := newOrchestrator(t, fs).Generate(testsupport.Context(), testsupport.LoadApplication(t, testsupport.FixtureFull))
	require.NoError(t, err)

	require.Contains(t, report.Written, "app/enums/enums.go")
	require.Contains(t, report.Written, "app/storage/storage.go")
	for _, entity := range []string{"user", "project", "task", "tag"} {
		require.Contains(t, report.Written, "app/endpoints/"+entity+".go")
	}
	require.Empty(t, report.Skipped)
	require.Equal(t, ".crudgen.json.lock", report.Written[len(report.Written)-1])
}

func TestGenerate_SnapshotRoundTrips(t *testing.T) {
	fs := afero.NewMemMapFs()
	app := testsupport.LoadApplication(t, testsupport.FixtureFull)
	orch := newOrchestrator(t, fs)

	_, err := orch.Snapshot()
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = orch.Generate(testsupport.Context(), app)
	require.NoError(t, err)

	data, err := orch.Snapshot()
	require.NoError(t, err)
	loaded, err := ir.LoadSnapshot(data)
	require.NoError(t, err)
	if diff := cmp.Diff(app, loaded); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerate_StopsAtFirstFailure(t *testing.T) {
	fs := afero.NewMemMapFs()
	base, err := render.New()
	require.NoError(t, err)

	boom := errors.New("boom")
	failing := failingRenderer{Renderer: base, id: render.TemplateCRUD, err: boom}
	orch := newOrchestrator(t, fs, orchestrator.WithRenderer(failing))

	report, err := orch.Generate(testsupport.Context(), testsupport.LoadApplication(t, testsupport.FixtureTask))
	require.Error(t, err)
	require.ErrorIs(t, err, boom)

	artifactErr, ok := orchestrator.AsArtifactError(err)
	require.True(t, ok)
	require.Equal(t, "app/crud/crud.go", artifactErr.Path)

	templateErr, ok := render.AsTemplateError(err)
	require.True(t, ok)
	require.Equal(t, render.TemplateCRUD, templateErr.ID)

	require.Empty(t, report.Written)
	ok, _ = afero.DirExists(fs, outDir)
	require.False(t, ok, "nothing is written when an artifact fails to render")
}

func TestRegenerate_FailureKeepsPriorTree(t *testing.T) {
	fs := afero.NewMemMapFs()
	_, err := newOrchestrator(t, fs).Generate(testsupport.Context(), testsupport.LoadApplication(t, testsupport.FixtureFull))
	require.NoError(t, err)
	before, err := afero.ReadFile(fs, path.Join(outDir, orchestrator.SnapshotFile))
	require.NoError(t, err)

	base, err := render.New()
	require.NoError(t, err)
	failing := failingRenderer{Renderer: base, id: render.TemplateServer, err: errors.New("boom")}
	_, err = newOrchestrator(t, fs, orchestrator.WithRenderer(failing)).
		Regenerate(testsupport.Context(), testsupport.LoadApplication(t, testsupport.FixtureTask))
	require.Error(t, err)

	for _, rel := range []string{"app/endpoints/user.go", "app/enums/enums.go", "cmd/server/main.go"} {
		ok, _ := afero.Exists(fs, path.Join(outDir, rel))
		require.Truef(t, ok, "%s from the previous pass should stay", rel)
	}
	after, err := afero.ReadFile(fs, path.Join(outDir, orchestrator.SnapshotFile))
	require.NoError(t, err)
	require.Equal(t, string(before), string(after))
}

func TestGenerate_EmptyApplication(t *testing.T) {
	fs := afero.NewMemMapFs()
	app := testsupport.MustParse(t, `{"name": "empty", "entities": []}`)

	report, err := newOrchestrator(t, fs).Generate(testsupport.Context(), app)
	require.NoError(t, err)
	require.Equal(t, "empty", report.Module)

	fset := token.NewFileSet()
	for _, rel := range []string{"go.mod", "cmd/server/main.go", "app/endpoints/endpoints.go", "app/models/models.go", "openapi.json"} {
		src, err := afero.ReadFile(fs, path.Join(outDir, rel))
		require.NoErrorf(t, err, "%s not written", rel)
		if !strings.HasSuffix(rel, ".go") {
			continue
		}
		if _, err := parser.ParseFile(fset, rel, src, parser.AllErrors); err != nil {
			t.Fatalf("%s does not parse: %v\n%s", rel, err, src)
		}
	}
}

func TestGenerate_FormattedArtifactsAreStable(t *testing.T) {
	apps := map[string]ir.Application{
		"empty": testsupport.MustParse(t, `{"name": "empty", "entities": []}`),
	}
	for _, fixture := range []string{
		testsupport.FixtureTask,
		testsupport.FixtureUserProject,
		testsupport.FixtureGallery,
		testsupport.FixtureFull,
	} {
		apps[fixture] = testsupport.LoadApplication(t, fixture)
	}

	formatter := format.Default{}
	for name, app := range apps {
		t.Run(name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			report, err := newOrchestrator(t, fs).Generate(testsupport.Context(), app)
			require.NoError(t, err)

			checked := 0
			for _, rel := range report.Written {
				fn := formatter.For(rel)
				if fn == nil {
					continue
				}
				src, err := afero.ReadFile(fs, path.Join(outDir, rel))
				require.NoError(t, err)
				again, err := fn(src)
				require.NoErrorf(t, err, "formatting %s again", rel)
				if diff := cmp.Diff(string(src), string(again)); diff != "" {
					t.Fatalf("%s changes when formatted again (-written +reformatted):\n%s", rel, diff)
				}
				checked++
			}
			require.NotZero(t, checked)
		})
	}
}

func TestGenerate_UnresolvedReference(t *testing.T) {
	app := testsupport.MustParse(t, `{"name": "a", "entities": [{"name": "A", "fields": [{"name": "id", "type": "Id"}]}],
		"relations": [{"name": "R", "type": "OneToMany", "from": "A", "to": "Ghost", "field_name": "ghosts", "backref_field_name": "a"}]}`)

	fs := afero.NewMemMapFs()
	_, err := newOrchestrator(t, fs).Generate(testsupport.Context(), app)
	_, ok := view.AsUnresolvedReference(err)
	require.True(t, ok, "expected unresolved reference, got %v", err)

	ok, _ = afero.Exists(fs, path.Join(outDir, "go.mod"))
	require.False(t, ok, "nothing is written before views resolve")
}

func TestGenerate_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newOrchestrator(t, afero.NewMemMapFs()).Generate(ctx, testsupport.LoadApplication(t, testsupport.FixtureTask))
	require.ErrorIs(t, err, context.Canceled)
}

func TestGenerate_Transformer(t *testing.T) {
	fs := afero.NewMemMapFs()
	hook := orchestrator.TransformerFunc(func(_ context.Context, app *view.AppView) error {
		app.Title = "Renamed Tracker"
		return nil
	})
	_, err := newOrchestrator(t, fs, orchestrator.WithTransformer(hook)).Generate(testsupport.Context(), testsupport.LoadApplication(t, testsupport.FixtureTask))
	require.NoError(t, err)

	readme, err := afero.ReadFile(fs, path.Join(outDir, "README.md"))
	require.NoError(t, err)
	require.Contains(t, string(readme), "Renamed Tracker")
}

func TestGenerate_Version(t *testing.T) {
	fs := afero.NewMemMapFs()
	_, err := newOrchestrator(t, fs, orchestrator.WithVersion("1.4.0")).
		Generate(testsupport.Context(), testsupport.LoadApplication(t, testsupport.FixtureTask))
	require.NoError(t, err)

	readme, err := afero.ReadFile(fs, path.Join(outDir, "README.md"))
	require.NoError(t, err)
	require.Contains(t, string(readme), "published as version `1.4.0`")

	doc, err := afero.ReadFile(fs, path.Join(outDir, "openapi.json"))
	require.NoError(t, err)
	require.Contains(t, string(doc), `"version": "1.4.0"`)
}

func TestClean(t *testing.T) {
	fs := afero.NewMemMapFs()
	orch := newOrchestrator(t, fs)

	require.NoError(t, orch.Clean(testsupport.Context()), "cleaning a missing directory succeeds")

	_, err := orch.Generate(testsupport.Context(), testsupport.LoadApplication(t, testsupport.FixtureTask))
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(fs, path.Join(outDir, "notes.txt"), []byte("keep"), 0o644))

	require.NoError(t, orch.Clean(testsupport.Context()))
	for _, name := range orchestrator.Generated {
		ok, _ := afero.Exists(fs, path.Join(outDir, name))
		require.Falsef(t, ok, "%s should be removed", name)
	}
	ok, _ := afero.Exists(fs, path.Join(outDir, "notes.txt"))
	require.True(t, ok, "unrelated files stay")
}

func TestRegenerate_DropsStaleArtifacts(t *testing.T) {
	fs := afero.NewMemMapFs()
	orch := newOrchestrator(t, fs)

	_, err := orch.Generate(testsupport.Context(), testsupport.LoadApplication(t, testsupport.FixtureFull))
	require.NoError(t, err)

	_, err = orch.Regenerate(testsupport.Context(), testsupport.LoadApplication(t, testsupport.FixtureTask))
	require.NoError(t, err)

	for _, stale := range []string{"app/endpoints/user.go", "app/enums/enums.go", "app/storage/storage.go"} {
		ok, _ := afero.Exists(fs, path.Join(outDir, stale))
		require.Falsef(t, ok, "%s should be gone", stale)
	}
}

type failingRenderer struct {
	orchestrator.Renderer
	id  string
	err error
}

func (f failingRenderer) Render(id string, data any) (string, error) {
	if id == f.id {
		return "", &render.TemplateError{ID: id, Reason: render.ReasonExecution, Err: f.err}
	}
	return f.Renderer.Render(id, data)
}
