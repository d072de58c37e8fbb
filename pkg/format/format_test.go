package format_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-crudgen/pkg/format"
)

const messySource = `package demo

import (
	"strings"
	"fmt"
	"github.com/go-chi/chi/v5"
	"time"
	_ "modernc.org/sqlite"
)

func Hello(name string)   string {
return fmt.Sprintf("hello %s",    strings.TrimSpace(name))
}

func Router() chi.Router { return chi.NewRouter() }
`

func TestGo_RemovesUnusedImportsAndFormats(t *testing.T) {
	out, err := format.Go([]byte(messySource))
	require.NoError(t, err)

	got := string(out)
	require.NotContains(t, got, `"time"`)
	require.Contains(t, got, `_ "modernc.org/sqlite"`)
	require.Contains(t, got, `"github.com/go-chi/chi/v5"`)
	require.Contains(t, got, "func Hello(name string) string {\n\treturn fmt.Sprintf(\"hello %s\", strings.TrimSpace(name))\n}")

	fmtAt := strings.Index(got, `"fmt"`)
	stringsAt := strings.Index(got, `"strings"`)
	require.True(t, fmtAt >= 0 && fmtAt < stringsAt, "imports not sorted:\n%s", got)
}

func TestGo_Idempotent(t *testing.T) {
	once, err := format.Go([]byte(messySource))
	require.NoError(t, err)
	twice, err := format.Go(once)
	require.NoError(t, err)
	if diff := cmp.Diff(string(once), string(twice)); diff != "" {
		t.Fatalf("second pass changed output (-once +twice):\n%s", diff)
	}
}

func TestGo_KeepsImportsUsedOnlyByName(t *testing.T) {
	src := `package demo

import (
	sqlite3 "modernc.org/sqlite/lib"
	"gopkg.in/yaml.v3"
)

const code = sqlite3.SQLITE_CONSTRAINT

var _ = yaml.Marshal
`
	out, err := format.Go([]byte(src))
	require.NoError(t, err)
	require.Contains(t, string(out), `sqlite3 "modernc.org/sqlite/lib"`)
	require.Contains(t, string(out), `"gopkg.in/yaml.v3"`)
}

func TestGo_DropsWholeImportDeclWhenUnused(t *testing.T) {
	src := "package demo\n\nimport \"os\"\n\nfunc F() {}\n"
	out, err := format.Go([]byte(src))
	require.NoError(t, err)
	require.NotContains(t, string(out), "import")
}

func TestGo_LocalShadowIsNotAPackageUse(t *testing.T) {
	src := `package demo

import "strings"

type holder struct{ Len int }

func F(strings holder) int { return strings.Len }
`
	out, err := format.Go([]byte(src))
	require.NoError(t, err)
	require.NotContains(t, string(out), `import "strings"`)
}

func TestGo_InvalidSource(t *testing.T) {
	_, err := format.Go([]byte("package demo\n\nfunc {"))
	fe, ok := format.AsError(err)
	require.True(t, ok, "expected *format.Error, got %v", err)
	require.Equal(t, format.KindGo, fe.Kind)
}

func TestManifest(t *testing.T) {
	src := "module  demo\n\ngo 1.24\n\nrequire (\n\tmodernc.org/sqlite v1.46.1\n\tgithub.com/go-chi/chi/v5 v5.2.5\n)\n"
	out, err := format.Manifest([]byte(src))
	require.NoError(t, err)
	require.Contains(t, string(out), "module demo\n")

	again, err := format.Manifest(out)
	require.NoError(t, err)
	require.Equal(t, string(out), string(again))

	_, err = format.Manifest([]byte("modul demo"))
	_, ok := format.AsError(err)
	require.True(t, ok)
}

func TestAPIDocument(t *testing.T) {
	src := `{"openapi":"3.0.3","info":{"title":"Demo","version":"0.1.0"},"paths":{"/api/things":{"get":{"operationId":"listThings","responses":{"200":{"description":"ok"}}}}}}`
	out, err := format.APIDocument([]byte(src))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(out), "{\n  \""), "document not indented:\n%s", out)

	again, err := format.APIDocument(out)
	require.NoError(t, err)
	require.Equal(t, string(out), string(again))

	_, err = format.APIDocument([]byte(`{"openapi":"3.0.3","info":{"title":"Demo"},"paths":{}}`))
	fe, ok := format.AsError(err)
	require.True(t, ok, "expected *format.Error, got %v", err)
	require.Equal(t, format.KindAPI, fe.Kind)
}

func TestFor(t *testing.T) {
	cases := map[string]bool{
		"go.mod":                   true,
		"openapi.json":             true,
		"app/models/models.go":     true,
		"README.md":                false,
		"static/css/style.css":     false,
		"templates/index.html":     false,
		".crudgen.json.lock":       false,
		"app/endpoints/project.go": true,
	}
	for dest, want := range cases {
		if got := format.For(dest) != nil; got != want {
			t.Fatalf("For(%q) != nil = %v, want %v", dest, got, want)
		}
	}
}
