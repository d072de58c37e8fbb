package orchestrator

import (
	"path"
	"strings"

	"github.com/goliatone/go-crudgen/pkg/render"
	"github.com/goliatone/go-crudgen/pkg/view"
)

// SnapshotFile is written last, next to the generated tree.
const SnapshotFile = ".crudgen.json.lock"

// APIDocumentFile is the OpenAPI description of the generated API.
const APIDocumentFile = "openapi.json"

// Kind classifies how an artifact's content is produced.
type Kind string

const (
	KindGoSource Kind = "go"
	KindManifest Kind = "manifest"
	KindDocument Kind = "document"
	KindAPI      Kind = "api"
	KindAsset    Kind = "asset"
	KindSnapshot Kind = "snapshot"
)

// Gate decides whether an artifact is part of the tree.
type Gate struct {
	Name string
	When func(app *view.AppView) bool
}

// Always includes the artifact in every tree.
var Always = Gate{Name: "always", When: func(*view.AppView) bool { return true }}

// HasEnumField includes the artifact when any entity declares an Enum field.
var HasEnumField = Gate{Name: "HasEnumField", When: func(app *view.AppView) bool { return app.HasEnumField }}

// HasFileField includes the artifact when any entity declares a File or Image
// field.
var HasFileField = Gate{Name: "HasFileField", When: func(app *view.AppView) bool { return app.HasFileField }}

// Artifact is one planned output file.
type Artifact struct {
	// Template is the template id for rendered artifacts or the asset id for
	// pass-through ones. Empty for the API document and the snapshot.
	Template string
	Dest     string
	Scope    render.Scope
	Kind     Kind
	Gate     Gate
	// Entity is set for entity scoped artifacts.
	Entity *view.EntityView
}

type step struct {
	template string
	dest     string
	kind     Kind
	gate     Gate
	each     bool
}

var steps = []step{
	{template: render.TemplateManifest, dest: "go.mod", kind: KindManifest, gate: Always},
	{template: render.TemplateReadme, dest: "README.md", kind: KindDocument, gate: Always},
	{template: render.TemplateSettings, dest: "app/settings/settings.go", kind: KindGoSource, gate: Always},
	{template: render.TemplateModels, dest: "app/models/models.go", kind: KindGoSource, gate: Always},
	{template: render.TemplateSchemas, dest: "app/schemas/schemas.go", kind: KindGoSource, gate: Always},
	{template: render.TemplateCRUD, dest: "app/crud/crud.go", kind: KindGoSource, gate: Always},
	{template: render.TemplateDB, dest: "app/db/db.go", kind: KindGoSource, gate: Always},
	{template: render.TemplateDeps, dest: "app/deps/deps.go", kind: KindGoSource, gate: Always},
	{template: render.TemplateEnums, dest: "app/enums/enums.go", kind: KindGoSource, gate: HasEnumField},
	{template: render.TemplateStorage, dest: "app/storage/storage.go", kind: KindGoSource, gate: HasFileField},
	{template: render.TemplateEndpoints, dest: "app/endpoints/endpoints.go", kind: KindGoSource, gate: Always},
	{template: render.TemplateEntity, dest: "app/endpoints", kind: KindGoSource, gate: Always, each: true},
	{template: render.TemplateServer, dest: "cmd/server/main.go", kind: KindGoSource, gate: Always},
	{dest: APIDocumentFile, kind: KindAPI, gate: Always},
	{template: render.AssetIndex, dest: render.AssetIndex, kind: KindAsset, gate: Always},
	{template: render.AssetStylesheet, dest: render.AssetStylesheet, kind: KindAsset, gate: Always},
	{dest: SnapshotFile, kind: KindSnapshot, gate: Always},
}

// Generated lists the top level paths a generation pass owns. Clean removes
// exactly these.
var Generated = []string{
	"app", "cmd", "templates", "static",
	"go.mod", "README.md", APIDocumentFile, SnapshotFile,
}

// Plan returns the artifacts of app in write order. Artifacts whose gate is
// closed are left out.
func Plan(app *view.AppView) []Artifact {
	if app == nil {
		return nil
	}
	var out []Artifact
	for _, s := range steps {
		if !s.gate.When(app) {
			continue
		}
		if !s.each {
			scope := render.ScopeApp
			if s.kind == KindAsset || s.kind == KindAPI || s.kind == KindSnapshot {
				scope = ""
			}
			out = append(out, Artifact{
				Template: s.template,
				Dest:     s.dest,
				Scope:    scope,
				Kind:     s.kind,
				Gate:     s.gate,
			})
			continue
		}
		for _, entity := range app.Entities {
			out = append(out, Artifact{
				Template: s.template,
				Dest:     path.Join(s.dest, entityFile(entity.Snake)),
				Scope:    render.ScopeEntity,
				Kind:     s.kind,
				Gate:     s.gate,
				Entity:   entity,
			})
		}
	}
	return out
}

// Skipped returns the artifacts whose gate is closed for app.
func Skipped(app *view.AppView) []string {
	if app == nil {
		return nil
	}
	var out []string
	for _, s := range steps {
		if !s.gate.When(app) {
			out = append(out, s.dest)
		}
	}
	return out
}

// Directories returns the directories the plan writes into, parents first.
func Directories(plan []Artifact) []string {
	seen := map[string]bool{}
	var out []string
	for _, artifact := range plan {
		dir := path.Dir(artifact.Dest)
		if dir == "." {
			continue
		}
		var parts []string
		for _, part := range strings.Split(dir, "/") {
			parts = append(parts, part)
			p := strings.Join(parts, "/")
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}
	return out
}

// goSuffixes are file name suffixes the go tool treats as build constraints.
var goSuffixes = map[string]bool{
	"test": true,
	// GOOS
	"aix": true, "android": true, "darwin": true, "dragonfly": true, "freebsd": true,
	"hurd": true, "illumos": true, "ios": true, "js": true, "linux": true, "nacl": true,
	"netbsd": true, "openbsd": true, "plan9": true, "solaris": true, "wasip1": true,
	"windows": true, "zos": true,
	// GOARCH
	"386": true, "amd64": true, "arm": true, "arm64": true, "loong64": true,
	"mips": true, "mipsle": true, "mips64": true, "mips64le": true, "ppc64": true,
	"ppc64le": true, "riscv64": true, "s390x": true, "wasm": true,
}

// entityFile names the endpoint module of an entity. Names that would collide
// with the router file or read as a build constraint get a "_routes" suffix.
func entityFile(snake string) string {
	name := snake
	last := name
	if i := strings.LastIndex(name, "_"); i >= 0 {
		last = name[i+1:]
	}
	if name == "endpoints" || (name != last && goSuffixes[last]) || strings.HasPrefix(name, "_") {
		name += "_routes"
	}
	return name + ".go"
}
