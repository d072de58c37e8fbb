package render

import "sort"

// Scope names the data shape a template expects.
type Scope string

const (
	// ScopeApp templates receive view.AppData.
	ScopeApp Scope = "app"
	// ScopeEntity templates receive view.EntityData and render once per
	// entity.
	ScopeEntity Scope = "entity"
)

// Template identifiers. Each resolves to "<id>.tpl" in the templates FS.
const (
	TemplateManifest  = "go.mod"
	TemplateReadme    = "README.md"
	TemplateSettings  = "app/settings/settings.go"
	TemplateModels    = "app/models/models.go"
	TemplateSchemas   = "app/schemas/schemas.go"
	TemplateCRUD      = "app/crud/crud.go"
	TemplateDB        = "app/db/db.go"
	TemplateDeps      = "app/deps/deps.go"
	TemplateEnums     = "app/enums/enums.go"
	TemplateStorage   = "app/storage/storage.go"
	TemplateEndpoints = "app/endpoints/endpoints.go"
	TemplateEntity    = "app/endpoints/entity.go"
	TemplateServer    = "cmd/server/main.go"
)

// Pass-through asset identifiers, relative to the assets FS.
const (
	AssetIndex      = "templates/index.html"
	AssetStylesheet = "static/css/style.css"
)

var defaultScopes = map[string]Scope{
	TemplateManifest:  ScopeApp,
	TemplateReadme:    ScopeApp,
	TemplateSettings:  ScopeApp,
	TemplateModels:    ScopeApp,
	TemplateSchemas:   ScopeApp,
	TemplateCRUD:      ScopeApp,
	TemplateDB:        ScopeApp,
	TemplateDeps:      ScopeApp,
	TemplateEnums:     ScopeApp,
	TemplateStorage:   ScopeApp,
	TemplateEndpoints: ScopeApp,
	TemplateEntity:    ScopeEntity,
	TemplateServer:    ScopeApp,
}

// Templates lists the identifiers of the built-in templates in sorted order.
func Templates() []string {
	ids := make([]string, 0, len(defaultScopes))
	for id := range defaultScopes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Assets lists the built-in pass-through resources.
func Assets() []string {
	return []string{AssetIndex, AssetStylesheet}
}
