// Package view turns a normalized IR into the statically shaped data bound to
// templates. Every value a template prints is precomputed here as a string so
// templates stay free of type conversions and naming logic.
package view

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-crudgen/pkg/ir"
	"github.com/goliatone/go-crudgen/pkg/naming"
)

// Versions pinned into the generated dependency manifest.
const (
	GoVersion     = "1.24"
	ChiModule     = "github.com/go-chi/chi/v5"
	ChiVersion    = "v5.2.5"
	SQLiteModule  = "modernc.org/sqlite"
	SQLiteVersion = "v1.46.1"
)

// AppData is the data shape of application scoped templates.
type AppData struct {
	App *AppView
}

// EntityData is the data shape of entity scoped templates. The application is
// carried along so cross-entity relation code renders correctly.
type EntityData struct {
	Entity *EntityView
	App    *AppView
}

// Requirement is one dependency line of the generated manifest.
type Requirement struct {
	Path    string
	Version string
}

// AppView is the application scoped view.
type AppView struct {
	Name         string
	Title        string
	Summary      string
	Description  string
	Module       string
	EnvPrefix    string
	GoVersion    string
	Requires     []Requirement
	HasFileField bool
	HasEnumField bool
	HasJSONField bool
	Entities     []*EntityView
	Enums        []EnumView
	JoinTables   []JoinTableView
	Relations    []RelationView
}

// Entity returns the entity view with the given IR name.
func (a *AppView) Entity(name string) (*EntityView, bool) {
	for _, entity := range a.Entities {
		if entity.Name == name {
			return entity, true
		}
	}
	return nil, false
}

// Endpoints lists every endpoint of every entity in mount order.
func (a *AppView) Endpoints() []EndpointView {
	var out []EndpointView
	for _, entity := range a.Entities {
		out = append(out, entity.Endpoints...)
	}
	return out
}

// EntityView is the per entity view.
type EntityView struct {
	Name         string
	GoName       string
	PluralGoName string
	VarName      string
	Snake        string
	Table        string
	Route        string
	Label        string
	HasIdentity  bool
	Identity     FieldView

	// Fields are the declared fields in declaration order.
	Fields []FieldView
	// Columns are the stored columns: declared fields followed by foreign
	// keys introduced by relations.
	Columns []FieldView
	// WritableColumns are the columns accepted by create and update payloads.
	WritableColumns []FieldView
	FileFields      []FieldView

	ToOne    []RefView
	ToMany   []RefView
	Children []ChildView
	Links    []LinkView

	SelectList   string
	ScanArgs     string
	InsertList   string
	Placeholders string
	InsertArgs   string
	CreateTable  string
	// CreateTableLiteral is CreateTable as a Go string literal.
	CreateTableLiteral string

	Endpoints []EndpointView

	foreignKeys []FieldView
}

// FieldView describes one stored column or declared field.
type FieldView struct {
	Name         string
	GoName       string
	Column       string
	JSONName     string
	Route        string
	Label        string
	Type         string
	IsIdentity   bool
	IsFile       bool
	IsImage      bool
	IsEnum       bool
	IsJSON       bool
	IsForeignKey bool
	Nullable     bool
	Unique       bool

	// ModelType is the Go type in the data model, ReadType the one in the
	// response schema, WriteType the one in the create payload and
	// PatchType the one in the update payload.
	ModelType string
	ReadType  string
	ReadExpr  string
	WriteType string
	PatchType string
	// WritePointer reports whether WriteType is a pointer that needs a nil
	// check before its value is validated.
	WritePointer bool
	// PatchValue is the SQL argument expression of a non-nil update member.
	PatchValue string

	ColumnDef   string
	Checks      []CheckView
	MimeTypes   string
	EnumType    string
	References  string
	Constraints string
	// Rules are the declared constraints.
	Rules ir.Constraints
}

// RefView is a navigable reference from one model to another.
type RefView struct {
	GoName   string
	JSONName string
	Target   string
	Relation string
}

// ChildView lists the "many" (or single) side of a OneToMany or OneToOne
// relation from the owning entity.
type ChildView struct {
	Route       string
	Handler     string
	Target      string
	TargetTable string
	FKColumn    string
	FKGoName    string
	Func        string
	Single      bool
	Relation    string
}

// LinkView exposes one side of a ManyToMany relation.
type LinkView struct {
	Route         string
	ListHandler   string
	LinkHandler   string
	UnlinkHandler string
	Target        string
	ListFunc      string
	LinkFunc      string
	UnlinkFunc    string
	// Reverse reports whether the entity is the relation's target, so link
	// calls pass (targetID, id) instead of (id, targetID).
	Reverse  bool
	Relation string
}

// JoinTableView is the association table of a ManyToMany relation.
type JoinTableView struct {
	Relation     string
	GoName       string
	Table        string
	Source       string
	Target       string
	SourceTable  string
	TargetTable  string
	SourceColumn string
	TargetColumn string
	// SourceKey and TargetKey are the identity columns the join columns
	// reference.
	SourceKey          string
	TargetKey          string
	CreateTable        string
	CreateTableLiteral string
}

// RelationView is a printable relation summary.
type RelationView struct {
	Name      string
	Type      string
	From      string
	To        string
	FieldName string
	Backref   string
}

// EnumView is one generated enumerated type.
type EnumView struct {
	TypeName string
	Entity   string
	Field    string
	Values   []EnumValueView
	Summary  string
}

// EnumValueView is one enumerated constant.
type EnumValueView struct {
	Const   string
	Value   string
	Literal string
}

// CheckView is one validation rule: when Cond holds for the value v, the
// payload is rejected with Message (a Go string literal).
type CheckView struct {
	Cond    string
	Message string
}

// Build resolves relations and derives the template views of app. A relation
// naming an undeclared entity, or requiring an identity the entity does not
// declare, fails with *UnresolvedReferenceError.
func Build(app ir.Application) (*AppView, error) {
	view := &AppView{
		Name:         app.Name,
		Title:        oneLine(SanitizeText(app.Name)),
		Summary:      oneLine(SanitizeText(app.Description)),
		Description:  SanitizeText(app.Description),
		Module:       modulePath(app.Name),
		EnvPrefix:    strings.ToUpper(naming.Snake(app.Name)),
		GoVersion:    GoVersion,
		HasFileField: app.HasFileField(),
		HasEnumField: app.HasEnumField(),
		Requires: []Requirement{
			{Path: ChiModule, Version: ChiVersion},
			{Path: SQLiteModule, Version: SQLiteVersion},
		},
	}
	if view.EnvPrefix == "" {
		view.EnvPrefix = "APP"
	}

	for _, entity := range app.Entities {
		ev := buildEntity(entity)
		view.Entities = append(view.Entities, ev)
		for _, field := range ev.Fields {
			if field.IsJSON {
				view.HasJSONField = true
			}
		}
		view.Enums = append(view.Enums, buildEnums(entity)...)
	}

	for _, relation := range app.Relations {
		if err := applyRelation(view, relation); err != nil {
			return nil, err
		}
		view.Relations = append(view.Relations, RelationView{
			Name:      relation.Name,
			Type:      string(relation.Type),
			From:      relation.From,
			To:        relation.To,
			FieldName: relation.FieldName,
			Backref:   relation.BackrefFieldName,
		})
	}

	for _, entity := range view.Entities {
		finishEntity(entity)
		entity.Endpoints = buildEndpoints(entity)
	}
	return view, nil
}

func buildEntity(entity ir.Entity) *EntityView {
	goName := naming.Pascal(entity.Name)
	snake := naming.Snake(entity.Name)
	plural := naming.Plural(snake)
	ev := &EntityView{
		Name:         entity.Name,
		GoName:       goName,
		PluralGoName: naming.Plural(goName),
		VarName:      naming.SafeVar(entity.Name),
		Snake:        snake,
		Table:        sqlIdent(plural),
		Route:        naming.Kebab(plural),
		Label:        label(entity.Name),
	}
	for _, field := range entity.Fields {
		fv := buildField(entity, field)
		if fv.IsIdentity && !ev.HasIdentity {
			ev.HasIdentity = true
			ev.Identity = fv
		}
		ev.Fields = append(ev.Fields, fv)
	}
	return ev
}

func finishEntity(ev *EntityView) {
	ev.Columns = append(append([]FieldView(nil), ev.Fields...), ev.foreignKeys...)
	ev.WritableColumns = nil
	ev.FileFields = nil
	for _, column := range ev.Columns {
		if column.IsFile {
			ev.FileFields = append(ev.FileFields, column)
		}
		if column.IsIdentity || column.IsFile {
			continue
		}
		ev.WritableColumns = append(ev.WritableColumns, column)
	}

	var selects, scans, inserts, marks, args []string
	for _, column := range ev.Columns {
		selects = append(selects, column.Column)
		scans = append(scans, "&m."+column.GoName)
	}
	if len(selects) == 0 {
		// Tables without columns still list their rows.
		selects, scans = []string{"rowid"}, []string{"new(int64)"}
	}
	for _, column := range ev.WritableColumns {
		inserts = append(inserts, column.Column)
		marks = append(marks, "?")
		args = append(args, "in."+column.GoName)
	}
	ev.SelectList = strings.Join(selects, ", ")
	ev.ScanArgs = strings.Join(scans, ", ")
	ev.InsertList = strings.Join(inserts, ", ")
	ev.Placeholders = strings.Join(marks, ", ")
	ev.InsertArgs = strings.Join(args, ", ")
	ev.CreateTable = createTable(ev.Table, ev.Columns)
	ev.CreateTableLiteral = goRawString(ev.CreateTable)
}

func createTable(table string, columns []FieldView) string {
	defs := make([]string, 0, len(columns))
	for _, column := range columns {
		defs = append(defs, "\t"+column.ColumnDef)
	}
	if len(defs) == 0 {
		// SQLite tables need at least one column.
		defs = append(defs, "\trowid_placeholder INTEGER")
	}
	return "CREATE TABLE IF NOT EXISTS " + table + " (\n" + strings.Join(defs, ",\n") + "\n)"
}

// goRawString quotes s as a raw string literal unless it contains a backtick.
func goRawString(s string) string {
	if strings.Contains(s, "`") {
		return strconv.Quote(s)
	}
	return "`" + s + "`"
}

func modulePath(name string) string {
	words := naming.Words(name)
	var kept []string
	for _, word := range words {
		if isASCIIWord(word) {
			kept = append(kept, word)
		}
	}
	if len(kept) == 0 {
		return "app"
	}
	return strings.Join(kept, "-")
}

func isASCIIWord(s string) bool {
	for _, r := range s {
		if r > 127 {
			return false
		}
	}
	return s != ""
}

func label(name string) string {
	words := naming.Words(name)
	if len(words) == 0 {
		return name
	}
	words[0] = naming.UpperFirst(words[0])
	return strings.Join(words, " ")
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
