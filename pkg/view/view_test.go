package view_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-crudgen/pkg/testsupport"
	"github.com/goliatone/go-crudgen/pkg/view"
)

func mustBuild(t *testing.T, fixture string) *view.AppView {
	t.Helper()
	app, err := view.Build(testsupport.LoadApplication(t, fixture))
	if err != nil {
		t.Fatalf("build view: %v", err)
	}
	return app
}

func TestBuild_SingleEntityHasNoRelationAttributes(t *testing.T) {
	app := mustBuild(t, testsupport.FixtureTask)
	task, ok := app.Entity("Task")
	if !ok {
		t.Fatalf("Task view missing")
	}

	var columns []string
	for _, column := range task.Columns {
		columns = append(columns, column.GoName+" "+column.ModelType)
	}
	if diff := cmp.Diff([]string{"ID int64", "Name string"}, columns); diff != "" {
		t.Fatalf("columns mismatch (-want +got):\n%s", diff)
	}
	if len(task.ToOne)+len(task.ToMany)+len(task.Children)+len(task.Links) != 0 {
		t.Fatalf("unexpected relation members: %+v", task)
	}
	if app.Module != "task-tracker" || app.EnvPrefix != "TASK_TRACKER" {
		t.Fatalf("unexpected module %q / prefix %q", app.Module, app.EnvPrefix)
	}
	if task.SelectList != "id, name" || task.InsertList != "name" || task.Table != "tasks" {
		t.Fatalf("unexpected sql lists: %q %q %q", task.SelectList, task.InsertList, task.Table)
	}
}

func TestBuild_OneToManyReferences(t *testing.T) {
	app := mustBuild(t, testsupport.FixtureUserProject)
	user, _ := app.Entity("User")
	project, _ := app.Entity("Project")

	if len(user.ToMany) != 1 || user.ToMany[0].GoName != "Projects" || user.ToMany[0].Target != "Project" {
		t.Fatalf("user collection reference missing: %+v", user.ToMany)
	}
	if len(project.ToOne) != 1 || project.ToOne[0].GoName != "User" || project.ToOne[0].Target != "User" {
		t.Fatalf("project single reference missing: %+v", project.ToOne)
	}
	last := project.Columns[len(project.Columns)-1]
	if !last.IsForeignKey || last.Column != "user_id" || last.GoName != "UserID" || last.References != "users" {
		t.Fatalf("unexpected foreign key %+v", last)
	}
	if len(user.Children) != 1 || user.Children[0].Func != "ListProjectsByUserID" {
		t.Fatalf("unexpected children %+v", user.Children)
	}
}

func TestBuild_ManyToOneViewsMatchOneToMany(t *testing.T) {
	want := mustBuild(t, testsupport.FixtureUserProject)
	got := mustBuild(t, testsupport.FixtureManyToOne)
	if diff := cmp.Diff(want, got, cmpAllowUnexported()); diff != "" {
		t.Fatalf("views differ (-want +got):\n%s", diff)
	}
}

func TestBuild_ManyToManyAndSelfRelations(t *testing.T) {
	app := mustBuild(t, testsupport.FixtureFull)

	tables := map[string][2]string{}
	for _, join := range app.JoinTables {
		tables[join.Table] = [2]string{join.SourceColumn, join.TargetColumn}
	}
	want := map[string][2]string{
		"task_tags":     {"task_id", "tag_id"},
		"task_blockers": {"source_id", "target_id"},
	}
	if diff := cmp.Diff(want, tables); diff != "" {
		t.Fatalf("join tables mismatch (-want +got):\n%s", diff)
	}

	task, _ := app.Entity("Task")
	var routes []string
	for _, link := range task.Links {
		routes = append(routes, link.Route+":"+link.ListFunc)
	}
	wantRoutes := []string{
		"tags:ListTaskTagsTargets",
		"blocked-by:ListTaskBlockersTargets",
		"blocks:ListTaskBlockersSources",
	}
	if diff := cmp.Diff(wantRoutes, routes); diff != "" {
		t.Fatalf("links mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_FieldTypesAndChecks(t *testing.T) {
	app := mustBuild(t, testsupport.FixtureFull)
	task, _ := app.Entity("Task")

	byName := map[string]view.FieldView{}
	for _, column := range task.Columns {
		byName[column.Name] = column
	}

	status := byName["status"]
	if status.ModelType != "enums.TaskStatus" || status.WriteType != "enums.TaskStatus" || status.WritePointer {
		t.Fatalf("unexpected enum field %+v", status)
	}
	if status.ColumnDef != "status VARCHAR(11) NOT NULL CHECK (status IN ('OPEN', 'IN_PROGRESS', 'COMPLETED'))" {
		t.Fatalf("unexpected enum column %q", status.ColumnDef)
	}

	priority := byName["priority"]
	wantChecks := []view.CheckView{
		{Cond: "float64(v) <= 0.0", Message: `"must be greater than 0"`},
		{Cond: "float64(v) > 5.0", Message: `"must be less than or equal to 5"`},
	}
	if diff := cmp.Diff(wantChecks, priority.Checks); diff != "" {
		t.Fatalf("priority checks mismatch (-want +got):\n%s", diff)
	}
	if priority.ModelType != "*int64" || !priority.WritePointer {
		t.Fatalf("nullable integer should be a pointer: %+v", priority)
	}

	attachment := byName["attachment"]
	if attachment.ReadType != "*FileInfo" || attachment.MimeTypes != `"application/pdf"` {
		t.Fatalf("unexpected file field %+v", attachment)
	}
	for _, column := range task.WritableColumns {
		if column.IsFile || column.IsIdentity {
			t.Fatalf("writable columns must skip %s", column.Name)
		}
	}

	if len(app.Enums) != 1 || app.Enums[0].Values[1].Const != "TaskStatusInProgress" {
		t.Fatalf("unexpected enums %+v", app.Enums)
	}
}

func TestBuild_ReusesDeclaredForeignKeyColumn(t *testing.T) {
	app := testsupport.MustParse(t, `{
		"name": "shop",
		"entities": [
			{"name": "Customer", "fields": [{"name": "id", "type": "Id"}]},
			{"name": "Order", "fields": [{"name": "id", "type": "Id"}, {"name": "customerId", "type": "Integer", "constraints": {"not_null": true}}]}
		],
		"relations": [{"name": "Orders", "type": "OneToMany", "from": "Customer", "to": "Order", "field_name": "orders", "backref_field_name": "customer"}]
	}`)
	built, err := view.Build(app)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	order, _ := built.Entity("Order")
	if len(order.Columns) != 2 {
		t.Fatalf("expected the declared column to be reused, got %d columns", len(order.Columns))
	}
	fk := order.Columns[1]
	if !fk.IsForeignKey || fk.ColumnDef != "customer_id INTEGER NOT NULL REFERENCES customers(id) ON DELETE CASCADE" {
		t.Fatalf("unexpected foreign key %+v", fk)
	}
}

func TestBuild_UnresolvedReferences(t *testing.T) {
	cases := map[string]string{
		"unknown entity": `{"name": "a", "entities": [{"name": "A", "fields": [{"name": "id", "type": "Id"}]}],
			"relations": [{"name": "R", "type": "OneToMany", "from": "A", "to": "Ghost", "field_name": "ghosts", "backref_field_name": "a"}]}`,
		"missing identity": `{"name": "a", "entities": [
				{"name": "A", "fields": [{"name": "label", "type": "String"}]},
				{"name": "B", "fields": [{"name": "id", "type": "Id"}]}],
			"relations": [{"name": "R", "type": "ManyToMany", "from": "A", "to": "B", "field_name": "bs", "backref_field_name": "as"}]}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := view.Build(testsupport.MustParse(t, doc))
			ref, ok := view.AsUnresolvedReference(err)
			if !ok {
				t.Fatalf("expected unresolved reference, got %v", err)
			}
			if ref.Relation != "R" {
				t.Fatalf("unexpected relation %q", ref.Relation)
			}
		})
	}
}

func TestBuild_EndpointsWithoutIdentity(t *testing.T) {
	built, err := view.Build(testsupport.MustParse(t, `{"name": "log", "entities": [{"name": "Entry", "fields": [{"name": "line", "type": "Text"}]}]}`))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	var kinds []string
	for _, ep := range built.Endpoints() {
		kinds = append(kinds, ep.Method+" "+ep.Path)
	}
	if diff := cmp.Diff([]string{"GET /api/entries", "POST /api/entries"}, kinds); diff != "" {
		t.Fatalf("endpoints mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_IrregularPlurals(t *testing.T) {
	built, err := view.Build(testsupport.MustParse(t, `{"name": "family", "entities": [
			{"name": "Person", "fields": [{"name": "id", "type": "Id"}]},
			{"name": "Child", "fields": [{"name": "id", "type": "Id"}]}],
		"relations": [{"name": "Parenting", "type": "OneToMany", "from": "Person", "to": "Child", "field_name": "children", "backref_field_name": "person"}]}`))
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	var got []string
	for _, entity := range built.Entities {
		got = append(got, entity.Table+" "+entity.Route+" "+entity.PluralGoName)
	}
	if diff := cmp.Diff([]string{"people people People", "children children Children"}, got); diff != "" {
		t.Fatalf("plural names mismatch (-want +got):\n%s", diff)
	}

	child, _ := built.Entity("Child")
	last := child.Columns[len(child.Columns)-1]
	if !last.IsForeignKey || last.References != "people" {
		t.Fatalf("foreign key should reference people: %+v", last)
	}
	if built.Endpoints()[0].OperationID != "listPeople" {
		t.Fatalf("unexpected operation id %q", built.Endpoints()[0].OperationID)
	}
}

func TestBuild_EmptyApplication(t *testing.T) {
	built, err := view.Build(testsupport.MustParse(t, `{"name": "empty", "entities": []}`))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(built.Entities) != 0 || len(built.Endpoints()) != 0 || built.Module != "empty" {
		t.Fatalf("unexpected view %+v", built)
	}
}

func TestSanitizeText(t *testing.T) {
	got := view.SanitizeText(`  <script>alert(1)</script><b>Tasks</b> & notes `)
	if got != "Tasks & notes" {
		t.Fatalf("unexpected sanitized text %q", got)
	}
}

func cmpAllowUnexported() cmp.Option {
	return cmp.AllowUnexported(view.EntityView{})
}
