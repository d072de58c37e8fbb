package ir_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-crudgen/pkg/ir"
	"github.com/goliatone/go-crudgen/pkg/testsupport"
)

func TestNormalize_Idempotent(t *testing.T) {
	for _, name := range []string{
		testsupport.FixtureTask,
		testsupport.FixtureUserProject,
		testsupport.FixtureGallery,
		testsupport.FixtureFull,
	} {
		app := testsupport.LoadApplication(t, name)
		once := ir.Normalize(app)
		twice := ir.Normalize(once)
		if diff := cmp.Diff(once, twice); diff != "" {
			t.Fatalf("%s: normalize not idempotent (-once +twice):\n%s", name, diff)
		}
	}
}

func TestNormalize_ReturnsCopy(t *testing.T) {
	raw := ir.Application{
		Name:     "app",
		Entities: []ir.Entity{{Name: "task", Fields: []ir.Field{{Name: "Title", Type: ir.FieldTypeString}}}},
		Relations: []ir.Relation{{
			Name: "taskOwner", Type: ir.OneToMany, From: "user", To: "task",
			FieldName: "Tasks", BackrefFieldName: "Owner",
		}},
	}
	normalized := ir.Normalize(raw)

	if raw.Entities[0].Name != "task" || raw.Entities[0].Fields[0].Name != "Title" {
		t.Fatalf("input mutated: %+v", raw.Entities[0])
	}
	want := ir.Relation{
		Name: "TaskOwner", Type: ir.OneToMany, From: "User", To: "Task",
		FieldName: "tasks", BackrefFieldName: "owner",
	}
	if diff := cmp.Diff(want, normalized.Relations[0]); diff != "" {
		t.Fatalf("relation mismatch (-want +got):\n%s", diff)
	}
	if normalized.Entities[0].Name != "Task" || normalized.Entities[0].Fields[0].Name != "title" {
		t.Fatalf("entity not normalized: %+v", normalized.Entities[0])
	}
}

func TestApplication_Predicates(t *testing.T) {
	var empty ir.Application
	if empty.HasFileField() || empty.HasEnumField() {
		t.Fatalf("predicates must be false with zero entities")
	}

	task := testsupport.LoadApplication(t, testsupport.FixtureTask)
	if task.HasFileField() || task.HasEnumField() {
		t.Fatalf("task fixture has neither file nor enum fields")
	}

	gallery := testsupport.LoadApplication(t, testsupport.FixtureGallery)
	if !gallery.HasFileField() || gallery.HasEnumField() {
		t.Fatalf("gallery: file=%v enum=%v", gallery.HasFileField(), gallery.HasEnumField())
	}

	full := testsupport.LoadApplication(t, testsupport.FixtureFull)
	if !full.HasFileField() || !full.HasEnumField() {
		t.Fatalf("full: file=%v enum=%v", full.HasFileField(), full.HasEnumField())
	}
}

func TestEntity_IdentityField(t *testing.T) {
	app := testsupport.LoadApplication(t, testsupport.FixtureTask)
	entity, ok := app.Entity("Task")
	if !ok {
		t.Fatalf("entity Task not found")
	}
	id, ok := entity.IdentityField()
	if !ok || id.Name != "id" || !id.IsIdentity() {
		t.Fatalf("unexpected identity %+v (%v)", id, ok)
	}

	noID := ir.Entity{Name: "Log", Fields: []ir.Field{{Name: "line", Type: ir.FieldTypeText}}}
	if _, ok := noID.IdentityField(); ok {
		t.Fatalf("identity must never be synthesized")
	}
}

func TestSnapshot_RoundTrip(t *testing.T) {
	app := testsupport.LoadApplication(t, testsupport.FixtureFull)

	data, err := ir.MarshalSnapshot(app)
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}
	if !strings.Contains(string(data), `"crudgen_version": "`+ir.SnapshotVersion+`"`) {
		t.Fatalf("snapshot missing version:\n%s", data)
	}

	loaded, err := ir.LoadSnapshot(data)
	if err != nil {
		t.Fatalf("load snapshot: %v", err)
	}
	if diff := cmp.Diff(app, loaded); diff != "" {
		t.Fatalf("snapshot round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadSnapshot_VersionRange(t *testing.T) {
	doc := string(testsupport.MustReadFixture(t, testsupport.FixtureTask))
	if _, err := ir.LoadSnapshot([]byte(`{"crudgen_version": "1.2.0", "app": ` + doc + `}`)); err == nil {
		t.Fatalf("expected unsupported version error")
	}
	if _, err := ir.LoadSnapshot([]byte(`{"crudgen_version": "0.4.1", "app": ` + doc + `}`)); err != nil {
		t.Fatalf("0.4.1 should load: %v", err)
	}
	if _, err := ir.LoadSnapshot([]byte(doc)); err != nil {
		t.Fatalf("bare documents should load: %v", err)
	}
}

func TestConstraints_String(t *testing.T) {
	app := testsupport.LoadApplication(t, testsupport.FixtureFull)
	task, _ := app.Entity("Task")

	want := map[string]string{
		"title":      "not_null=true, max_length=200",
		"status":     "not_null=true, allowed_values=[OPEN, IN_PROGRESS, COMPLETED]",
		"priority":   "gt=0, le=5",
		"attachment": "mime_types=[application/pdf]",
		"done":       "",
	}
	for name, rules := range want {
		field, ok := task.Field(name)
		if !ok {
			t.Fatalf("field %s missing", name)
		}
		if got := field.Constraints.String(); got != rules {
			t.Fatalf("%s: got %q, want %q", name, got, rules)
		}
	}
}
