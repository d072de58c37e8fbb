package apidoc_test

import (
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-crudgen/pkg/apidoc"
	"github.com/goliatone/go-crudgen/pkg/format"
	"github.com/goliatone/go-crudgen/pkg/testsupport"
	"github.com/goliatone/go-crudgen/pkg/view"
)

func build(t *testing.T, fixture string) *view.AppView {
	t.Helper()
	app, err := view.Build(testsupport.LoadApplication(t, fixture))
	require.NoError(t, err)
	return app
}

func decode(t *testing.T, app *view.AppView) map[string]any {
	t.Helper()
	data, err := apidoc.Marshal(app, "1.2.0")
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc
}

func dig(t *testing.T, doc map[string]any, keys ...string) any {
	t.Helper()
	var cur any = doc
	for _, key := range keys {
		m, ok := cur.(map[string]any)
		require.Truef(t, ok, "%q is not an object", key)
		cur, ok = m[key]
		require.Truef(t, ok, "missing key %q", key)
	}
	return cur
}

func TestMarshal_ValidatesForEveryFixture(t *testing.T) {
	fixtures := []string{
		testsupport.FixtureTask,
		testsupport.FixtureUserProject,
		testsupport.FixtureManyToOne,
		testsupport.FixtureGallery,
		testsupport.FixtureFull,
	}
	for _, fixture := range fixtures {
		t.Run(fixture, func(t *testing.T) {
			data, err := apidoc.Marshal(build(t, fixture), "")
			require.NoError(t, err)
			_, err = format.APIDocument(data)
			require.NoError(t, err)
		})
	}
}

func TestBuild_PathsFollowEndpoints(t *testing.T) {
	app := build(t, testsupport.FixtureFull)
	doc := decode(t, app)

	paths, ok := doc["paths"].(map[string]any)
	require.True(t, ok)

	for _, ep := range app.Endpoints() {
		item, ok := paths[ep.Path].(map[string]any)
		require.Truef(t, ok, "path %s missing", ep.Path)
		op, ok := item[strings.ToLower(ep.Method)].(map[string]any)
		require.Truef(t, ok, "%s %s missing", ep.Method, ep.Path)
		require.Equal(t, ep.OperationID, op["operationId"])
	}

	link := dig(t, doc, "paths", "/api/tasks/{id}/tags/{targetId}", "put", "parameters").([]any)
	var names []string
	for _, p := range link {
		names = append(names, p.(map[string]any)["name"].(string))
	}
	if diff := cmp.Diff([]string{"id", "targetId"}, names); diff != "" {
		t.Fatalf("link parameters mismatch (-want +got):\n%s", diff)
	}

	upload := dig(t, doc, "paths", "/api/tasks/{id}/attachment", "post")
	_ = dig(t, upload.(map[string]any), "requestBody", "content", "multipart/form-data")
	_ = dig(t, upload.(map[string]any), "responses", "413")
}

func TestBuild_FieldConstraints(t *testing.T) {
	doc := decode(t, build(t, testsupport.FixtureFull))

	require.Equal(t, "1.2.0", dig(t, doc, "info", "version"))
	require.Equal(t, "Projects, tasks, tags and people.", dig(t, doc, "info", "description"))

	create := dig(t, doc, "components", "schemas", "TaskCreate").(map[string]any)
	props := create["properties"].(map[string]any)

	status := props["status"].(map[string]any)
	require.Equal(t, []any{"OPEN", "IN_PROGRESS", "COMPLETED"}, status["enum"])

	priority := props["priority"].(map[string]any)
	require.Equal(t, true, priority["exclusiveMinimum"])
	require.EqualValues(t, 0, priority["minimum"])
	require.EqualValues(t, 5, priority["maximum"])
	require.Equal(t, true, priority["nullable"])

	title := props["title"].(map[string]any)
	require.EqualValues(t, 200, title["maxLength"])

	require.NotContains(t, props, "id")
	require.NotContains(t, props, "attachment")
	require.ElementsMatch(t, []any{"title", "status"}, create["required"])

	budget := dig(t, doc, "components", "schemas", "ProjectCreate", "properties", "budget").(map[string]any)
	require.EqualValues(t, 0.5, budget["multipleOf"])

	attachment := dig(t, doc, "components", "schemas", "TaskRead", "properties", "attachment").(map[string]any)
	require.Equal(t, true, attachment["nullable"])
}

func TestBuild_EntityWithoutIdentity(t *testing.T) {
	built, err := view.Build(testsupport.MustParse(t, `{"name": "log", "entities": [{"name": "Entry", "fields": [{"name": "line", "type": "Text"}]}]}`))
	require.NoError(t, err)

	doc := apidoc.Build(built, "")
	require.Equal(t, apidoc.DefaultAPIVersion, doc.Info.Version)
	require.Equal(t, 1, doc.Paths.Len())

	item := doc.Paths.Value("/api/entries")
	require.NotNil(t, item)
	require.NotNil(t, item.Get)
	require.NotNil(t, item.Post)
	require.Nil(t, item.Delete, "rows without an identity cannot be addressed")
}

func TestBuild_TypedDocument(t *testing.T) {
	doc := apidoc.Build(build(t, testsupport.FixtureFull), "2.0.0")
	require.Equal(t, apidoc.Version, doc.OpenAPI)

	list := doc.Paths.Value("/api/tasks").Get
	require.NotNil(t, list)
	require.NotNil(t, list.Responses.Status(200))
	require.NotNil(t, list.Responses.Status(500))
	require.Nil(t, list.Responses.Default(), "only explicit statuses are listed")

	limit := list.Parameters.GetByInAndName("query", "limit")
	require.NotNil(t, limit)
	require.EqualValues(t, 1000, *limit.Schema.Value.Max)

	read := doc.Components.Schemas["TaskRead"].Value
	require.True(t, read.Properties["id"].Value.ReadOnly)
	require.False(t, *read.AdditionalProperties.Has)
	require.Equal(t, "#/components/schemas/FileInfo", read.Properties["attachment"].Value.AllOf[0].Ref)

	var names []string
	for _, tag := range doc.Tags {
		names = append(names, tag.Name)
	}
	require.Equal(t, []string{"User", "Project", "Task", "Tag"}, names)
}

func TestBuild_EmptyApplication(t *testing.T) {
	built, err := view.Build(testsupport.MustParse(t, `{"name": "empty", "entities": []}`))
	require.NoError(t, err)

	doc := apidoc.Build(built, "")
	require.Zero(t, doc.Paths.Len())
	require.Empty(t, doc.Tags)

	data, err := apidoc.Marshal(built, "")
	require.NoError(t, err)
	_, err = format.APIDocument(data)
	require.NoError(t, err)
}
