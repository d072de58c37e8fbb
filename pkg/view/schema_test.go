package view_test

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/goliatone/go-crudgen/pkg/testsupport"
	"github.com/goliatone/go-crudgen/pkg/view"
)

// createSchema runs the table statements of app against an in-memory
// database, entities first and join tables after.
func createSchema(t *testing.T, app *view.AppView) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	require.NoError(t, err)
	for _, entity := range app.Entities {
		_, err := db.Exec(entity.CreateTable)
		require.NoErrorf(t, err, "entity %s:\n%s", entity.Name, entity.CreateTable)
	}
	for _, join := range app.JoinTables {
		_, err := db.Exec(join.CreateTable)
		require.NoErrorf(t, err, "join table %s:\n%s", join.Table, join.CreateTable)
	}
	return db
}

func TestCreateTable_ExecutesOnSQLite(t *testing.T) {
	fixtures := []string{
		testsupport.FixtureTask,
		testsupport.FixtureUserProject,
		testsupport.FixtureGallery,
		testsupport.FixtureFull,
	}
	for _, fixture := range fixtures {
		t.Run(fixture, func(t *testing.T) {
			createSchema(t, mustBuild(t, fixture))
		})
	}
}

func TestCreateTable_EnforcesDeclaredChecks(t *testing.T) {
	app := mustBuild(t, testsupport.FixtureFull)
	db := createSchema(t, app)
	task, _ := app.Entity("Task")

	insert := "INSERT INTO " + task.Table + " (title, status) VALUES (?, ?)"
	_, err := db.Exec(insert, "write docs", "OPEN")
	require.NoError(t, err)

	_, err = db.Exec(insert, "write docs", "LATER")
	require.Error(t, err, "enum check rejects unknown values")

	_, err = db.Exec(insert, nil, "OPEN")
	require.Error(t, err, "not null titles")
}

func TestCreateTable_KeywordIdentifiers(t *testing.T) {
	app, err := view.Build(testsupport.MustParse(t, `{
		"name": "ledger",
		"entities": [
			{"name": "Value", "fields": [{"name": "id", "type": "Id"}, {"name": "group", "type": "String"}]},
			{"name": "Row", "fields": [{"name": "id", "type": "Id"}]}
		],
		"relations": [{"name": "ValueRows", "type": "ManyToMany", "from": "Value", "to": "Row", "field_name": "rows", "backref_field_name": "values"}]
	}`))
	require.NoError(t, err)

	value, _ := app.Entity("Value")
	require.Equal(t, "[values]", value.Table)

	db := createSchema(t, app)
	_, err = db.Exec("INSERT INTO " + value.Table + " ([group]) VALUES ('a')")
	require.NoError(t, err)
}

func TestCreateTable_EntityWithoutFields(t *testing.T) {
	built, err := view.Build(testsupport.MustParse(t, `{"name": "marks", "entities": [{"name": "Mark", "fields": []}]}`))
	require.NoError(t, err)
	db := createSchema(t, built)
	mark, _ := built.Entity("Mark")

	_, err = db.Exec("INSERT INTO " + mark.Table + " DEFAULT VALUES")
	require.NoError(t, err)

	var rowid int64
	require.NoError(t, db.QueryRow("SELECT "+mark.SelectList+" FROM "+mark.Table).Scan(&rowid))
	require.EqualValues(t, 1, rowid)
}
