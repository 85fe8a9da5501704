package schema_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/kelo/dialect"
	"github.com/syssam/kelo/dialect/sql"
	"github.com/syssam/kelo/dialect/sql/schema"
	"github.com/syssam/kelo/naming"
	entschema "github.com/syssam/kelo/schema"
)

var personType = &entschema.Type{
	Name:  "Person",
	Table: "persons",
	Columns: []entschema.Column{
		{Name: "id", Type: entschema.TypeInt},
		{Name: "firstName", Type: entschema.TypeString, Nullable: true},
		{Name: "parentId", Type: entschema.TypeInt, Nullable: true},
	},
}

func TestCreateTables(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	drv := sql.OpenDB(dialect.SQLite, db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM sqlite_master")).
		WithArgs("persons").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta(
		`CREATE TABLE IF NOT EXISTS "persons" ("id" integer PRIMARY KEY AUTOINCREMENT, "first_name" text NULL, "parent_id" integer NULL)`,
	)).WillReturnResult(sqlmock.NewResult(0, 0))

	c := schema.NewCreate(drv, schema.WithMapper(naming.SnakeCase()))
	require.NoError(t, c.Tables(context.Background(), personType))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTablesSkipsExisting(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	drv := sql.OpenDB(dialect.SQLite, db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM sqlite_master")).
		WithArgs("persons").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	c := schema.NewCreate(drv, schema.WithMapper(naming.SnakeCase()))
	require.NoError(t, c.Tables(context.Background(), personType))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTableExistMapsName(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	drv := sql.OpenDB(dialect.SQLite, db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM sqlite_master")).
		WithArgs("person_movies").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	c := schema.NewCreate(drv, schema.WithMapper(naming.SnakeCase()))
	exists, err := c.TableExist(context.Background(), "personMovies")
	require.NoError(t, err)
	assert.True(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUnsupportedDialect(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	drv := sql.OpenDB("oracle", db)

	c := schema.NewCreate(drv)
	_, err = c.TableExist(context.Background(), "persons")
	assert.ErrorContains(t, err, "unsupported dialect")
}
