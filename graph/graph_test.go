package graph_test

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/syssam/kelo"
	"github.com/syssam/kelo/dialect"
	"github.com/syssam/kelo/dialect/sql"
	"github.com/syssam/kelo/schema"
	"github.com/syssam/kelo/schema/relation"
)

// testTypes declares the Person/Animal/Movie entity types used across
// the materializer and resolver tests.
func testTypes() []*schema.Type {
	return []*schema.Type{
		{
			Name:  "Person",
			Table: "persons",
			Columns: []schema.Column{
				{Name: "id", Type: schema.TypeInt},
				{Name: "firstName", Type: schema.TypeString, Nullable: true},
				{Name: "parentId", Type: schema.TypeInt, Nullable: true},
			},
		},
		{
			Name:  "Animal",
			Table: "animals",
			Columns: []schema.Column{
				{Name: "id", Type: schema.TypeInt},
				{Name: "animalName", Type: schema.TypeString, Nullable: true},
				{Name: "ownerId", Type: schema.TypeInt, Nullable: true},
			},
		},
		{
			Name:  "Movie",
			Table: "movies",
			Columns: []schema.Column{
				{Name: "id", Type: schema.TypeInt},
				{Name: "name", Type: schema.TypeString, Nullable: true},
			},
		},
		{
			Name:  "PersonMovie",
			Table: "persons_movies",
			Columns: []schema.Column{
				{Name: "id", Type: schema.TypeInt},
				{Name: "personId", Type: schema.TypeInt},
				{Name: "movieId", Type: schema.TypeInt},
			},
		},
	}
}

// testRegistry wires the test types into a registry: a self-referential
// parent relation, a has-many pets relation and a many-to-many movies
// relation through the persons_movies table.
func testRegistry() *kelo.Registry {
	return kelo.NewRegistry().
		Register(testTypes()...).
		DeclareRelations("Person",
			relation.BelongsTo("parent", "Person").From("parentId").To("id"),
			relation.HasMany("pets", "Animal").From("id").To("ownerId"),
			relation.ManyToMany("movies", "Movie").
				From("id").
				Through("persons_movies", "personId", "movieId").
				To("id"),
		)
}

func mockDriver(t *testing.T) (*sql.Driver, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sql.OpenDB(dialect.SQLite, db), mock
}
