package graph_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/kelo"
	"github.com/syssam/kelo/graph"
	"github.com/syssam/kelo/naming"
	"github.com/syssam/kelo/schema"
)

func TestInsertGraphDependencyOrder(t *testing.T) {
	t.Parallel()
	drv, mock := mockDriver(t)

	// Belongs-to ancestors bottom-up, then the root, then its children.
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "persons" ("first_name") VALUES (?)`)).
		WithArgs("Matti").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "persons" ("first_name", "parent_id") VALUES (?, ?)`)).
		WithArgs("Teppo", int64(1)).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "persons" ("first_name", "parent_id") VALUES (?, ?)`)).
		WithArgs("Seppo", int64(2)).
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "animals" ("animal_name", "owner_id") VALUES (?, ?)`)).
		WithArgs("Hurtta", int64(3)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "animals" ("animal_name", "owner_id") VALUES (?, ?)`)).
		WithArgs("Katti", int64(3)).
		WillReturnResult(sqlmock.NewResult(2, 1))

	m := graph.NewMaterializer(testRegistry(), drv, graph.WithMapper(naming.SnakeCase()))
	root, err := m.InsertGraph(context.Background(), "Person", map[string]any{
		"firstName": "Seppo",
		"parent": map[string]any{
			"firstName": "Teppo",
			"parent":    map[string]any{"firstName": "Matti"},
		},
		"pets": []any{
			map[string]any{"animalName": "Hurtta"},
			map[string]any{"animalName": "Katti"},
		},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, "Seppo", root["firstName"])
	assert.Equal(t, int64(3), root["id"])
	parent := root["parent"].(graph.Instance)
	assert.Equal(t, "Teppo", parent["firstName"])
	grandparent := parent["parent"].(graph.Instance)
	assert.Equal(t, "Matti", grandparent["firstName"])
	pets := root["pets"].([]graph.Instance)
	require.Len(t, pets, 2)
	assert.Equal(t, "Hurtta", pets[0]["animalName"])
	assert.Equal(t, int64(3), pets[0]["ownerId"])
	assert.Equal(t, "Katti", pets[1]["animalName"])
}

func TestInsertGraphManyToMany(t *testing.T) {
	t.Parallel()
	drv, mock := mockDriver(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "persons" ("first_name") VALUES (?)`)).
		WithArgs("Seppo").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "movies" ("name") VALUES (?)`)).
		WithArgs("Kovat kundit").
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "persons_movies" ("person_id", "movie_id") VALUES (?, ?)`)).
		WithArgs(int64(1), int64(5)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	m := graph.NewMaterializer(testRegistry(), drv, graph.WithMapper(naming.SnakeCase()))
	root, err := m.InsertGraph(context.Background(), "Person", map[string]any{
		"firstName": "Seppo",
		"movies": []any{
			map[string]any{"name": "Kovat kundit"},
		},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	movies := root["movies"].([]graph.Instance)
	require.Len(t, movies, 1)
	assert.Equal(t, int64(5), movies[0]["id"])
}

func TestInsertGraphClientGeneratedKey(t *testing.T) {
	t.Parallel()
	drv, mock := mockDriver(t)

	registry := kelo.NewRegistry().Register(&schema.Type{
		Name:  "Tag",
		Table: "tags",
		Columns: []schema.Column{
			{Name: "id", Type: schema.TypeUUID},
			{Name: "label", Type: schema.TypeString},
		},
		NewID: func() any { return "tag-1" },
	})
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "tags" ("id", "label") VALUES (?, ?)`)).
		WithArgs("tag-1", "red").
		WillReturnResult(sqlmock.NewResult(0, 1))

	m := graph.NewMaterializer(registry, drv, graph.WithMapper(naming.SnakeCase()))
	inst, err := m.InsertGraph(context.Background(), "Tag", map[string]any{"label": "red"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, "tag-1", inst["id"])
}

func TestInsertGraphUnknownKey(t *testing.T) {
	t.Parallel()
	drv, _ := mockDriver(t)

	m := graph.NewMaterializer(testRegistry(), drv, graph.WithMapper(naming.SnakeCase()))
	_, err := m.InsertGraph(context.Background(), "Person", map[string]any{"fullName": "Seppo"})
	require.Error(t, err)
	assert.True(t, kelo.IsMutationError(err))
	assert.Contains(t, err.Error(), "fullName")
}

func TestInsertGraphConstraintError(t *testing.T) {
	t.Parallel()
	drv, mock := mockDriver(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "persons"`)).
		WillReturnError(assertableConstraintErr{})

	m := graph.NewMaterializer(testRegistry(), drv, graph.WithMapper(naming.SnakeCase()))
	_, err := m.InsertGraph(context.Background(), "Person", map[string]any{"firstName": "Seppo"})
	require.Error(t, err)
	assert.True(t, kelo.IsConstraintError(err))
}

type assertableConstraintErr struct{}

func (assertableConstraintErr) Error() string { return "UNIQUE constraint failed: persons.first_name" }
