package sql_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syssam/kelo/dialect"
	"github.com/syssam/kelo/dialect/sql"
	"github.com/syssam/kelo/naming"
)

func TestSelector(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		build     func() (string, []any)
		wantQuery string
		wantArgs  []any
	}{
		{
			name: "select_all",
			build: func() (string, []any) {
				return sql.Dialect(dialect.SQLite).Select().From("persons").Query()
			},
			wantQuery: `SELECT * FROM "persons"`,
		},
		{
			name: "select_columns_where",
			build: func() (string, []any) {
				return sql.Dialect(dialect.SQLite).
					Select("id", "name").
					From("persons").
					Where(sql.EQ("name", "Seppo")).
					Query()
			},
			wantQuery: `SELECT "id", "name" FROM "persons" WHERE "name" = ?`,
			wantArgs:  []any{"Seppo"},
		},
		{
			name: "mapped_identifiers",
			build: func() (string, []any) {
				return sql.Dialect(dialect.SQLite).
					MapIdents(naming.ToStorage).
					Select("firstName").
					From("persons").
					Where(sql.EQ("firstName", "Seppo")).
					OrderBy(sql.Asc("animalName")).
					Query()
			},
			wantQuery: `SELECT "first_name" FROM "persons" WHERE "first_name" = ? ORDER BY "animal_name"`,
			wantArgs:  []any{"Seppo"},
		},
		{
			name: "mapped_values_untouched",
			build: func() (string, []any) {
				return sql.Dialect(dialect.SQLite).
					MapIdents(naming.ToStorage).
					Select().
					From("persons").
					Where(sql.EQ("firstName", "someValue")).
					Query()
			},
			wantQuery: `SELECT * FROM "persons" WHERE "first_name" = ?`,
			wantArgs:  []any{"someValue"},
		},
		{
			name: "left_join_with_aliases",
			build: func() (string, []any) {
				return sql.Dialect(dialect.SQLite).
					MapIdents(naming.ToStorage).
					Select("t0.id", "t1.firstName").
					From("persons").
					As("t0").
					LeftJoin("persons", "t1", sql.ColumnsEQ("t1.id", "t0.parentId")).
					Query()
			},
			wantQuery: `SELECT "t0"."id", "t1"."first_name" FROM "persons" AS "t0" LEFT JOIN "persons" AS "t1" ON "t1"."id" = "t0"."parent_id"`,
		},
		{
			name: "aliased_columns",
			build: func() (string, []any) {
				s := sql.Dialect(dialect.SQLite).MapIdents(naming.ToStorage).Select().From("animals")
				s.AppendSelectAs("t1.animalName", "t1__animal_name")
				return s.Query()
			},
			wantQuery: `SELECT "t1"."animal_name" AS "t1__animal_name" FROM "animals"`,
		},
		{
			name: "in_predicate",
			build: func() (string, []any) {
				return sql.Dialect(dialect.SQLite).
					Select().
					From("animals").
					Where(sql.In("ownerId", 1, 2, 3)).
					Query()
			},
			wantQuery: `SELECT * FROM "animals" WHERE "ownerId" IN (?, ?, ?)`,
			wantArgs:  []any{1, 2, 3},
		},
		{
			name: "empty_in_matches_nothing",
			build: func() (string, []any) {
				return sql.Dialect(dialect.SQLite).
					Select().
					From("animals").
					Where(sql.In("ownerId")).
					Query()
			},
			wantQuery: `SELECT * FROM "animals" WHERE 1 = 0`,
		},
		{
			name: "and_or_not",
			build: func() (string, []any) {
				return sql.Dialect(dialect.SQLite).
					Select().
					From("persons").
					Where(sql.Or(
						sql.And(sql.EQ("a", 1), sql.NEQ("b", 2)),
						sql.Not(sql.IsNull("c")),
					)).
					Query()
			},
			wantQuery: `SELECT * FROM "persons" WHERE (("a" = ?) AND ("b" <> ?)) OR (NOT ("c" IS NULL))`,
			wantArgs:  []any{1, 2},
		},
		{
			name: "chained_where_is_and",
			build: func() (string, []any) {
				return sql.Dialect(dialect.SQLite).
					Select().
					From("persons").
					Where(sql.EQ("a", 1)).
					Where(sql.EQ("b", 2)).
					Query()
			},
			wantQuery: `SELECT * FROM "persons" WHERE ("a" = ?) AND ("b" = ?)`,
			wantArgs:  []any{1, 2},
		},
		{
			name: "order_desc_limit_offset",
			build: func() (string, []any) {
				return sql.Dialect(dialect.SQLite).
					Select().
					From("persons").
					OrderBy(sql.Desc("id"), sql.Asc("name")).
					Limit(10).
					Offset(5).
					Query()
			},
			wantQuery: `SELECT * FROM "persons" ORDER BY "id" DESC, "name" LIMIT 10 OFFSET 5`,
		},
		{
			name: "postgres_placeholders",
			build: func() (string, []any) {
				return sql.Dialect(dialect.Postgres).
					Select().
					From("persons").
					Where(sql.And(sql.EQ("a", 1), sql.In("b", "x", "y"))).
					Query()
			},
			wantQuery: `SELECT * FROM "persons" WHERE ("a" = $1) AND ("b" IN ($2, $3))`,
			wantArgs:  []any{1, "x", "y"},
		},
		{
			name: "mysql_quoting",
			build: func() (string, []any) {
				return sql.Dialect(dialect.MySQL).
					Select("id").
					From("persons").
					Where(sql.EQ("id", 7)).
					Query()
			},
			wantQuery: "SELECT `id` FROM `persons` WHERE `id` = ?",
			wantArgs:  []any{7},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			query, args := tt.build()
			assert.Equal(t, tt.wantQuery, query)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestSelectorNoMapper(t *testing.T) {
	t.Parallel()

	query, _ := sql.Dialect(dialect.SQLite).Select("firstName").From("persons").Query()
	assert.Equal(t, `SELECT "firstName" FROM "persons"`, query)
}

func TestInsertBuilder(t *testing.T) {
	t.Parallel()

	t.Run("sqlite", func(t *testing.T) {
		t.Parallel()
		query, args := sql.Dialect(dialect.SQLite).
			MapIdents(naming.ToStorage).
			Insert("persons").
			Columns("firstName", "parentId").
			Values("Seppo", 3).
			Query()
		assert.Equal(t, `INSERT INTO "persons" ("first_name", "parent_id") VALUES (?, ?)`, query)
		assert.Equal(t, []any{"Seppo", 3}, args)
	})

	t.Run("postgres_returning", func(t *testing.T) {
		t.Parallel()
		query, args := sql.Dialect(dialect.Postgres).
			MapIdents(naming.ToStorage).
			Insert("persons").
			Set("firstName", "Seppo").
			Returning("id").
			Query()
		assert.Equal(t, `INSERT INTO "persons" ("first_name") VALUES ($1) RETURNING "id"`, query)
		assert.Equal(t, []any{"Seppo"}, args)
	})
}

func TestTableBuilder(t *testing.T) {
	t.Parallel()

	query, args := sql.Dialect(dialect.SQLite).
		MapIdents(naming.ToStorage).
		CreateTable("persons").
		IfNotExists().
		Columns(
			sql.Column("id").Type("integer").Attr("PRIMARY KEY AUTOINCREMENT"),
			sql.Column("firstName").Type("text").Attr("NULL"),
			sql.Column("parentId").Type("integer").Attr("NULL"),
		).
		Query()
	assert.Equal(t,
		`CREATE TABLE IF NOT EXISTS "persons" ("id" integer PRIMARY KEY AUTOINCREMENT, "first_name" text NULL, "parent_id" integer NULL)`,
		query,
	)
	assert.Empty(t, args)
}

func TestIndependentMappers(t *testing.T) {
	t.Parallel()

	mapped := sql.Dialect(dialect.SQLite).MapIdents(naming.ToStorage)
	plain := sql.Dialect(dialect.SQLite)

	q1, _ := mapped.Select("firstName").From("persons").Query()
	q2, _ := plain.Select("firstName").From("persons").Query()
	assert.Equal(t, `SELECT "first_name" FROM "persons"`, q1)
	assert.Equal(t, `SELECT "firstName" FROM "persons"`, q2)
}

func TestFieldPredicates(t *testing.T) {
	t.Parallel()

	s := sql.Dialect(dialect.SQLite).Select().From("persons")
	sql.FieldEQ("name", "Seppo")(s)
	sql.FieldIn("id", 1, 2)(s)
	query, args := s.Query()
	assert.Equal(t, `SELECT * FROM "persons" WHERE ("name" = ?) AND ("id" IN (?, ?))`, query)
	assert.Equal(t, []any{"Seppo", 1, 2}, args)
}

type personPredicate func(*sql.Selector)

func TestGenericFields(t *testing.T) {
	t.Parallel()

	var (
		name = sql.StringField[personPredicate]("name")
		id   = sql.IntField[personPredicate]("id")
	)
	assert.Equal(t, "name", name.Name())

	s := sql.Dialect(dialect.SQLite).Select().From("persons")
	name.EQ("Seppo")(s)
	id.GT(100)(s)
	name.Desc()(s)
	query, args := s.Query()
	assert.Equal(t, `SELECT * FROM "persons" WHERE ("name" = ?) AND ("id" > ?) ORDER BY "name" DESC`, query)
	assert.Equal(t, []any{"Seppo", 100}, args)
}

func TestQualifiedPredicate(t *testing.T) {
	t.Parallel()

	s := sql.Dialect(dialect.SQLite).
		MapIdents(naming.ToStorage).
		Select("t0.firstName").
		From("persons").As("t0").
		Where(sql.Qualified("t0", sql.And(
			sql.EQ("firstName", "Seppo"),
			sql.NotNull("parentId"),
		)))
	query, args := s.Query()
	assert.Equal(t,
		`SELECT "t0"."first_name" FROM "persons" AS "t0" WHERE ("t0"."first_name" = ?) AND ("t0"."parent_id" IS NOT NULL)`,
		query)
	assert.Equal(t, []any{"Seppo"}, args)

	// Already qualified identifiers are left alone.
	s = sql.Dialect(dialect.SQLite).Select().From("a").
		Where(sql.Qualified("t1", sql.ColumnsEQ("t1.x", "y")))
	query, _ = s.Query()
	assert.Equal(t, `SELECT * FROM "a" WHERE "t1"."x" = "t1"."y"`, query)
}

func TestSelectorP(t *testing.T) {
	t.Parallel()

	s := sql.Dialect(dialect.SQLite).Select().From("persons")
	assert.Nil(t, s.P())
	s.Where(sql.EQ("id", 1)).Where(sql.EQ("name", "x"))

	outer := sql.Dialect(dialect.SQLite).Select().From("persons").As("t0").
		Where(sql.Qualified("t0", s.P()))
	query, args := outer.Query()
	assert.Equal(t, `SELECT * FROM "persons" AS "t0" WHERE ("t0"."id" = ?) AND ("t0"."name" = ?)`, query)
	assert.Equal(t, []any{1, "x"}, args)
}
