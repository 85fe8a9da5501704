// Package sql provides the database/sql driver implementation of
// dialect.Driver and the statement builders used by the engine.
//
// # Builders
//
// Statements are built through a DialectBuilder, which fixes the dialect
// and, optionally, an identifier mapper. The mapper rewrites every
// identifier leaf token at render time, which is how application-cased
// identifiers become storage-cased without touching values:
//
//	d := sql.Dialect(dialect.SQLite).MapIdents(naming.ToStorage)
//	query, args := d.Select("firstName").
//		From("persons").
//		Where(sql.EQ("firstName", "Seppo")).
//		Query()
//	// SELECT "first_name" FROM "persons" WHERE "first_name" = ?
//
// Two DialectBuilders with different mappers are fully independent;
// configuring one never affects statements built through the other.
//
// # Predicates
//
// Predicates compose as trees (EQ, In, And, Or, Not) and render inside the
// enclosing statement. The Field* functions and the generic StringField and
// IntField types wrap them as func(*Selector) modifiers.
package sql
