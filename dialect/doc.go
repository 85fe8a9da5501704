// Package dialect provides the database abstraction consumed by the kelo
// engine: the Driver, Tx and ExecQuerier interfaces and the dialect name
// constants.
//
// # Supported Dialects
//
//	dialect.Postgres = "postgres"
//	dialect.MySQL    = "mysql"
//	dialect.SQLite   = "sqlite"
//
// # Driver Interface
//
// The Driver interface is the storage backend contract of the engine. It is
// consumed as an opaque service ("execute statement", "execute query") and
// is assumed to be casing-agnostic: everything that crosses it is already
// in storage casing.
//
//	type Driver interface {
//	    Exec(ctx context.Context, query string, args, v any) error
//	    Query(ctx context.Context, query string, args, v any) error
//	    Tx(ctx context.Context) (Tx, error)
//	    Close() error
//	    Dialect() string
//	}
//
// # Usage
//
//	import (
//	    "github.com/syssam/kelo/dialect"
//	    "github.com/syssam/kelo/dialect/sql"
//	)
//
//	drv, err := sql.Open(dialect.Postgres, "postgres://...")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer drv.Close()
//
// # Sub-packages
//
//   - dialect/sql: SQL builders and the database/sql driver implementation
//   - dialect/sql/schema: schema creation through the identifier mapper
package dialect
