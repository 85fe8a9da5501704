// Package schema creates database tables from entity type descriptors.
//
// Table and column identifiers are declared in application casing and pass
// through the configured naming mapper on their way into the DDL, so a
// column declared as "firstName" is created as "first_name" when the snake
// mapper is configured.
package schema

import (
	"context"
	"fmt"

	"github.com/syssam/kelo/dialect"
	"github.com/syssam/kelo/dialect/sql"
	"github.com/syssam/kelo/naming"
	entschema "github.com/syssam/kelo/schema"
)

// Create holds the driver and mapper used for table creation.
type Create struct {
	drv    dialect.Driver
	mapper *naming.Mapper
}

// Option configures table creation.
type Option func(*Create)

// WithMapper sets the identifier mapper. Defaults to the identity.
func WithMapper(m *naming.Mapper) Option {
	return func(c *Create) {
		c.mapper = m
	}
}

// NewCreate returns a table creator for the given driver.
func NewCreate(drv dialect.Driver, opts ...Option) *Create {
	c := &Create{drv: drv}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Tables creates the backing tables of the given types, skipping tables
// that already exist.
func (c *Create) Tables(ctx context.Context, types ...*entschema.Type) error {
	for _, t := range types {
		exists, err := c.TableExist(ctx, t.TableName())
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		query, args := c.tableDDL(t).Query()
		if err := c.drv.Exec(ctx, query, args, nil); err != nil {
			return fmt.Errorf("schema: create table %q: %w", t.TableName(), err)
		}
	}
	return nil
}

// TableExist reports whether the table exists in the connected database.
// The name passes through the identifier mapper before the lookup.
func (c *Create) TableExist(ctx context.Context, name string) (bool, error) {
	name = c.mapper.ToStorage(name)
	var (
		query string
		args  []any
	)
	switch c.drv.Dialect() {
	case dialect.SQLite:
		query = "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?"
		args = []any{name}
	case dialect.Postgres:
		query = "SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = CURRENT_SCHEMA() AND table_name = $1"
		args = []any{name}
	case dialect.MySQL:
		query = "SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = (SELECT DATABASE()) AND table_name = ?"
		args = []any{name}
	default:
		return false, fmt.Errorf("schema: unsupported dialect %q", c.drv.Dialect())
	}
	rows := &sql.Rows{}
	if err := c.drv.Query(ctx, query, args, rows); err != nil {
		return false, err
	}
	defer rows.Close()
	if !rows.Next() {
		return false, rows.Err()
	}
	var n int
	if err := rows.Scan(&n); err != nil {
		return false, err
	}
	return n > 0, rows.Err()
}

func (c *Create) tableDDL(t *entschema.Type) *sql.TableBuilder {
	b := sql.Dialect(c.drv.Dialect()).
		MapIdents(c.mapper.ToStorage).
		CreateTable(t.TableName()).
		IfNotExists()
	id := t.IDColumn()
	for _, col := range t.Columns {
		cb := sql.Column(col.Name).Type(c.columnType(col))
		switch {
		case col.Name == id && t.NewID == nil:
			cb.Attr(c.pkAttr())
		case col.Name == id:
			cb.Attr("PRIMARY KEY")
		case col.Nullable:
			cb.Attr("NULL")
		default:
			cb.Attr("NOT NULL")
		}
		b.Columns(cb)
	}
	return b
}

// columnType maps the abstract column type to the dialect's storage type.
func (c *Create) columnType(col entschema.Column) string {
	switch col.Type {
	case entschema.TypeInt:
		if c.drv.Dialect() == dialect.Postgres {
			return "bigint"
		}
		return "integer"
	case entschema.TypeString:
		if c.drv.Dialect() == dialect.MySQL {
			return "varchar(255)"
		}
		return "text"
	case entschema.TypeFloat:
		return "double precision"
	case entschema.TypeBool:
		return "boolean"
	case entschema.TypeTime:
		return "timestamp"
	case entschema.TypeUUID:
		if c.drv.Dialect() == dialect.Postgres {
			return "uuid"
		}
		return "char(36)"
	default:
		return "text"
	}
}

// pkAttr is the auto-incrementing primary key attribute per dialect.
func (c *Create) pkAttr() string {
	switch c.drv.Dialect() {
	case dialect.SQLite:
		return "PRIMARY KEY AUTOINCREMENT"
	case dialect.MySQL:
		return "PRIMARY KEY AUTO_INCREMENT"
	case dialect.Postgres:
		return "GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY"
	default:
		return "PRIMARY KEY"
	}
}
