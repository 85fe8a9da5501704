// Package schema defines the entity type descriptors consumed by the
// registry, the materializer and the eager resolver.
//
// A Type describes one schema-backed record type: its table, its ordered
// column set and its primary key. All identifiers are declared in
// application casing; translation to storage casing happens at the SQL
// boundary through a naming.Mapper.
package schema

import (
	"fmt"

	"github.com/go-openapi/inflect"
	"github.com/google/uuid"
)

// ColumnType is the storage kind of a column.
type ColumnType int

// Column types supported by the DDL generator.
const (
	TypeInt ColumnType = iota
	TypeString
	TypeFloat
	TypeBool
	TypeTime
	TypeUUID
)

// String returns the column type name.
func (t ColumnType) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeString:
		return "string"
	case TypeFloat:
		return "float"
	case TypeBool:
		return "bool"
	case TypeTime:
		return "time"
	case TypeUUID:
		return "uuid"
	default:
		return fmt.Sprintf("invalid(%d)", t)
	}
}

// Column describes a single column in application casing.
type Column struct {
	Name     string
	Type     ColumnType
	Nullable bool
}

// Type describes an entity type. Types are built once at process start and
// treated as immutable afterwards.
type Type struct {
	// Name is the entity type name, e.g. "Person".
	Name string
	// Table is the backing table name. Empty means the inflected default
	// (see DefaultTable).
	Table string
	// ID is the primary key column. Empty means "id".
	ID string
	// Columns is the ordered column set, including the primary key.
	Columns []Column
	// NewID, when set, generates primary key values on the client instead
	// of relying on the backend's generated keys. See UUIDGenerator.
	NewID func() any
}

// UUIDGenerator generates string UUID primary keys on the client.
var UUIDGenerator = func() any { return uuid.New().String() }

// DefaultTable returns the table name used when Type.Table is empty:
// the underscored, pluralized form of the type name ("PersonMovie"
// becomes "person_movies").
func DefaultTable(name string) string {
	return inflect.Tableize(name)
}

// TableName returns the declared or default table name.
func (t *Type) TableName() string {
	if t.Table != "" {
		return t.Table
	}
	return DefaultTable(t.Name)
}

// IDColumn returns the declared or default primary key column.
func (t *Type) IDColumn() string {
	if t.ID != "" {
		return t.ID
	}
	return "id"
}

// HasColumn reports whether the type declares the given column.
func (t *Type) HasColumn(name string) bool {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return true
		}
	}
	return false
}

// ColumnNames returns the ordered column names.
func (t *Type) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i := range t.Columns {
		names[i] = t.Columns[i].Name
	}
	return names
}
