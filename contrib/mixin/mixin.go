// Package mixin provides reusable column sets for entity type
// declarations.
//
// Mixins are optional starting points; applications are encouraged to
// define their own:
//
//	person := mixin.Apply(&schema.Type{
//	    Name: "Person",
//	    Columns: []schema.Column{
//	        {Name: "firstName", Type: schema.TypeString},
//	    },
//	}, mixin.UUIDKey{}, mixin.Time{})
package mixin

import (
	"github.com/syssam/kelo/schema"
)

// Mixin amends a type declaration in place.
type Mixin interface {
	Mutate(*schema.Type)
}

// Apply runs the mixins over the type and returns it.
func Apply(t *schema.Type, mixins ...Mixin) *schema.Type {
	for _, m := range mixins {
		m.Mutate(t)
	}
	return t
}

// CreateTime adds a createdAt time column.
type CreateTime struct{}

func (CreateTime) Mutate(t *schema.Type) {
	t.Columns = append(t.Columns, schema.Column{Name: "createdAt", Type: schema.TypeTime})
}

// UpdateTime adds an updatedAt time column.
type UpdateTime struct{}

func (UpdateTime) Mutate(t *schema.Type) {
	t.Columns = append(t.Columns, schema.Column{Name: "updatedAt", Type: schema.TypeTime})
}

// Time combines CreateTime and UpdateTime.
type Time struct{}

func (Time) Mutate(t *schema.Type) {
	CreateTime{}.Mutate(t)
	UpdateTime{}.Mutate(t)
}

// UUIDKey prepends a UUID primary key column and installs client-side
// key generation.
type UUIDKey struct{}

func (UUIDKey) Mutate(t *schema.Type) {
	id := t.IDColumn()
	if !t.HasColumn(id) {
		t.Columns = append([]schema.Column{{Name: id, Type: schema.TypeUUID}}, t.Columns...)
	}
	t.NewID = schema.UUIDGenerator
}

// SoftDelete adds a nullable deletedAt column. Rows are expected to be
// marked rather than removed; filtering them is left to query
// predicates.
type SoftDelete struct{}

func (SoftDelete) Mutate(t *schema.Type) {
	t.Columns = append(t.Columns, schema.Column{Name: "deletedAt", Type: schema.TypeTime, Nullable: true})
}

// TenantID adds a tenantId column for multi-tenant tables.
type TenantID struct{}

func (TenantID) Mutate(t *schema.Type) {
	t.Columns = append(t.Columns, schema.Column{Name: "tenantId", Type: schema.TypeString})
}
