package mixin_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/kelo/contrib/mixin"
	"github.com/syssam/kelo/schema"
)

func TestApply(t *testing.T) {
	t.Parallel()
	typ := mixin.Apply(&schema.Type{
		Name: "Person",
		Columns: []schema.Column{
			{Name: "firstName", Type: schema.TypeString},
		},
	}, mixin.UUIDKey{}, mixin.Time{}, mixin.SoftDelete{})

	assert.Equal(t, []string{"id", "firstName", "createdAt", "updatedAt", "deletedAt"}, typ.ColumnNames())
	assert.True(t, typ.Columns[4].Nullable)
	require.NotNil(t, typ.NewID)
	assert.IsType(t, "", typ.NewID())
}

func TestUUIDKeyKeepsDeclaredColumn(t *testing.T) {
	t.Parallel()
	typ := mixin.Apply(&schema.Type{
		Name: "Tag",
		Columns: []schema.Column{
			{Name: "id", Type: schema.TypeUUID},
			{Name: "label", Type: schema.TypeString},
		},
	}, mixin.UUIDKey{})

	assert.Equal(t, []string{"id", "label"}, typ.ColumnNames())
	assert.NotNil(t, typ.NewID)
}

func TestTenantID(t *testing.T) {
	t.Parallel()
	typ := mixin.Apply(&schema.Type{
		Name: "Note",
		Columns: []schema.Column{
			{Name: "id", Type: schema.TypeInt},
		},
	}, mixin.TenantID{})

	assert.Equal(t, []string{"id", "tenantId"}, typ.ColumnNames())
	assert.Equal(t, schema.TypeString, typ.Columns[1].Type)
}
