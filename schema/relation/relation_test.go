package relation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/kelo/schema/relation"
)

func TestBuilders(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		build    func() *relation.Descriptor
		validate func(t *testing.T, desc *relation.Descriptor)
	}{
		{
			name: "belongs_to",
			build: func() *relation.Descriptor {
				return relation.BelongsTo("parent", "Person").From("parentId").To("id").Descriptor()
			},
			validate: func(t *testing.T, desc *relation.Descriptor) {
				assert.Equal(t, "parent", desc.Name)
				assert.Equal(t, relation.KindBelongsTo, desc.Kind)
				assert.Equal(t, "Person", desc.Target)
				assert.Equal(t, "parentId", desc.FromColumn)
				assert.Equal(t, "id", desc.ToColumn)
				assert.Nil(t, desc.Through)
				assert.True(t, desc.Kind.Single())
			},
		},
		{
			name: "has_many",
			build: func() *relation.Descriptor {
				return relation.HasMany("pets", "Animal").From("id").To("ownerId").Descriptor()
			},
			validate: func(t *testing.T, desc *relation.Descriptor) {
				assert.Equal(t, relation.KindHasMany, desc.Kind)
				assert.Equal(t, "Animal", desc.Target)
				assert.Equal(t, "id", desc.FromColumn)
				assert.Equal(t, "ownerId", desc.ToColumn)
				assert.False(t, desc.Kind.Single())
			},
		},
		{
			name: "many_to_many",
			build: func() *relation.Descriptor {
				return relation.ManyToMany("movies", "Movie").
					From("id").
					Through("personsMovies", "personId", "movieId").
					To("id").
					Descriptor()
			},
			validate: func(t *testing.T, desc *relation.Descriptor) {
				assert.Equal(t, relation.KindManyToMany, desc.Kind)
				require.NotNil(t, desc.Through)
				assert.Equal(t, "personsMovies", desc.Through.Table)
				assert.Equal(t, "personId", desc.Through.FromColumn)
				assert.Equal(t, "movieId", desc.Through.ToColumn)
				assert.False(t, desc.Kind.Single())
			},
		},
		{
			name: "self_referential",
			build: func() *relation.Descriptor {
				return relation.HasMany("children", "Person").From("id").To("parentId").Descriptor()
			},
			validate: func(t *testing.T, desc *relation.Descriptor) {
				assert.Equal(t, "Person", desc.Target, "an entity may relate to itself")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tt.validate(t, tt.build())
		})
	}
}

func TestKindString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "BelongsTo", relation.KindBelongsTo.String())
	assert.Equal(t, "HasMany", relation.KindHasMany.String())
	assert.Equal(t, "ManyToMany", relation.KindManyToMany.String())
	assert.Equal(t, "Unknown", relation.Kind(9).String())
}
