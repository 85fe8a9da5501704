package kelo_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syssam/kelo"
)

func TestUnknownRelationError(t *testing.T) {
	t.Parallel()

	err := kelo.NewUnknownRelationError("Person", "movies")
	assert.Equal(t, `kelo: unknown relation "movies" on type "Person"`, err.Error())
	assert.Equal(t, "Person", err.Type())
	assert.Equal(t, "movies", err.Relation())
	assert.True(t, errors.Is(err, kelo.ErrUnknownRelation))
	assert.True(t, kelo.IsUnknownRelation(err))
	assert.True(t, kelo.IsUnknownRelation(fmt.Errorf("wrapped: %w", err)))
	assert.False(t, kelo.IsUnknownRelation(nil))
	assert.False(t, kelo.IsUnknownRelation(errors.New("other")))
}

func TestInvalidJoinError(t *testing.T) {
	t.Parallel()

	err := kelo.NewInvalidJoinError("Person", "pets", "ownerId")
	assert.Contains(t, err.Error(), `"ownerId"`)
	assert.Equal(t, "Person", err.Type())
	assert.Equal(t, "pets", err.Relation())
	assert.Equal(t, "ownerId", err.Column())
	assert.True(t, kelo.IsInvalidJoin(err))
	assert.True(t, kelo.IsInvalidJoin(fmt.Errorf("wrapped: %w", err)))
	assert.False(t, kelo.IsInvalidJoin(nil))
}

func TestNotFoundError(t *testing.T) {
	t.Parallel()

	err := kelo.NewNotFoundError("Person")
	assert.Equal(t, "kelo: Person not found", err.Error())
	assert.Equal(t, "Person", err.Label())
	assert.True(t, kelo.IsNotFound(err))
	assert.True(t, kelo.IsNotFound(fmt.Errorf("wrapped: %w", err)))
	assert.False(t, kelo.IsNotFound(nil))
}

func TestNotSingularError(t *testing.T) {
	t.Parallel()

	err := kelo.NewNotSingularError("parent", 2)
	assert.Equal(t, "kelo: parent not singular (got 2 results, expected 1)", err.Error())
	assert.Equal(t, "parent", err.Label())
	assert.Equal(t, 2, err.Count())
	assert.True(t, kelo.IsNotSingular(err))

	err = kelo.NewNotSingularError("parent", -1)
	assert.Equal(t, "kelo: parent not singular", err.Error())
}

func TestConstraintError(t *testing.T) {
	t.Parallel()

	cause := errors.New("UNIQUE constraint failed")
	err := kelo.NewConstraintError("persons.id", cause)
	assert.Contains(t, err.Error(), "persons.id")
	assert.True(t, kelo.IsConstraintError(err))
	assert.ErrorIs(t, err, cause)
	assert.False(t, kelo.IsConstraintError(errors.New("other")))
}

func TestQueryError(t *testing.T) {
	t.Parallel()

	cause := errors.New("bad column")
	err := kelo.NewQueryError("Person", "parent.parent", cause)
	assert.Equal(t, `kelo: querying Person (path "parent.parent"): bad column`, err.Error())
	assert.True(t, kelo.IsQueryError(err))
	assert.ErrorIs(t, err, cause)

	err = kelo.NewQueryError("Person", "", cause)
	assert.Equal(t, "kelo: querying Person: bad column", err.Error())
}

func TestMutationError(t *testing.T) {
	t.Parallel()

	cause := errors.New("disk full")
	err := kelo.NewMutationError("Animal", cause)
	assert.Equal(t, "kelo: inserting Animal: disk full", err.Error())
	assert.True(t, kelo.IsMutationError(err))
	assert.ErrorIs(t, err, cause)
	assert.False(t, kelo.IsMutationError(nil))
}
