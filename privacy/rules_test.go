package privacy_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syssam/kelo/privacy"
)

func TestDenyIfNoViewer(t *testing.T) {
	t.Parallel()
	p := privacy.QueryPolicy{privacy.DenyIfNoViewer()}

	err := p.EvalQuery(context.Background(), privacy.Query{Type: "Person"})
	assert.True(t, errors.Is(err, privacy.Deny))

	ctx := privacy.WithViewer(context.Background(), &privacy.SimpleViewer{UserID: "u1"})
	assert.NoError(t, p.EvalQuery(ctx, privacy.Query{Type: "Person"}))
}

func TestHasRole(t *testing.T) {
	t.Parallel()
	p := privacy.MutationPolicy{
		privacy.HasRole("admin"),
		privacy.AlwaysDenyRule(),
	}

	admin := privacy.WithViewer(context.Background(), &privacy.SimpleViewer{
		UserID: "u1",
		Roles:  []string{"admin"},
	})
	assert.NoError(t, p.EvalMutation(admin, privacy.Mutation{Type: "Person"}))

	guest := privacy.WithViewer(context.Background(), &privacy.SimpleViewer{UserID: "u2"})
	err := p.EvalMutation(guest, privacy.Mutation{Type: "Person"})
	assert.True(t, errors.Is(err, privacy.Deny))
}

func TestViewerFromContext(t *testing.T) {
	t.Parallel()
	assert.Nil(t, privacy.ViewerFromContext(context.Background()))

	v := &privacy.SimpleViewer{UserID: "u1", Roles: []string{"reader"}}
	ctx := privacy.WithViewer(context.Background(), v)
	got := privacy.ViewerFromContext(ctx)
	assert.Equal(t, "u1", got.GetID())
	assert.Equal(t, []string{"reader"}, got.GetRoles())
}
