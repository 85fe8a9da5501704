package privacy_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/kelo/privacy"
)

func TestPolicyChain(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("exhausted chain allows", func(t *testing.T) {
		t.Parallel()
		p := privacy.QueryPolicy{
			privacy.QueryRuleFunc(func(context.Context, privacy.Query) error {
				return privacy.Skip
			}),
			privacy.QueryRuleFunc(func(context.Context, privacy.Query) error {
				return nil
			}),
		}
		assert.NoError(t, p.EvalQuery(ctx, privacy.Query{Type: "Person"}))
	})

	t.Run("allow terminates the chain", func(t *testing.T) {
		t.Parallel()
		p := privacy.QueryPolicy{
			privacy.AlwaysAllowRule(),
			privacy.AlwaysDenyRule(),
		}
		assert.NoError(t, p.EvalQuery(ctx, privacy.Query{Type: "Person"}))
	})

	t.Run("deny is returned as the decision", func(t *testing.T) {
		t.Parallel()
		p := privacy.MutationPolicy{
			privacy.MutationRuleFunc(func(context.Context, privacy.Mutation) error {
				return privacy.Skip
			}),
			privacy.AlwaysDenyRule(),
		}
		err := p.EvalMutation(ctx, privacy.Mutation{Type: "Person"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, privacy.Deny))
	})
}

func TestDecisionHelpers(t *testing.T) {
	t.Parallel()
	assert.True(t, errors.Is(privacy.Allowf("role %q matched", "admin"), privacy.Allow))
	assert.True(t, errors.Is(privacy.Denyf("not yours"), privacy.Deny))
	assert.True(t, errors.Is(privacy.Skipf("not my call"), privacy.Skip))
}

func TestDecisionContext(t *testing.T) {
	t.Parallel()
	p := privacy.QueryPolicy{privacy.AlwaysDenyRule()}

	ctx := privacy.DecisionContext(context.Background(), privacy.Allow)
	assert.NoError(t, p.EvalQuery(ctx, privacy.Query{Type: "Person"}))

	ctx = privacy.DecisionContext(context.Background(), privacy.Deny)
	err := privacy.QueryPolicy{privacy.AlwaysAllowRule()}.EvalQuery(ctx, privacy.Query{Type: "Person"})
	assert.True(t, errors.Is(err, privacy.Deny))
}

func TestOnTypeRule(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	p := privacy.Policy{
		Query:    privacy.QueryPolicy{privacy.DenyTypeRule("Secret")},
		Mutation: privacy.MutationPolicy{privacy.DenyTypeRule("Secret")},
	}

	assert.NoError(t, p.EvalQuery(ctx, privacy.Query{Type: "Person"}))
	err := p.EvalQuery(ctx, privacy.Query{Type: "Secret"})
	assert.True(t, errors.Is(err, privacy.Deny))

	assert.NoError(t, p.EvalMutation(ctx, privacy.Mutation{Type: "Person"}))
	err = p.EvalMutation(ctx, privacy.Mutation{Type: "Secret"})
	assert.True(t, errors.Is(err, privacy.Deny))
}
