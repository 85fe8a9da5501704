// Package privacy provides types and helpers for writing access rules
// over entity types, and for their evaluation at runtime by resolvers
// and materializers.
package privacy

import (
	"context"
	"errors"
	"fmt"
)

// Policy decision sentinel errors.
//
// Rules return these values to steer policy evaluation. Check them
// with errors.Is:
//
//	if errors.Is(err, privacy.Deny) { ... }
var (
	// Allow may be returned by rules to indicate that the policy
	// evaluation should terminate with an allow decision.
	Allow = errors.New("kelo/privacy: allow rule")

	// Deny may be returned by rules to indicate that the policy
	// evaluation should terminate with a deny decision.
	Deny = errors.New("kelo/privacy: deny rule")

	// Skip may be returned by rules to indicate that the policy
	// evaluation should continue to the next rule in the chain.
	Skip = errors.New("kelo/privacy: skip rule")
)

// Allowf returns a formatted wrapped Allow decision.
func Allowf(format string, a ...any) error {
	return fmt.Errorf(format+": %w", append(a, Allow)...)
}

// Denyf returns a formatted wrapped Deny decision.
func Denyf(format string, a ...any) error {
	return fmt.Errorf(format+": %w", append(a, Deny)...)
}

// Skipf returns a formatted wrapped Skip decision.
func Skipf(format string, a ...any) error {
	return fmt.Errorf(format+": %w", append(a, Skip)...)
}

// Query describes a resolve operation under evaluation.
type Query struct {
	// Type is the entity type being queried.
	Type string
}

// Mutation describes an insert operation under evaluation.
type Mutation struct {
	// Type is the entity type being inserted.
	Type string
}

type (
	// QueryRule defines the interface deciding whether a query on an
	// entity type is allowed.
	QueryRule interface {
		EvalQuery(context.Context, Query) error
	}

	// QueryPolicy combines multiple query rules into a single policy.
	QueryPolicy []QueryRule

	// MutationRule defines the interface deciding whether an insert
	// into an entity type is allowed.
	MutationRule interface {
		EvalMutation(context.Context, Mutation) error
	}

	// MutationPolicy combines multiple mutation rules into a single policy.
	MutationPolicy []MutationRule

	// QueryMutationRule is an interface which groups query and mutation rules.
	QueryMutationRule interface {
		QueryRule
		MutationRule
	}
)

// QueryRuleFunc type is an adapter which allows the use of ordinary
// functions as query rules.
type QueryRuleFunc func(context.Context, Query) error

// EvalQuery returns f(ctx, q).
func (f QueryRuleFunc) EvalQuery(ctx context.Context, q Query) error {
	return f(ctx, q)
}

// MutationRuleFunc type is an adapter which allows the use of ordinary
// functions as mutation rules.
type MutationRuleFunc func(context.Context, Mutation) error

// EvalMutation returns f(ctx, m).
func (f MutationRuleFunc) EvalMutation(ctx context.Context, m Mutation) error {
	return f(ctx, m)
}

// EvalQuery evaluates a query against a query policy. Rules returning
// nil or Skip pass evaluation to the next rule, Allow terminates the
// chain with a nil error, any other error is returned as the decision.
// An exhausted chain allows the query.
func (policies QueryPolicy) EvalQuery(ctx context.Context, q Query) error {
	if decision, ok := DecisionFromContext(ctx); ok {
		return decision
	}
	for _, policy := range policies {
		switch decision := policy.EvalQuery(ctx, q); {
		case decision == nil || errors.Is(decision, Skip):
		case errors.Is(decision, Allow):
			return nil
		default:
			return decision
		}
	}
	return nil
}

// EvalMutation evaluates a mutation against a mutation policy with the
// same chain semantics as QueryPolicy.EvalQuery.
func (policies MutationPolicy) EvalMutation(ctx context.Context, m Mutation) error {
	if decision, ok := DecisionFromContext(ctx); ok {
		return decision
	}
	for _, policy := range policies {
		switch decision := policy.EvalMutation(ctx, m); {
		case decision == nil || errors.Is(decision, Skip):
		case errors.Is(decision, Allow):
			return nil
		default:
			return decision
		}
	}
	return nil
}

// Policy groups query and mutation policies.
type Policy struct {
	Query    QueryPolicy
	Mutation MutationPolicy
}

// EvalQuery forwards evaluation to the query policy.
func (p Policy) EvalQuery(ctx context.Context, q Query) error {
	return p.Query.EvalQuery(ctx, q)
}

// EvalMutation forwards evaluation to the mutation policy.
func (p Policy) EvalMutation(ctx context.Context, m Mutation) error {
	return p.Mutation.EvalMutation(ctx, m)
}

// AlwaysAllowRule returns a rule that always returns an Allow decision.
func AlwaysAllowRule() QueryMutationRule {
	return fixedDecision{Allow}
}

// AlwaysDenyRule returns a rule that always returns a Deny decision.
func AlwaysDenyRule() QueryMutationRule {
	return fixedDecision{Deny}
}

type fixedDecision struct {
	decision error
}

func (f fixedDecision) EvalQuery(context.Context, Query) error {
	return f.decision
}

func (f fixedDecision) EvalMutation(context.Context, Mutation) error {
	return f.decision
}

// ContextQueryMutationRule creates a query/mutation rule from a context
// evaluation function. Returning nil is equivalent to returning Skip.
func ContextQueryMutationRule(eval func(context.Context) error) QueryMutationRule {
	return contextDecision{eval}
}

type contextDecision struct {
	eval func(context.Context) error
}

func (c contextDecision) EvalQuery(ctx context.Context, _ Query) error {
	return c.eval(ctx)
}

func (c contextDecision) EvalMutation(ctx context.Context, _ Mutation) error {
	return c.eval(ctx)
}

// OnTypeRule limits the given rule to the named entity types. All
// other types are skipped.
func OnTypeRule(rule QueryMutationRule, types ...string) QueryMutationRule {
	return typeDecision{rule, types}
}

// DenyTypeRule denies every query and mutation of the named entity types.
func DenyTypeRule(types ...string) QueryMutationRule {
	rule := ContextQueryMutationRule(func(context.Context) error {
		return Denyf("kelo/privacy: type is not allowed")
	})
	return OnTypeRule(rule, types...)
}

type typeDecision struct {
	rule  QueryMutationRule
	types []string
}

func (t typeDecision) matches(name string) bool {
	for _, typ := range t.types {
		if typ == name {
			return true
		}
	}
	return false
}

func (t typeDecision) EvalQuery(ctx context.Context, q Query) error {
	if !t.matches(q.Type) {
		return Skip
	}
	return t.rule.EvalQuery(ctx, q)
}

func (t typeDecision) EvalMutation(ctx context.Context, m Mutation) error {
	if !t.matches(m.Type) {
		return Skip
	}
	return t.rule.EvalMutation(ctx, m)
}

type decisionCtxKey struct{}

// DecisionContext creates a new context with a policy decision attached,
// overriding rule evaluation for every operation under it.
func DecisionContext(parent context.Context, decision error) context.Context {
	if decision == nil || errors.Is(decision, Allow) {
		decision = nil
	}
	return context.WithValue(parent, decisionCtxKey{}, decisionCtx{decision})
}

type decisionCtx struct {
	decision error
}

// DecisionFromContext retrieves the decision from the context.
func DecisionFromContext(ctx context.Context) (error, bool) {
	d, ok := ctx.Value(decisionCtxKey{}).(decisionCtx)
	return d.decision, ok
}
