package graph

import (
	"context"

	"github.com/syssam/kelo"
	"github.com/syssam/kelo/dialect"
	"github.com/syssam/kelo/dialect/sql"
	"github.com/syssam/kelo/include"
	"github.com/syssam/kelo/naming"
	"github.com/syssam/kelo/privacy"
	"github.com/syssam/kelo/schema"
)

// Strategy is an eager-loading algorithm. The three implementations,
// NaiveEager, WhereInEager and JoinEager, are interchangeable: for the
// same query and inclusion expression they produce structurally
// identical graphs and differ only in the statements they execute.
type Strategy interface {
	// Name identifies the strategy in logs and stats.
	Name() string

	eager(ctx context.Context, l *loader, root *schema.Type, apply []func(*sql.Selector), expr *include.Expr) ([]Instance, error)
}

// Resolver fetches root entity sets together with their included
// relations. A resolver is immutable and safe for concurrent use.
type Resolver struct {
	registry *kelo.Registry
	drv      dialect.Driver
	mapper   *naming.Mapper
	strategy Strategy
	policy   privacy.Policy
}

// NewResolver returns a resolver reading through the given driver. The
// default strategy is WhereInEager.
func NewResolver(registry *kelo.Registry, drv dialect.Driver, opts ...Option) *Resolver {
	o := options{strategy: WhereInEager}
	for _, opt := range opts {
		opt(&o)
	}
	return &Resolver{
		registry: registry,
		drv:      drv,
		mapper:   o.mapper,
		strategy: o.strategy,
		policy:   o.policy,
	}
}

// Query starts a query over the named entity type.
func (r *Resolver) Query(typ string) *Query {
	return &Query{
		resolver:  r,
		typ:       typ,
		strategy:  r.strategy,
		modifiers: make(map[string][]func(*sql.Selector)),
	}
}

// Query builds one resolve call: root predicates and ordering, an
// inclusion expression, per-path modifiers and the strategy to run.
type Query struct {
	resolver  *Resolver
	typ       string
	root      []func(*sql.Selector)
	expr      *include.Expr
	modifiers map[string][]func(*sql.Selector)
	strategy  Strategy
	err       error
}

// Where adds predicates to the root fetch.
func (q *Query) Where(ps ...func(*sql.Selector)) *Query {
	q.root = append(q.root, ps...)
	return q
}

// Order adds order terms to the root fetch.
func (q *Query) Order(os ...func(*sql.Selector)) *Query {
	q.root = append(q.root, os...)
	return q
}

// Include parses an inclusion expression and merges it into the query.
// Relation names are validated at resolve time.
func (q *Query) Include(expr string) *Query {
	parsed, err := include.Parse(expr)
	if err != nil {
		if q.err == nil {
			q.err = err
		}
		return q
	}
	return q.IncludeExpr(parsed)
}

// IncludeExpr merges an already parsed inclusion expression into the
// query.
func (q *Query) IncludeExpr(expr *include.Expr) *Query {
	if q.expr == nil {
		q.expr = include.New()
	}
	for _, n := range expr.Nodes() {
		q.expr = include.New(append(q.expr.Nodes(), n)...)
	}
	return q
}

// Modify registers query modifiers for the fetch of exactly the given
// dot-separated relation path, e.g. "pets" or "parent.parent".
func (q *Query) Modify(path string, fns ...func(*sql.Selector)) *Query {
	q.modifiers[path] = append(q.modifiers[path], fns...)
	return q
}

// WithStrategy overrides the resolver's strategy for this query.
func (q *Query) WithStrategy(s Strategy) *Query {
	q.strategy = s
	return q
}

// All runs the query and returns the populated root instances. A failed
// fetch at any level aborts the whole call; no partial graph is
// returned.
func (q *Query) All(ctx context.Context) ([]Instance, error) {
	if q.err != nil {
		return nil, q.err
	}
	if err := q.resolver.policy.EvalQuery(ctx, privacy.Query{Type: q.typ}); err != nil {
		return nil, err
	}
	root, err := q.resolver.registry.Type(q.typ)
	if err != nil {
		return nil, kelo.NewQueryError(q.typ, "", err)
	}
	l := &loader{
		registry:  q.resolver.registry,
		drv:       q.resolver.drv,
		mapper:    q.resolver.mapper,
		builder:   newBuilder(q.resolver.drv, q.resolver.mapper),
		modifiers: q.modifiers,
	}
	expr := q.expr
	if expr == nil {
		expr = include.New()
	}
	return q.strategy.eager(ctx, l, root, q.root, expr)
}

// Only runs the query and demands exactly one root instance.
func (q *Query) Only(ctx context.Context) (Instance, error) {
	all, err := q.All(ctx)
	if err != nil {
		return nil, err
	}
	switch len(all) {
	case 1:
		return all[0], nil
	case 0:
		return nil, kelo.NewNotFoundError(q.typ)
	default:
		return nil, kelo.NewNotSingularError(q.typ, len(all))
	}
}

// fetchRoots runs the root fetch shared by the naive and where-in
// strategies.
func fetchRoots(ctx context.Context, l *loader, root *schema.Type, apply []func(*sql.Selector)) ([]Instance, error) {
	sel := l.selectType(root)
	for _, fn := range apply {
		fn(sel)
	}
	roots, err := l.fetch(ctx, sel)
	if err != nil {
		return nil, kelo.NewQueryError(root.Name, "", err)
	}
	return roots, nil
}
