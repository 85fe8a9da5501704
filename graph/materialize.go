package graph

import (
	"context"
	"fmt"

	"github.com/syssam/kelo"
	"github.com/syssam/kelo/dialect"
	"github.com/syssam/kelo/dialect/sql"
	"github.com/syssam/kelo/privacy"
	"github.com/syssam/kelo/schema"
	"github.com/syssam/kelo/schema/relation"
)

// Materializer inserts nested literal object graphs in dependency order.
type Materializer struct {
	registry *kelo.Registry
	drv      dialect.Driver
	builder  *sql.DialectBuilder
	policy   privacy.Policy
}

// NewMaterializer returns a materializer writing through the given
// driver.
func NewMaterializer(registry *kelo.Registry, drv dialect.Driver, opts ...Option) *Materializer {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return &Materializer{
		registry: registry,
		drv:      drv,
		builder:  newBuilder(drv, o.mapper),
		policy:   o.policy,
	}
}

// InsertGraph inserts the literal object graph rooted at node. Keys of
// node are either columns of the entity type or declared relation names;
// anything else aborts the call. Belongs-to targets are inserted before
// their owner so the owner's foreign key can be wired; has-many and
// many-to-many children after it. The returned instance carries the
// stored column values, generated keys included, with relation results
// nested the same way the resolver would nest them.
func (m *Materializer) InsertGraph(ctx context.Context, typ string, node map[string]any) (Instance, error) {
	inst, err := m.insertNode(ctx, typ, node)
	if err != nil {
		return nil, err
	}
	return inst, nil
}

func (m *Materializer) insertNode(ctx context.Context, typ string, node map[string]any) (Instance, error) {
	if err := m.policy.EvalMutation(ctx, privacy.Mutation{Type: typ}); err != nil {
		return nil, err
	}
	t, err := m.registry.Type(typ)
	if err != nil {
		return nil, fmt.Errorf("kelo: inserting graph: %w", err)
	}
	row := make(map[string]any)
	related := make(map[string]any)
	for k, v := range node {
		switch {
		case t.HasColumn(k):
			row[k] = v
		case m.isRelation(typ, k):
			related[k] = v
		default:
			return nil, kelo.NewMutationError(typ, fmt.Errorf("unknown column or relation %q", k))
		}
	}

	// Belongs-to targets first: the owner row needs their keys.
	inst := Instance{}
	for _, name := range m.registry.RelationNames(typ) {
		v, ok := related[name]
		if !ok {
			continue
		}
		rel, err := m.registry.Relation(typ, name)
		if err != nil {
			return nil, err
		}
		if rel.Kind != relation.KindBelongsTo {
			continue
		}
		child, ok := v.(map[string]any)
		if !ok {
			return nil, kelo.NewMutationError(typ, fmt.Errorf("relation %q expects an object, got %T", name, v))
		}
		childInst, err := m.insertNode(ctx, rel.Target, child)
		if err != nil {
			return nil, err
		}
		row[rel.FromColumn] = childInst[rel.ToColumn]
		inst[name] = childInst
	}

	id, err := m.insertRow(ctx, t, row)
	if err != nil {
		return nil, err
	}
	for _, c := range t.Columns {
		if v, ok := row[c.Name]; ok {
			inst[c.Name] = v
		}
	}
	inst[t.IDColumn()] = id

	// Children next: they reference the owner's generated key.
	for _, name := range m.registry.RelationNames(typ) {
		v, ok := related[name]
		if !ok {
			continue
		}
		rel, err := m.registry.Relation(typ, name)
		if err != nil {
			return nil, err
		}
		switch rel.Kind {
		case relation.KindBelongsTo:
			// Inserted above.
		case relation.KindHasMany:
			children, err := m.insertChildren(ctx, typ, rel, v, func(child map[string]any) map[string]any {
				out := make(map[string]any, len(child)+1)
				for k, cv := range child {
					out[k] = cv
				}
				out[rel.ToColumn] = inst[rel.FromColumn]
				return out
			})
			if err != nil {
				return nil, err
			}
			inst[name] = children
		case relation.KindManyToMany:
			children, err := m.insertChildren(ctx, typ, rel, v, nil)
			if err != nil {
				return nil, err
			}
			for _, child := range children {
				if err := m.insertJoinRow(ctx, rel, inst, child); err != nil {
					return nil, err
				}
			}
			inst[name] = children
		}
	}
	return inst, nil
}

// insertChildren inserts the elements of a has-many or many-to-many
// literal list. prepare, if set, rewrites each child literal before the
// insert (used to wire the parent's foreign key).
func (m *Materializer) insertChildren(ctx context.Context, typ string, rel *relation.Descriptor, v any, prepare func(map[string]any) map[string]any) ([]Instance, error) {
	literals, err := childLiterals(v)
	if err != nil {
		return nil, kelo.NewMutationError(typ, fmt.Errorf("relation %q: %w", rel.Name, err))
	}
	children := []Instance{}
	for _, child := range literals {
		if prepare != nil {
			child = prepare(child)
		}
		childInst, err := m.insertNode(ctx, rel.Target, child)
		if err != nil {
			return nil, err
		}
		children = append(children, childInst)
	}
	return children, nil
}

func (m *Materializer) insertJoinRow(ctx context.Context, rel *relation.Descriptor, owner, child Instance) error {
	th := rel.Through
	ins := m.builder.Insert(th.Table).
		Set(th.FromColumn, owner[rel.FromColumn]).
		Set(th.ToColumn, child[rel.ToColumn])
	query, args := ins.Query()
	if err := m.drv.Exec(ctx, query, args, nil); err != nil {
		return insertError(th.Table, err)
	}
	return nil
}

// insertRow inserts one row and returns its key: the literal key if the
// caller provided one, a client-generated key if the type declares a
// generator, otherwise the backend-generated key (RETURNING on postgres,
// last-insert-id elsewhere).
func (m *Materializer) insertRow(ctx context.Context, t *schema.Type, row map[string]any) (any, error) {
	idColumn := t.IDColumn()
	if _, ok := row[idColumn]; !ok && t.NewID != nil {
		row[idColumn] = t.NewID()
	}
	ins := m.builder.Insert(t.TableName())
	for _, c := range t.Columns {
		if v, ok := row[c.Name]; ok {
			ins.Set(c.Name, v)
		}
	}
	if id, ok := row[idColumn]; ok {
		query, args := ins.Query()
		if err := m.drv.Exec(ctx, query, args, nil); err != nil {
			return nil, insertError(t.Name, err)
		}
		return id, nil
	}
	if m.drv.Dialect() == dialect.Postgres {
		query, args := ins.Returning(idColumn).Query()
		var rows sql.Rows
		if err := m.drv.Query(ctx, query, args, &rows); err != nil {
			return nil, insertError(t.Name, err)
		}
		defer rows.Close()
		if !rows.Next() {
			return nil, kelo.NewMutationError(t.Name, fmt.Errorf("no generated key returned"))
		}
		var id any
		if err := rows.Scan(&id); err != nil {
			return nil, kelo.NewMutationError(t.Name, err)
		}
		return normalize(id), rows.Err()
	}
	query, args := ins.Query()
	var res sql.Result
	if err := m.drv.Exec(ctx, query, args, &res); err != nil {
		return nil, insertError(t.Name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, kelo.NewMutationError(t.Name, err)
	}
	return id, nil
}

func (m *Materializer) isRelation(typ, name string) bool {
	for _, n := range m.registry.RelationNames(typ) {
		if n == name {
			return true
		}
	}
	return false
}

func childLiterals(v any) ([]map[string]any, error) {
	switch v := v.(type) {
	case []map[string]any:
		return v, nil
	case []any:
		out := make([]map[string]any, len(v))
		for i, e := range v {
			child, ok := e.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("expects a list of objects, got %T element", e)
			}
			out[i] = child
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expects a list of objects, got %T", v)
	}
}
