package graph

import (
	"context"
	"errors"
	"strconv"

	"github.com/syssam/kelo"
	"github.com/syssam/kelo/dialect/sql"
	"github.com/syssam/kelo/include"
	"github.com/syssam/kelo/schema"
	"github.com/syssam/kelo/schema/relation"
)

// JoinEager issues a single joined query per call: every relation path
// becomes an aliased LEFT JOIN, every selected column an aliased result
// column, and the flattened rows are folded back into the nested graph
// by correlating primary keys at each level.
var JoinEager Strategy = joinEager{}

type joinEager struct{}

func (joinEager) Name() string { return "join" }

// In a single joined query a limit or offset would cut flattened
// rows, not entities, so the strategy refuses it outright.
var errJoinPaginated = errors.New("limit and offset cannot be applied in a single joined query")

// joinNode is one aliased table of the join plan: the root, or one
// relation path of the inclusion expression.
type joinNode struct {
	alias     string
	throughAs string   // many-to-many join-table alias
	refCols   []string // join-table columns identifying the association row
	name      string   // relation name, empty for the root
	path      string
	rel       *relation.Descriptor
	typ       *schema.Type
	cols      []string
	stripPK   bool
	orders    []string
	where     *sql.Predicate
	children  []*joinNode
	seen      map[string]Instance
}

func (joinEager) eager(ctx context.Context, l *loader, root *schema.Type, apply []func(*sql.Selector), expr *include.Expr) ([]Instance, error) {
	scratch := l.selectType(root)
	for _, fn := range apply {
		fn(scratch)
	}
	if scratch.Paginated() {
		return nil, kelo.NewQueryError(root.Name, "", errJoinPaginated)
	}
	plan := &joinNode{
		alias:  "t0",
		typ:    root,
		cols:   scratch.SelectedColumns(),
		orders: scratch.OrderedBy(),
		where:  scratch.P(),
		seen:   make(map[string]Instance),
	}
	plan.ensurePK()
	counter := 1
	children, err := buildJoinNodes(l, root, expr, "", &counter)
	if err != nil {
		return nil, err
	}
	plan.children = children

	sel := l.builder.Select().From(root.TableName()).As(plan.alias)
	appendJoinSelects(sel, l, plan)
	for _, child := range plan.children {
		appendJoins(sel, l, plan, child)
	}
	if plan.where != nil {
		sel.Where(sql.Qualified(plan.alias, plan.where))
	}
	appendJoinOrders(sel, plan)

	rows, err := l.fetchRaw(ctx, sel)
	if err != nil {
		return nil, kelo.NewQueryError(root.Name, "", err)
	}
	return foldRows(l, plan, rows), nil
}

func buildJoinNodes(l *loader, t *schema.Type, expr *include.Expr, path string, counter *int) ([]*joinNode, error) {
	var nodes []*joinNode
	for _, node := range expr.Nodes() {
		childPath := joinPath(path, node.Name)
		rel, err := l.registry.Relation(t.Name, node.Name)
		if err != nil {
			return nil, kelo.NewQueryError(t.Name, childPath, err)
		}
		target, err := l.registry.Type(rel.Target)
		if err != nil {
			return nil, kelo.NewQueryError(t.Name, childPath, err)
		}
		scratch := l.selectType(target)
		l.applyModifiers(childPath, scratch)
		if scratch.Paginated() {
			return nil, kelo.NewQueryError(t.Name, childPath, errJoinPaginated)
		}
		jn := &joinNode{
			alias:  "t" + strconv.Itoa(*counter),
			name:   node.Name,
			path:   childPath,
			rel:    rel,
			typ:    target,
			cols:   scratch.SelectedColumns(),
			orders: scratch.OrderedBy(),
			where:  scratch.P(),
			seen:   make(map[string]Instance),
		}
		if rel.Kind == relation.KindManyToMany {
			jn.throughAs = jn.alias + "j"
			// The fold must keep one child per association row, so it
			// needs a join-table row identity next to the child's
			// primary key. Without a registered join type the column
			// pair is the closest available discriminator.
			if tt, ok := l.registry.TypeByTable(rel.Through.Table); ok {
				jn.refCols = []string{tt.IDColumn()}
			} else {
				jn.refCols = []string{rel.Through.FromColumn, rel.Through.ToColumn}
			}
		}
		jn.ensurePK()
		*counter++
		children, err := buildJoinNodes(l, target, node.Children, childPath, counter)
		if err != nil {
			return nil, err
		}
		jn.children = children
		nodes = append(nodes, jn)
	}
	return nodes, nil
}

// ensurePK makes sure the node selects its primary key. The fold needs
// it to correlate rows; if it was not part of the selection it is
// dropped again afterwards.
func (n *joinNode) ensurePK() {
	pk := n.typ.IDColumn()
	for _, c := range n.cols {
		if c == pk {
			return
		}
	}
	n.cols = append(n.cols, pk)
	n.stripPK = true
}

func appendJoins(sel *sql.Selector, l *loader, parent, n *joinNode) {
	switch n.rel.Kind {
	case relation.KindManyToMany:
		th := n.rel.Through
		sel.LeftJoin(th.Table, n.throughAs,
			sql.ColumnsEQ(n.throughAs+"."+th.FromColumn, parent.alias+"."+n.rel.FromColumn))
		on := sql.ColumnsEQ(n.alias+"."+n.rel.ToColumn, n.throughAs+"."+th.ToColumn)
		if n.where != nil {
			on = sql.And(on, sql.Qualified(n.alias, n.where))
		}
		sel.LeftJoin(n.typ.TableName(), n.alias, on)
	default:
		on := sql.ColumnsEQ(n.alias+"."+n.rel.ToColumn, parent.alias+"."+n.rel.FromColumn)
		if n.where != nil {
			// Filtering in the join condition keeps parents without a
			// matching child in the result.
			on = sql.And(on, sql.Qualified(n.alias, n.where))
		}
		sel.LeftJoin(n.typ.TableName(), n.alias, on)
	}
	appendJoinSelects(sel, l, n)
	for _, child := range n.children {
		appendJoins(sel, l, n, child)
	}
}

func appendJoinSelects(sel *sql.Selector, l *loader, n *joinNode) {
	for _, col := range n.cols {
		sel.AppendSelectAs(n.alias+"."+col, n.resultColumn(l, col))
	}
	for _, col := range n.refCols {
		sel.AppendSelectAs(n.throughAs+"."+col, n.refColumn(l, col))
	}
}

// resultColumn is the aliased name a column of this node carries in the
// flattened result set, e.g. "t1__animal_name".
func (n *joinNode) resultColumn(l *loader, col string) string {
	return n.alias + "__" + l.storage(col)
}

// refColumn is the aliased name of a join-table column selected for the
// fold, e.g. "t1j__id".
func (n *joinNode) refColumn(l *loader, col string) string {
	return n.throughAs + "__" + l.storage(col)
}

// appendJoinOrders appends the root order terms first, then each path's
// order terms in depth-first inclusion order, all qualified by their
// table alias.
func appendJoinOrders(sel *sql.Selector, n *joinNode) {
	for _, o := range n.orders {
		sel.OrderBy(n.alias + "." + o)
	}
	for _, child := range n.children {
		appendJoinOrders(sel, child)
	}
}

// foldRows folds the flattened rows back into the nested graph.
// Duplicate parent rows collapse; duplicate child rows introduced by
// sibling branches are de-duplicated per branch by the row's primary
// key, scoped to its ancestor chain. Many-to-many branches add the
// join-table row identity to that key, keeping one child per
// association row.
func foldRows(l *loader, plan *joinNode, rows []Instance) []Instance {
	roots := []Instance{}
	for _, row := range rows {
		sub := extractNode(l, plan, row)
		key := keyOf(sub[plan.typ.IDColumn()])
		inst, ok := plan.seen[key]
		if !ok {
			inst = sub
			initContainers(plan, inst)
			plan.seen[key] = inst
			roots = append(roots, inst)
		}
		foldChildren(l, plan, row, key, inst)
	}
	stripAddedPKs(plan)
	return roots
}

func foldChildren(l *loader, n *joinNode, row Instance, chain string, parent Instance) {
	for _, child := range n.children {
		sub := extractNode(l, child, row)
		pk := sub[child.typ.IDColumn()]
		if pk == nil {
			// LEFT JOIN produced no match; containers stay empty.
			continue
		}
		key := chain + "\x1f" + keyOf(pk)
		// Association rows are identities of their own: two rows
		// linking the same pair stay two children, while cartesian
		// repeats from sibling branches still collapse.
		for _, col := range child.refCols {
			key += "\x1f" + keyOf(row[child.refColumn(l, col)])
		}
		inst, ok := child.seen[key]
		if !ok {
			inst = sub
			initContainers(child, inst)
			child.seen[key] = inst
			if child.rel.Kind == relation.KindBelongsTo {
				parent[child.name] = inst
			} else {
				parent[child.name] = append(parent[child.name].([]Instance), inst)
			}
		}
		foldChildren(l, child, row, key, inst)
	}
}

func extractNode(l *loader, n *joinNode, row Instance) Instance {
	inst := make(Instance, len(n.cols))
	for _, col := range n.cols {
		inst[col] = row[n.resultColumn(l, col)]
	}
	return inst
}

// initContainers pre-sets the relation results of a fresh instance so
// that parents without matches resolve the same way the other
// strategies resolve them.
func initContainers(n *joinNode, inst Instance) {
	for _, child := range n.children {
		if child.rel.Kind == relation.KindBelongsTo {
			inst[child.name] = nil
		} else {
			inst[child.name] = []Instance{}
		}
	}
}

func stripAddedPKs(n *joinNode) {
	if n.stripPK {
		pk := n.typ.IDColumn()
		for _, inst := range n.seen {
			delete(inst, pk)
		}
	}
	for _, child := range n.children {
		stripAddedPKs(child)
	}
}
