package graph

import (
	"context"
	"maps"

	"github.com/syssam/kelo"
	"github.com/syssam/kelo/dialect/sql"
	"github.com/syssam/kelo/include"
	"github.com/syssam/kelo/schema"
	"github.com/syssam/kelo/schema/relation"
)

// WhereInEager issues one query per relation path, batched over all
// parents at that level with a WHERE ... IN filter.
var WhereInEager Strategy = whereInEager{}

type whereInEager struct{}

func (whereInEager) Name() string { return "wherein" }

// parentRefColumn aliases the join-table column correlating a fetched
// many-to-many row back to its parent. It is stripped after grouping.
const parentRefColumn = "kelo_parent_ref"

func (whereInEager) eager(ctx context.Context, l *loader, root *schema.Type, apply []func(*sql.Selector), expr *include.Expr) ([]Instance, error) {
	roots, err := fetchRoots(ctx, l, root, apply)
	if err != nil {
		return nil, err
	}
	if err := whereInLoad(ctx, l, root, roots, expr, ""); err != nil {
		return nil, err
	}
	return roots, nil
}

func whereInLoad(ctx context.Context, l *loader, t *schema.Type, parents []Instance, expr *include.Expr, path string) error {
	for _, node := range expr.Nodes() {
		childPath := joinPath(path, node.Name)
		rel, err := l.registry.Relation(t.Name, node.Name)
		if err != nil {
			return kelo.NewQueryError(t.Name, childPath, err)
		}
		target, err := l.registry.Type(rel.Target)
		if err != nil {
			return kelo.NewQueryError(t.Name, childPath, err)
		}
		var children []Instance
		switch rel.Kind {
		case relation.KindBelongsTo:
			children, err = whereInBelongsTo(ctx, l, target, rel, parents, node.Name, childPath)
		case relation.KindHasMany:
			children, err = whereInHasMany(ctx, l, target, rel, parents, node.Name, childPath)
		case relation.KindManyToMany:
			children, err = whereInManyToMany(ctx, l, target, rel, parents, node.Name, childPath)
		}
		if err != nil {
			return kelo.NewQueryError(target.Name, childPath, err)
		}
		if err := whereInLoad(ctx, l, target, children, node.Children, childPath); err != nil {
			return err
		}
	}
	return nil
}

func whereInBelongsTo(ctx context.Context, l *loader, target *schema.Type, rel *relation.Descriptor, parents []Instance, name, path string) ([]Instance, error) {
	keys := collectKeys(parents, rel.FromColumn)
	if len(keys) == 0 {
		for _, parent := range parents {
			parent[name] = nil
		}
		return nil, nil
	}
	sel := l.selectType(target).Where(sql.In(rel.ToColumn, keys...))
	l.applyModifiers(path, sel)
	strip := ensureColumn(sel, rel.ToColumn)
	rows, err := l.fetch(ctx, sel)
	if err != nil {
		return nil, err
	}
	index := indexByKey(rows, func(row Instance) string { return keyOf(row[rel.ToColumn]) })
	if strip {
		stripColumn(rows, rel.ToColumn)
	}
	attached := make(map[string]bool, len(index))
	children := make([]Instance, 0, len(parents))
	for _, parent := range parents {
		fk := parent[rel.FromColumn]
		if fk == nil {
			parent[name] = nil
			continue
		}
		k := keyOf(fk)
		match, ok := index[k]
		if !ok {
			parent[name] = nil
			continue
		}
		// Parents sharing a foreign key each own a copy: writes to
		// one populated child must not show through another parent.
		if attached[k] {
			match = maps.Clone(match)
		}
		attached[k] = true
		parent[name] = match
		children = append(children, match)
	}
	return children, nil
}

func whereInHasMany(ctx context.Context, l *loader, target *schema.Type, rel *relation.Descriptor, parents []Instance, name, path string) ([]Instance, error) {
	keys := collectKeys(parents, rel.FromColumn)
	if len(keys) == 0 {
		for _, parent := range parents {
			parent[name] = []Instance{}
		}
		return nil, nil
	}
	sel := l.selectType(target).Where(sql.In(rel.ToColumn, keys...))
	l.applyModifiers(path, sel)
	strip := ensureColumn(sel, rel.ToColumn)
	rows, err := l.fetch(ctx, sel)
	if err != nil {
		return nil, err
	}
	groups := groupByKey(rows, func(row Instance) string { return keyOf(row[rel.ToColumn]) })
	if strip {
		stripColumn(rows, rel.ToColumn)
	}
	return attachGroups(parents, rel.FromColumn, name, groups), nil
}

func whereInManyToMany(ctx context.Context, l *loader, target *schema.Type, rel *relation.Descriptor, parents []Instance, name, path string) ([]Instance, error) {
	keys := collectKeys(parents, rel.FromColumn)
	if len(keys) == 0 {
		for _, parent := range parents {
			parent[name] = []Instance{}
		}
		return nil, nil
	}
	th := rel.Through
	targetTable := target.TableName()
	cols := make([]string, 0, len(target.Columns))
	for _, c := range target.Columns {
		cols = append(cols, targetTable+"."+c.Name)
	}
	sel := l.builder.Select(cols...).
		From(targetTable).
		Join(th.Table, "", sql.ColumnsEQ(th.Table+"."+th.ToColumn, targetTable+"."+rel.ToColumn)).
		Where(sql.In(th.Table+"."+th.FromColumn, keys...))
	l.applyModifiers(path, sel)
	sel.AppendSelectAs(th.Table+"."+th.FromColumn, l.storage(parentRefColumn))
	rows, err := l.fetch(ctx, sel)
	if err != nil {
		return nil, err
	}
	refName := l.mapper.ToApplication(l.storage(parentRefColumn))
	groups := make(map[string][]Instance)
	for _, row := range rows {
		ref := row[refName]
		delete(row, refName)
		k := keyOf(ref)
		groups[k] = append(groups[k], row)
	}
	return attachGroups(parents, rel.FromColumn, name, groups), nil
}

// collectKeys gathers the distinct non-nil correlation values of the
// parents, preserving first-seen order.
func collectKeys(parents []Instance, column string) []any {
	seen := make(map[string]bool, len(parents))
	keys := make([]any, 0, len(parents))
	for _, parent := range parents {
		v := parent[column]
		if v == nil {
			continue
		}
		k := keyOf(v)
		if !seen[k] {
			seen[k] = true
			keys = append(keys, v)
		}
	}
	return keys
}

// attachGroups assigns each parent its group of fetched rows and
// returns the attached instances in parent order, so nested loads
// recurse into exactly what the parents hold. Parents with no matching
// rows get an empty list; parents sharing a correlation key get their
// own copies of the rows.
func attachGroups(parents []Instance, column, name string, groups map[string][]Instance) []Instance {
	keys := make([]string, len(parents))
	for i, parent := range parents {
		keys[i] = keyOf(parent[column])
	}
	seen := make(map[string]bool, len(groups))
	var attached []Instance
	for i, g := range orderGroupsByKeys(keys, groups) {
		if g == nil {
			g = []Instance{}
		} else if seen[keys[i]] {
			copies := make([]Instance, len(g))
			for j, row := range g {
				copies[j] = maps.Clone(row)
			}
			g = copies
		}
		seen[keys[i]] = true
		parents[i][name] = g
		attached = append(attached, g...)
	}
	return attached
}
