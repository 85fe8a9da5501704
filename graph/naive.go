package graph

import (
	"context"

	"github.com/syssam/kelo"
	"github.com/syssam/kelo/dialect/sql"
	"github.com/syssam/kelo/include"
	"github.com/syssam/kelo/schema"
	"github.com/syssam/kelo/schema/relation"
)

// NaiveEager issues one query per parent instance per relation. It is
// the reference semantics for the other strategies.
var NaiveEager Strategy = naiveEager{}

type naiveEager struct{}

func (naiveEager) Name() string { return "naive" }

func (naiveEager) eager(ctx context.Context, l *loader, root *schema.Type, apply []func(*sql.Selector), expr *include.Expr) ([]Instance, error) {
	roots, err := fetchRoots(ctx, l, root, apply)
	if err != nil {
		return nil, err
	}
	if err := naiveLoad(ctx, l, root, roots, expr, ""); err != nil {
		return nil, err
	}
	return roots, nil
}

func naiveLoad(ctx context.Context, l *loader, t *schema.Type, parents []Instance, expr *include.Expr, path string) error {
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
		for _, parent := range parents {
			rows, err := naiveFetchOne(ctx, l, target, rel, parent, childPath)
			if err != nil {
				return kelo.NewQueryError(target.Name, childPath, err)
			}
			switch rel.Kind {
			case relation.KindBelongsTo:
				if len(rows) == 0 {
					parent[node.Name] = nil
					continue
				}
				parent[node.Name] = rows[0]
				children = append(children, rows[0])
			default:
				parent[node.Name] = rows
				children = append(children, rows...)
			}
		}
		if err := naiveLoad(ctx, l, target, children, node.Children, childPath); err != nil {
			return err
		}
	}
	return nil
}

// naiveFetchOne fetches the related rows of a single parent instance.
func naiveFetchOne(ctx context.Context, l *loader, target *schema.Type, rel *relation.Descriptor, parent Instance, path string) ([]Instance, error) {
	switch rel.Kind {
	case relation.KindBelongsTo:
		fk := parent[rel.FromColumn]
		if fk == nil {
			return nil, nil
		}
		sel := l.selectType(target).Where(sql.EQ(rel.ToColumn, fk))
		l.applyModifiers(path, sel)
		return l.fetch(ctx, sel)
	case relation.KindManyToMany:
		th := rel.Through
		targetTable := target.TableName()
		cols := make([]string, 0, len(target.Columns))
		for _, c := range target.Columns {
			cols = append(cols, targetTable+"."+c.Name)
		}
		sel := l.builder.Select(cols...).
			From(targetTable).
			Join(th.Table, "", sql.ColumnsEQ(th.Table+"."+th.ToColumn, targetTable+"."+rel.ToColumn)).
			Where(sql.EQ(th.Table+"."+th.FromColumn, parent[rel.FromColumn]))
		l.applyModifiers(path, sel)
		return l.fetch(ctx, sel)
	default: // has-many
		sel := l.selectType(target).Where(sql.EQ(rel.ToColumn, parent[rel.FromColumn]))
		l.applyModifiers(path, sel)
		return l.fetch(ctx, sel)
	}
}
