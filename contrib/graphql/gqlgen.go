package graphql

import (
	"context"
	"strings"

	"github.com/99designs/gqlgen/graphql"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/syssam/kelo/include"
)

// FromContext derives an include expression from the selection set of
// the field currently being resolved by gqlgen. Outside a gqlgen
// request, or for a field without sub-selections, it returns an empty
// expression, which loads no relations.
func FromContext(ctx context.Context) *include.Expr {
	fctx := graphql.GetFieldContext(ctx)
	if fctx == nil || !graphql.HasOperationContext(ctx) {
		return include.New()
	}
	octx := graphql.GetOperationContext(ctx)
	return include.New(collectNodes(octx, fctx.Field.Selections)...)
}

func collectNodes(octx *graphql.OperationContext, sels ast.SelectionSet) []*include.Node {
	var nodes []*include.Node
	for _, f := range graphql.CollectFields(octx, sels, nil) {
		if len(f.Selections) == 0 || strings.HasPrefix(f.Name, "__") {
			continue
		}
		nodes = append(nodes, include.NewNode(f.Name, collectNodes(octx, f.Selections)...))
	}
	return nodes
}
