package graphql

import (
	"fmt"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/syssam/kelo/include"
)

// GQLFieldTypeName is the GraphQL __typename introspection field.
const GQLFieldTypeName = "__typename"

// FromQuery parses a GraphQL query and derives an include expression
// from the sub-selections of the named operation's first root field.
// Fields without sub-selections are scalars and are skipped, as are
// introspection fields. An empty operation name selects the document's
// only operation.
func FromQuery(query, operation string) (*include.Expr, error) {
	doc, err := parser.ParseQuery(&ast.Source{Input: query})
	if err != nil {
		return nil, fmt.Errorf("graphql: parse query: %w", err)
	}
	op, err := findOperation(doc, operation)
	if err != nil {
		return nil, err
	}
	root := firstField(doc, op.SelectionSet, map[string]bool{})
	if root == nil {
		return nil, fmt.Errorf("graphql: operation %q selects no fields", op.Name)
	}
	return exprFromSelections(doc, root.SelectionSet, map[string]bool{}), nil
}

func findOperation(doc *ast.QueryDocument, name string) (*ast.OperationDefinition, error) {
	if name == "" {
		if len(doc.Operations) != 1 {
			return nil, fmt.Errorf("graphql: document defines %d operations, operation name required", len(doc.Operations))
		}
		return doc.Operations[0], nil
	}
	if op := doc.Operations.ForName(name); op != nil {
		return op, nil
	}
	return nil, fmt.Errorf("graphql: operation %q not found", name)
}

// firstField returns the first concrete field of the selection set,
// looking through fragments. seen guards against fragment cycles.
func firstField(doc *ast.QueryDocument, sels ast.SelectionSet, seen map[string]bool) *ast.Field {
	for _, sel := range sels {
		switch sel := sel.(type) {
		case *ast.Field:
			if !strings.HasPrefix(sel.Name, "__") {
				return sel
			}
		case *ast.InlineFragment:
			if f := firstField(doc, sel.SelectionSet, seen); f != nil {
				return f
			}
		case *ast.FragmentSpread:
			if seen[sel.Name] {
				continue
			}
			seen[sel.Name] = true
			if def := doc.Fragments.ForName(sel.Name); def != nil {
				if f := firstField(doc, def.SelectionSet, seen); f != nil {
					return f
				}
			}
		}
	}
	return nil
}

func exprFromSelections(doc *ast.QueryDocument, sels ast.SelectionSet, seen map[string]bool) *include.Expr {
	return include.New(nodesFromSelections(doc, sels, seen)...)
}

func nodesFromSelections(doc *ast.QueryDocument, sels ast.SelectionSet, seen map[string]bool) []*include.Node {
	var nodes []*include.Node
	for _, sel := range sels {
		switch sel := sel.(type) {
		case *ast.Field:
			if len(sel.SelectionSet) == 0 || strings.HasPrefix(sel.Name, "__") {
				continue
			}
			children := nodesFromSelections(doc, sel.SelectionSet, seen)
			nodes = append(nodes, include.NewNode(sel.Name, children...))
		case *ast.InlineFragment:
			nodes = append(nodes, nodesFromSelections(doc, sel.SelectionSet, seen)...)
		case *ast.FragmentSpread:
			if seen[sel.Name] {
				continue
			}
			seen[sel.Name] = true
			if def := doc.Fragments.ForName(sel.Name); def != nil {
				nodes = append(nodes, nodesFromSelections(doc, def.SelectionSet, seen)...)
			}
			delete(seen, sel.Name)
		}
	}
	return nodes
}
