// Package graphql derives eager-loading include expressions from
// GraphQL selection sets, so a resolver fetches an entity graph in as
// few queries as the active strategy allows instead of one query per
// nested resolver.
//
// Two entry points are provided. FromQuery works on raw query text and
// needs no server runtime:
//
//	expr, err := graphql.FromQuery(`{ person { firstName pets { animalName } } }`, "")
//	people, err := resolver.Query("Person").IncludeExpr(expr).All(ctx)
//
// FromContext integrates with gqlgen resolvers and reads the selection
// set of the field being resolved:
//
//	func (r *queryResolver) Person(ctx context.Context, id int) (graph.Instance, error) {
//		q := r.resolver.Query("Person").IncludeExpr(graphql.FromContext(ctx))
//		...
//	}
package graphql
