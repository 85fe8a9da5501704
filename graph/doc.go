// Package graph materializes and resolves connected entity graphs.
//
// It builds on the relation registry of the root package and the mapped
// SQL builders of dialect/sql. Two engines live here:
//
//   - The Materializer inserts a nested literal object graph across
//     tables in dependency order, wiring foreign keys as generated
//     keys become available.
//
//   - The Resolver fetches a root entity set together with the relations
//     named by an inclusion expression, using one of three
//     interchangeable strategies.
//
// # Inserting a graph
//
//	m := graph.NewMaterializer(registry, drv, graph.WithMapper(naming.SnakeCase()))
//	root, err := m.InsertGraph(ctx, "Person", map[string]any{
//	    "firstName": "Seppo",
//	    "parent":    map[string]any{"firstName": "Teppo"},
//	    "pets": []any{
//	        map[string]any{"animalName": "Hurtta"},
//	    },
//	})
//
// Related objects referenced through a belongs-to relation are inserted
// before their owner; has-many and many-to-many children after it.
//
// # Resolving a graph
//
//	r := graph.NewResolver(registry, drv, graph.WithMapper(naming.SnakeCase()))
//	people, err := r.Query("Person").
//	    Where(sql.FieldEQ("firstName", "Seppo")).
//	    Include("parent.parent, pets").
//	    Modify("pets", sql.OrderByField("animalName")).
//	    All(ctx)
//
// # Strategies
//
// NaiveEager issues one query per parent instance per relation.
// WhereInEager issues one query per relation path, batched over all
// parents with a WHERE ... IN filter. JoinEager issues a single joined
// query per call and folds the flattened rows back into a nested graph.
// All three produce structurally identical results; they differ only in
// the number and shape of the statements they execute.
package graph
