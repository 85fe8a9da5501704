package graph

// Batch grouping helpers used by the eager strategies to correlate
// fetched rows back to their parents.

// groupByKey groups values by a key function, preserving the input
// order within each group.
func groupByKey[K comparable, V any](values []V, keyFn func(V) K) map[K][]V {
	groups := make(map[K][]V)
	for _, v := range values {
		k := keyFn(v)
		groups[k] = append(groups[k], v)
	}
	return groups
}

// orderGroupsByKeys orders grouped values to match the order of the
// requested keys. Keys with no group yield a nil entry.
func orderGroupsByKeys[K comparable, V any](keys []K, groups map[K][]V) [][]V {
	out := make([][]V, len(keys))
	for i, k := range keys {
		out[i] = groups[k]
	}
	return out
}

// indexByKey indexes values by a key function. On duplicate keys the
// first value wins, matching fetch order.
func indexByKey[K comparable, V any](values []V, keyFn func(V) K) map[K]V {
	index := make(map[K]V, len(values))
	for _, v := range values {
		k := keyFn(v)
		if _, ok := index[k]; !ok {
			index[k] = v
		}
	}
	return index
}
