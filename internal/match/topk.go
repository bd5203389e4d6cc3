package match

import "sort"

// TopK keeps at most k rows per group. Groups are emitted in the order they
// are first seen in rows; inside a group rows are stably sorted by order
// descending. k <= 0 keeps every row.
func TopK[T any](rows []T, group func(T) string, order func(T) float64, k int) []T {
	var keys []string
	buckets := make(map[string][]T)
	for _, r := range rows {
		g := group(r)
		if _, seen := buckets[g]; !seen {
			keys = append(keys, g)
		}
		buckets[g] = append(buckets[g], r)
	}
	out := make([]T, 0, len(rows))
	for _, g := range keys {
		b := buckets[g]
		sort.SliceStable(b, func(i, j int) bool { return order(b[i]) > order(b[j]) })
		if k > 0 && len(b) > k {
			b = b[:k]
		}
		out = append(out, b...)
	}
	return out
}

// Head returns the first n rows, or all rows when n <= 0.
func Head[T any](rows []T, n int) []T {
	if n <= 0 || len(rows) <= n {
		return rows
	}
	return rows[:n]
}
