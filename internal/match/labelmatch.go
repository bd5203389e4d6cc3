// Package match implements the scoring core: label-match averaging over a
// similarity table, rank weighting, scholarship adjustment, the two scoring
// strategies, deterministic ordering and top-K per group.
package match

import (
	"github.com/kamusis/studymatch/internal/labels"
	"github.com/kamusis/studymatch/internal/simtable"
)

// LabelMatch averages table.Lookup(a_i, b_j) over every pair of a×b and
// rounds to two decimals. Labels of a index rows, labels of b index columns.
// Duplicates are kept and each repetition contributes its own term. Either
// list empty yields 0.
func LabelMatch(a, b []string, table simtable.Lookuper) float64 {
	m, n := len(a), len(b)
	if m == 0 || n == 0 || table == nil {
		return 0
	}
	total := 0.0
	for _, x := range a {
		for _, y := range b {
			total += table.Lookup(x, y)
		}
	}
	return Bound(total/float64(m*n), ScoreDecimals)
}

// LabelMatchCells parses two raw list cells and scores them.
func LabelMatchCells(a, b string, table simtable.Lookuper) float64 {
	return LabelMatch(labels.Parse(a), labels.Parse(b), table)
}

// OverlapFraction is |set(interests) ∩ set(tags)| / |set(interests)|.
func OverlapFraction(interests, tags []string) float64 {
	is := labels.Set(interests)
	if len(is) == 0 {
		return 0
	}
	ts := labels.Set(tags)
	hit := 0
	for l := range is {
		if _, ok := ts[l]; ok {
			hit++
		}
	}
	return float64(hit) / float64(len(is))
}
