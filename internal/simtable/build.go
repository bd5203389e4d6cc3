package simtable

import (
	"strconv"

	"github.com/kamusis/studymatch/internal/vecstore"
)

// FromVectors builds a table of cosine similarities between every row label
// and every column label, clipped to [0,1] and rounded to decimals places.
// Labels without a stored vector score 0 against everything.
func FromVectors(store *vecstore.Store, rows, cols []string, decimals int) (*Table, error) {
	values := make([][]float64, len(rows))
	for i, r := range rows {
		line := make([]float64, len(cols))
		for j, c := range cols {
			if sim, ok := store.Similarity(r, c); ok {
				line[j] = roundTo(clamp01(sim), decimals)
			}
		}
		values[i] = line
	}
	return New(rows, cols, values)
}

// roundTo rounds the exact binary value of v half to even, so 0.125 becomes
// 0.12 at two places.
func roundTo(v float64, decimals int) float64 {
	r, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', decimals, 64), 64)
	return r
}
