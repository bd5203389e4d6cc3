// Package simtable holds the label-to-label similarity tables consumed by the
// scorers. Rows and columns are two label vocabularies; they may overlap but
// are never collapsed, so an asymmetric table keeps its orientation.
package simtable

import (
	"fmt"
	"math"

	"github.com/kamusis/studymatch/internal/labels"
)

// Lookuper is the only contract the scorers need.
type Lookuper interface {
	Lookup(row, col string) float64
}

// Table is an immutable row×col similarity table with values in [0,1].
type Table struct {
	rows   []string
	cols   []string
	rowIdx map[string]int
	colIdx map[string]int
	values [][]float64
}

// New builds a Table. Labels are normalized; values are clamped to [0,1].
// Duplicate row or column labels are rejected.
func New(rows, cols []string, values [][]float64) (*Table, error) {
	if len(values) != len(rows) {
		return nil, fmt.Errorf("%w: %d value rows for %d row labels", ErrShape, len(values), len(rows))
	}
	t := &Table{
		rows:   make([]string, len(rows)),
		cols:   make([]string, len(cols)),
		rowIdx: make(map[string]int, len(rows)),
		colIdx: make(map[string]int, len(cols)),
		values: make([][]float64, len(rows)),
	}
	for j, c := range cols {
		c = labels.Normalize(c)
		if _, dup := t.colIdx[c]; dup {
			return nil, fmt.Errorf("%w: column %q", ErrDuplicateLabel, c)
		}
		t.cols[j] = c
		t.colIdx[c] = j
	}
	for i, r := range rows {
		r = labels.Normalize(r)
		if _, dup := t.rowIdx[r]; dup {
			return nil, fmt.Errorf("%w: row %q", ErrDuplicateLabel, r)
		}
		if len(values[i]) != len(cols) {
			return nil, fmt.Errorf("%w: row %q has %d values for %d columns", ErrShape, r, len(values[i]), len(cols))
		}
		t.rows[i] = r
		t.rowIdx[r] = i
		line := make([]float64, len(cols))
		for j, v := range values[i] {
			line[j] = clamp01(v)
		}
		t.values[i] = line
	}
	return t, nil
}

// Lookup returns the similarity of (row, col), or 0 when either label is
// unknown. It never fails.
func (t *Table) Lookup(row, col string) float64 {
	if t == nil {
		return 0
	}
	i, ok := t.rowIdx[row]
	if !ok {
		i, ok = t.rowIdx[labels.Normalize(row)]
		if !ok {
			return 0
		}
	}
	j, ok := t.colIdx[col]
	if !ok {
		j, ok = t.colIdx[labels.Normalize(col)]
		if !ok {
			return 0
		}
	}
	return t.values[i][j]
}

// Cols returns a copy of the column vocabulary in table order.
func (t *Table) Cols() []string {
	return append([]string(nil), t.cols...)
}

// Shape returns (rows, cols).
func (t *Table) Shape() (int, int) {
	return len(t.rows), len(t.cols)
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
