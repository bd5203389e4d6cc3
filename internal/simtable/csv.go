package simtable

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Load reads a similarity table CSV. The first header cell is ignored, the
// first column holds row labels and every other cell must be numeric. Empty
// cells read as 0.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open similarity table %s: %w", path, err)
	}
	defer f.Close()
	t, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("invalid similarity table %s: %w", path, err)
	}
	return t, nil
}

// Read parses a similarity table from r.
func Read(r io.Reader) (*Table, error) {
	reader := csv.NewReader(bufio.NewReader(r))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrShape)
	}
	header := records[0]
	if len(header) < 2 {
		return nil, fmt.Errorf("%w: header needs a label column and at least one value column", ErrShape)
	}
	cols := make([]string, 0, len(header)-1)
	for _, c := range header[1:] {
		cols = append(cols, cleanCell(c))
	}

	var (
		rows   []string
		values [][]float64
	)
	for n, rec := range records[1:] {
		if len(rec) == 0 || (len(rec) == 1 && cleanCell(rec[0]) == "") {
			continue
		}
		if len(rec) != len(header) {
			return nil, fmt.Errorf("%w: line %d has %d cells, header has %d", ErrShape, n+2, len(rec), len(header))
		}
		line := make([]float64, len(cols))
		for j, cell := range rec[1:] {
			cell = cleanCell(cell)
			if cell == "" {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d column %q: %w", n+2, cols[j], err)
			}
			line[j] = v
		}
		rows = append(rows, cleanCell(rec[0]))
		values = append(values, line)
	}
	return New(rows, cols, values)
}

// Write stores t as CSV at path using the same layout Load expects.
func Write(path string, t *Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create similarity table %s: %w", path, err)
	}
	if err := Encode(f, t); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Encode writes t as CSV to w.
func Encode(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	header := append([]string{""}, t.cols...)
	if err := cw.Write(header); err != nil {
		return err
	}
	for i, r := range t.rows {
		rec := make([]string, 0, len(t.cols)+1)
		rec = append(rec, r)
		for _, v := range t.values[i] {
			rec = append(rec, strconv.FormatFloat(v, 'f', -1, 64))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func cleanCell(s string) string {
	return strings.TrimSpace(strings.TrimPrefix(s, "\ufeff"))
}
