package catalog

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// column is a logical column and the header names it may appear under.
type column struct {
	name    string
	aliases []string
}

func col(name string, aliases ...string) column {
	return column{name: name, aliases: aliases}
}

// table is a parsed CSV file with a normalized header.
type table struct {
	name   string
	header map[string]int
	rows   [][]string
	idx    map[string]int
}

func readTable(path string) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	reader := csv.NewReader(bufio.NewReader(f))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", filepath.Base(path), err)
	}
	t := &table{name: filepath.Base(path), header: map[string]int{}}
	if len(records) == 0 {
		return t, nil
	}
	for i, h := range records[0] {
		h = headerKey(h)
		if _, dup := t.header[h]; !dup {
			t.header[h] = i
		}
	}
	for _, rec := range records[1:] {
		if blankRecord(rec) {
			continue
		}
		t.rows = append(t.rows, rec)
	}
	return t, nil
}

// resolve maps required and optional logical columns to header positions.
// Any required column without a matching header yields a *ConfigurationError.
func (t *table) resolve(required, optional []column) error {
	t.idx = make(map[string]int, len(required)+len(optional))
	var missing []string
	for _, c := range required {
		if i, ok := t.find(c); ok {
			t.idx[c.name] = i
		} else {
			missing = append(missing, c.name)
		}
	}
	if len(missing) > 0 {
		return &ConfigurationError{Table: t.name, Missing: missing}
	}
	for _, c := range optional {
		if i, ok := t.find(c); ok {
			t.idx[c.name] = i
		}
	}
	return nil
}

func (t *table) find(c column) (int, bool) {
	if i, ok := t.header[c.name]; ok {
		return i, true
	}
	for _, a := range c.aliases {
		if i, ok := t.header[headerKey(a)]; ok {
			return i, true
		}
	}
	return 0, false
}

// str returns the trimmed cell of a resolved column, or "" when the column
// is absent or the row is short.
func (t *table) str(rec []string, name string) string {
	i, ok := t.idx[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return cleanCell(rec[i])
}

// num parses a numeric cell; empty cells and NaN markers read as 0.
func (t *table) num(rec []string, line int, name string) (float64, error) {
	s := t.str(rec, name)
	switch strings.ToLower(s) {
	case "", "nan", "na", "n/a", "null":
		return 0, nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("%s line %d column %s: %q is not a number", t.name, line, name, s)
	}
	return v, nil
}

func (t *table) boolean(rec []string, name string) bool {
	switch strings.ToLower(t.str(rec, name)) {
	case "1", "true", "yes", "y", "t":
		return true
	}
	return false
}

func headerKey(s string) string {
	return strings.ToLower(cleanCell(s))
}

func cleanCell(s string) string {
	return strings.TrimSpace(strings.TrimPrefix(s, "\ufeff"))
}

func blankRecord(rec []string) bool {
	for _, c := range rec {
		if cleanCell(c) != "" {
			return false
		}
	}
	return true
}

func fileExists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}
