package artifact

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// WriteCSV writes header and records to path through a temp file and an
// atomic rename, so readers never observe a half-written artifact.
func WriteCSV(path string, header []string, records [][]string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("cannot create temp file in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	bw := bufio.NewWriter(tmp)
	w := csv.NewWriter(bw)
	if err := w.Write(header); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := w.WriteAll(records); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("cannot write %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("cannot replace %s: %w", path, err)
	}
	return nil
}

// ReadPrograms reads a student_program.csv artifact. Columns are matched by
// name, so extra columns are ignored and missing score columns read as 0.
// A non-numeric score or rank cell fails the read with its line and column.
func ReadPrograms(path string) ([]ProgramRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open program artifact %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(bufio.NewReader(f))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("cannot read program artifact %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	idx := make(map[string]int, len(records[0]))
	for i, h := range records[0] {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, req := range []string{"program_id", "field_tags"} {
		if _, ok := idx[req]; !ok {
			return nil, fmt.Errorf("program artifact %s has no %s column", path, req)
		}
	}
	out := make([]ProgramRow, 0, len(records)-1)
	for i, rec := range records[1:] {
		c := cells{path: path, idx: idx, rec: rec, line: i + 2}
		row := ProgramRow{
			StudentID:            c.str("student_id"),
			ProgramID:            c.str("program_id"),
			ProgramName:          c.str("program_name"),
			InstitutionID:        c.str("institution_id"),
			InstitutionName:      c.str("institution_name"),
			Location:             c.str("location"),
			Website:              c.str("website"),
			OverallRank:          c.integer("overall_rank"),
			Interests:            c.str("interests"),
			FieldTags:            c.str("field_tags"),
			LabelMatch:           c.num("label_match"),
			Weight:               c.num("weight"),
			Relevance:            c.num("relevance"),
			TuitionLow:           c.num("tuition_low"),
			ScholarshipReduction: c.num("scholarship_reduction"),
			EffectiveTuition:     c.num("effective_tuition"),
			DesignatedRegional:   c.str("designated_regional") == "1",
			StudentMigration:     c.str("student_migration") == "1",
			PredLabelMatch:       c.num("pred_label_match"),
		}
		if c.err != nil {
			return nil, c.err
		}
		out = append(out, row)
	}
	return out, nil
}

// cells reads one artifact record by column name and keeps the first
// malformed number it meets. Empty cells read as 0.
type cells struct {
	path string
	idx  map[string]int
	rec  []string
	line int
	err  error
}

func (c *cells) str(col string) string {
	i, ok := c.idx[col]
	if !ok || i >= len(c.rec) {
		return ""
	}
	return strings.TrimSpace(c.rec[i])
}

func (c *cells) num(col string) float64 {
	s := c.str(col)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		c.fail(col, s)
		return 0
	}
	return v
}

func (c *cells) integer(col string) int {
	s := c.str(col)
	if s == "" {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		c.fail(col, s)
		return 0
	}
	return v
}

func (c *cells) fail(col, s string) {
	if c.err == nil {
		c.err = fmt.Errorf("%s line %d column %s: %q is not a number", c.path, c.line, col, s)
	}
}

func programRecords(rows []ProgramRow) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = r.Record()
	}
	return out
}

func coreRecords(rows []CoreRow) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = r.Record()
	}
	return out
}

func mentorRecords(rows []MentorRow) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = r.Record()
	}
	return out
}
