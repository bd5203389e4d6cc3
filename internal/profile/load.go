package profile

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Accepted keys per field; the first is canonical, the rest are legacy names.
var (
	keyStudentID   = []string{"student_id"}
	keyMajorIntent = []string{"major_intent"}
	keyDegreeGoal  = []string{"degree_goal"}
	keyTestType    = []string{"english_test_type"}
	keyScore       = []string{"english_score", "english_score_overall"}
	keyGPA         = []string{"gpa", "gpa_std_4"}
	keyInterests   = []string{"interests"}
	keyBudget      = []string{"budget_per_year", "budget_aud_per_year"}
	keyMigration   = []string{"migration_interest"}
)

// LoadFile reads a single student profile from a JSON file.
func LoadFile(path string) (Student, error) {
	students, err := LoadAll(path)
	if err != nil {
		return Student{}, err
	}
	if len(students) != 1 {
		return Student{}, fmt.Errorf("%s holds %d profiles, want 1", path, len(students))
	}
	return students[0], nil
}

// LoadAll reads a JSON file holding either one profile object or an array of
// them. Like DecodeAll it returns the valid profiles of an array together
// with a *BatchError naming the rejected ones.
func LoadAll(path string) ([]Student, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read student profile %s: %w", path, err)
	}
	students, err := DecodeAll(bytes.NewReader(data))
	if err != nil {
		return students, fmt.Errorf("student profile %s: %w", path, err)
	}
	return students, nil
}

// Decode reads one profile object from r and validates it.
func Decode(r io.Reader) (Student, error) {
	var raw map[string]any
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return Student{}, fmt.Errorf("cannot decode student profile: %w", err)
	}
	return FromMap(raw)
}

// DecodeAll reads a profile object or an array of profile objects from r.
// Every element of an array is validated on its own: the valid students are
// returned in input order and, when any element fails, err is a *BatchError
// listing the failures.
func DecodeAll(r io.Reader) ([]Student, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] != '[' {
		s, err := Decode(bytes.NewReader(trimmed))
		if err != nil {
			return nil, err
		}
		return []Student{s}, nil
	}
	var raws []map[string]any
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	if err := dec.Decode(&raws); err != nil {
		return nil, fmt.Errorf("cannot decode student profiles: %w", err)
	}
	out := make([]Student, 0, len(raws))
	var batch BatchError
	for i, raw := range raws {
		s, err := FromMap(raw)
		if err != nil {
			id, _ := lookup(raw, keyStudentID)
			batch.Rejected = append(batch.Rejected, RejectedProfile{
				Index:     i + 1,
				StudentID: strings.TrimSpace(toString(id)),
				Err:       err,
			})
			continue
		}
		out = append(out, s)
	}
	if len(batch.Rejected) > 0 {
		return out, &batch
	}
	return out, nil
}

// FromMap builds a Student from loosely typed fields, as produced by a JSON
// decoder or a form. Numeric fields may be numbers or numeric strings.
// Missing required fields and unparsable numbers yield a *ValidationError.
func FromMap(raw map[string]any) (Student, error) {
	verr := &ValidationError{}
	var s Student

	s.StudentID = requireString(raw, keyStudentID, verr)
	s.MajorIntent = requireString(raw, keyMajorIntent, verr)
	s.DegreeGoal = requireString(raw, keyDegreeGoal, verr)
	s.EnglishTestType = requireString(raw, keyTestType, verr)
	s.EnglishScore = requireNumber(raw, keyScore, verr)
	s.GPA = requireNumber(raw, keyGPA, verr)

	if v, ok := lookup(raw, keyInterests); !ok {
		verr.add(keyInterests[0], "is required")
	} else if v != nil {
		s.Interests = toString(v)
	}

	if v, ok := lookup(raw, keyBudget); ok && !blank(v) {
		f, err := toFloat(v)
		if err != nil {
			verr.add(keyBudget[0], "must be a number")
		} else {
			s.BudgetPerYear = &f
		}
	}
	if v, ok := lookup(raw, keyMigration); ok && !blank(v) {
		b, err := toBool(v)
		if err != nil {
			verr.add(keyMigration[0], "must be a boolean")
		} else {
			s.MigrationInterest = &b
		}
	}

	if err := verr.orNil(); err != nil {
		return Student{}, err
	}
	if err := s.Validate(); err != nil {
		return Student{}, err
	}
	return s, nil
}

func lookup(raw map[string]any, keys []string) (any, bool) {
	for _, k := range keys {
		if v, ok := raw[k]; ok {
			return v, true
		}
	}
	return nil, false
}

func requireString(raw map[string]any, keys []string, verr *ValidationError) string {
	v, ok := lookup(raw, keys)
	if !ok || blank(v) {
		verr.add(keys[0], "is required")
		return ""
	}
	return strings.TrimSpace(toString(v))
}

func requireNumber(raw map[string]any, keys []string, verr *ValidationError) float64 {
	v, ok := lookup(raw, keys)
	if !ok || blank(v) {
		verr.add(keys[0], "is required")
		return 0
	}
	f, err := toFloat(v)
	if err != nil {
		verr.add(keys[0], "must be a number")
		return 0
	}
	return f
}

func blank(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

func toFloat(v any) (float64, error) {
	switch t := v.(type) {
	case json.Number:
		return t.Float64()
	case float64:
		return t, nil
	case int:
		return float64(t), nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(t), 64)
	default:
		return 0, fmt.Errorf("not a number: %T", v)
	}
}

func toBool(v any) (bool, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	case json.Number:
		f, err := t.Float64()
		return f != 0, err
	case float64:
		return t != 0, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes", "y", "1":
			return true, nil
		case "false", "no", "n", "0":
			return false, nil
		}
	}
	return false, fmt.Errorf("not a boolean: %v", v)
}
