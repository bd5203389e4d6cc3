// Package catalog loads the read-only reference tables (programs,
// requirements, institutions, scholarships, mentors, regional areas) and
// joins them into the candidate pools the retrieval flows score.
package catalog

import (
	"strings"

	"github.com/kamusis/studymatch/internal/labels"
)

// Institution is one row of institutions.csv, with scholarship terms merged
// in from scholarships.csv when present.
type Institution struct {
	ID          string
	Name        string
	Location    string
	Website     string
	OverallRank int // 1 = best; 0 = unranked
	TuitionLow  float64
	TuitionHigh float64

	ScholarshipPercent      float64 // fraction in [0,1]
	ScholarshipGPAThreshold float64
}

// Requirement holds the admission thresholds of one program.
type Requirement struct {
	MinGPA              float64
	EnglishRequiredType string
	EnglishMinScore     float64
}

// Program is one row of programs.csv.
type Program struct {
	ID               string
	Name             string
	InstitutionID    string
	DegreeLevel      string
	FieldTags        string
	TuitionPerYear   float64
	MigrationAligned bool
}

// ProgramRecord is a program joined 1:1 with its requirement and
// institution.
type ProgramRecord struct {
	Program
	Requirement
	Institution Institution
	// Regional is true when the institution's location is a designated
	// regional city.
	Regional bool
}

// TuitionLow returns the institution's lower tuition bound, falling back to
// the program's own yearly tuition.
func (r ProgramRecord) TuitionLow() float64 {
	if r.Institution.TuitionLow > 0 {
		return r.Institution.TuitionLow
	}
	return r.Program.TuitionPerYear
}

// Tags returns the parsed field tags.
func (r ProgramRecord) Tags() []string { return labels.Parse(r.FieldTags) }

// Mentor is one row of mentors.csv.
type Mentor struct {
	ID                  string
	ExpertiseTags       string
	Languages           string
	EducationBackground string
	YearsExperience     float64
}

// Speaks reports whether the mentor lists language (case-insensitive).
func (m Mentor) Speaks(language string) bool {
	language = labels.Normalize(language)
	for _, l := range labels.Parse(m.Languages) {
		if l == language {
			return true
		}
	}
	return false
}

// Catalog is the immutable in-memory view of every reference table.
type Catalog struct {
	Programs     []ProgramRecord
	Mentors      []Mentor
	Institutions map[string]Institution
	// MaxRank is the largest overall_rank over all institutions.
	MaxRank int
	// Skipped counts programs dropped by the inner joins.
	Skipped int

	regional map[string]struct{}
}

// IsRegional reports whether location is a designated regional city.
func (c *Catalog) IsRegional(location string) bool {
	_, ok := c.regional[strings.ToLower(strings.TrimSpace(location))]
	return ok
}

// ProgramsNamed returns the programs whose name matches one of names
// (case-insensitive, trimmed), in catalog order.
func (c *Catalog) ProgramsNamed(names []string) []ProgramRecord {
	want := make(map[string]struct{}, len(names))
	for _, n := range names {
		want[labels.Normalize(n)] = struct{}{}
	}
	var out []ProgramRecord
	for _, p := range c.Programs {
		if _, ok := want[labels.Normalize(p.Name)]; ok {
			out = append(out, p)
		}
	}
	return out
}

// Program looks a joined program up by id.
func (c *Catalog) Program(id string) (ProgramRecord, bool) {
	for _, p := range c.Programs {
		if p.ID == id {
			return p, true
		}
	}
	return ProgramRecord{}, false
}
