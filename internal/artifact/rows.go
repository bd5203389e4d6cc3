// Package artifact persists ranked results: fixed-column CSV files in the
// output directory and an optional SQLite mirror.
package artifact

import (
	"strconv"
)

// File names inside the output directory.
const (
	ProgramFile = "student_program.csv"
	CoreFile    = "core_program.csv"
	MentorFile  = "program_mentor_scored.csv"
	SQLiteFile  = "artifacts.db"
)

// ProgramHeader is the column order of student_program.csv.
var ProgramHeader = []string{
	"student_id", "program_id", "program_name", "institution_id", "institution_name",
	"location", "website", "overall_rank", "interests", "field_tags",
	"label_match", "weight", "relevance", "tuition_low", "scholarship_reduction",
	"effective_tuition", "designated_regional", "student_migration", "pred_label_match",
}

// CoreHeader is the column order of core_program.csv.
var CoreHeader = []string{"student_id", "interests", "core_program", "program_match", "pred_label_match"}

// MentorHeader is the column order of program_mentor_scored.csv.
var MentorHeader = []string{
	"program_id", "field_tags", "mentor_id", "expertise_tags", "languages",
	"education_background", "years_experience", "label_match", "pred_label_match",
}

// ProgramRow is one ranked (student, program) pair.
type ProgramRow struct {
	StudentID            string
	ProgramID            string
	ProgramName          string
	InstitutionID        string
	InstitutionName      string
	Location             string
	Website              string
	OverallRank          int
	Interests            string
	FieldTags            string
	LabelMatch           float64
	Weight               float64
	Relevance            float64
	TuitionLow           float64
	ScholarshipReduction float64
	EffectiveTuition     float64
	DesignatedRegional   bool
	StudentMigration     bool
	PredLabelMatch       float64
}

// Record renders r in ProgramHeader order.
func (r ProgramRow) Record() []string {
	return []string{
		r.StudentID, r.ProgramID, r.ProgramName, r.InstitutionID, r.InstitutionName,
		r.Location, r.Website, strconv.Itoa(r.OverallRank), r.Interests, r.FieldTags,
		num(r.LabelMatch), num(r.Weight), num(r.Relevance), num(r.TuitionLow), num(r.ScholarshipReduction),
		num(r.EffectiveTuition), flag(r.DesignatedRegional), flag(r.StudentMigration), num(r.PredLabelMatch),
	}
}

// CoreRow is one (student, core cluster) pair.
type CoreRow struct {
	StudentID      string
	Interests      string
	CoreProgram    string
	ProgramMatch   float64
	PredLabelMatch float64
}

// Record renders r in CoreHeader order.
func (r CoreRow) Record() []string {
	return []string{r.StudentID, r.Interests, r.CoreProgram, num(r.ProgramMatch), num(r.PredLabelMatch)}
}

// MentorRow is one (program, mentor) pair.
type MentorRow struct {
	ProgramID           string
	FieldTags           string
	MentorID            string
	ExpertiseTags       string
	Languages           string
	EducationBackground string
	YearsExperience     float64
	LabelMatch          float64
	PredLabelMatch      float64
}

// Record renders r in MentorHeader order.
func (r MentorRow) Record() []string {
	return []string{
		r.ProgramID, r.FieldTags, r.MentorID, r.ExpertiseTags, r.Languages,
		r.EducationBackground, num(r.YearsExperience), num(r.LabelMatch), num(r.PredLabelMatch),
	}
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
