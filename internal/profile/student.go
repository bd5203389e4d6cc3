// Package profile loads and validates the student profile a retrieval
// request runs against.
package profile

import (
	"github.com/kamusis/studymatch/internal/labels"
)

// Student is one prospective student. It is immutable for the duration of a
// retrieval request.
type Student struct {
	StudentID       string  `json:"student_id" validate:"required"`
	MajorIntent     string  `json:"major_intent" validate:"required"`
	DegreeGoal      string  `json:"degree_goal" validate:"required"`
	EnglishTestType string  `json:"english_test_type" validate:"required"`
	EnglishScore    float64 `json:"english_score" validate:"gte=0"`
	GPA             float64 `json:"gpa" validate:"gte=0,lte=4"`
	// Interests is the raw semicolon-separated list as supplied.
	Interests string `json:"interests"`

	BudgetPerYear     *float64 `json:"budget_per_year,omitempty" validate:"omitempty,gte=0"`
	MigrationInterest *bool    `json:"migration_interest,omitempty"`
}

// InterestLabels returns the parsed, normalized interest labels.
func (s Student) InterestLabels() []string {
	return labels.Parse(s.Interests)
}

// HasBudget reports whether a yearly budget was supplied.
func (s Student) HasBudget() bool { return s.BudgetPerYear != nil }

// Budget returns the yearly budget, or 0 when none was supplied.
func (s Student) Budget() float64 {
	if s.BudgetPerYear == nil {
		return 0
	}
	return *s.BudgetPerYear
}

// WantsMigration reports whether the student asked for migration-friendly
// programs.
func (s Student) WantsMigration() bool {
	return s.MigrationInterest != nil && *s.MigrationInterest
}

// Validate checks the struct constraints and returns a *ValidationError
// listing every offending field.
func (s Student) Validate() error {
	return validateStruct(s)
}
