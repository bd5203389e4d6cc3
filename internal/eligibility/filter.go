// Package eligibility applies the hard admission predicates of a student to
// a pool of joined programs.
package eligibility

import (
	"github.com/kamusis/studymatch/internal/catalog"
	"github.com/kamusis/studymatch/internal/labels"
	"github.com/kamusis/studymatch/internal/match"
	"github.com/kamusis/studymatch/internal/profile"
)

// Candidate is one program that passed every predicate for one student.
type Candidate struct {
	catalog.ProgramRecord
	Tuition match.Tuition
}

// Filter returns the programs of pool the student qualifies for, in pool
// order. A program survives only if all of these hold:
//   - gpa >= min_gpa
//   - english test types are equal ignoring case and surrounding space
//   - english score >= the program's minimum
//   - degree goal equals degree level ignoring case
//   - when a budget is set, budget >= scholarship-adjusted tuition
//
// An invalid student yields a *profile.ValidationError. No survivors is not
// an error.
func Filter(s profile.Student, pool []catalog.ProgramRecord) ([]Candidate, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	out := make([]Candidate, 0)
	for _, p := range pool {
		if c, ok := admit(s, p); ok {
			out = append(out, c)
		}
	}
	return out, nil
}

// admit evaluates every predicate for one pair.
func admit(s profile.Student, p catalog.ProgramRecord) (Candidate, bool) {
	if s.GPA < p.MinGPA {
		return Candidate{}, false
	}
	if !labels.EqualFold(s.EnglishTestType, p.EnglishRequiredType) {
		return Candidate{}, false
	}
	if s.EnglishScore < p.EnglishMinScore {
		return Candidate{}, false
	}
	if !labels.EqualFold(s.DegreeGoal, p.DegreeLevel) {
		return Candidate{}, false
	}
	t := match.EffectiveTuition(p.TuitionLow(), p.Institution.ScholarshipPercent, p.Institution.ScholarshipGPAThreshold, s.GPA)
	if s.HasBudget() && s.Budget() < t.Effective {
		return Candidate{}, false
	}
	return Candidate{ProgramRecord: p, Tuition: t}, true
}
