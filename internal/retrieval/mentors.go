package retrieval

import (
	"github.com/kamusis/studymatch/internal/artifact"
	"github.com/kamusis/studymatch/internal/catalog"
	"github.com/kamusis/studymatch/internal/labels"
	"github.com/kamusis/studymatch/internal/logging"
	"github.com/kamusis/studymatch/internal/match"
)

// MentorRequest ranks mentors for the best programs of a program artifact.
type MentorRequest struct {
	// Programs is the ranked program artifact, the candidate pool.
	Programs []artifact.ProgramRow
	// TopPrograms is how many distinct programs get mentors; 0 keeps all.
	TopPrograms int
	// PerProgram caps mentors per program; 0 keeps all.
	PerProgram int
	// Language keeps only mentors who list it, when set.
	Language string
}

// Mentors cross-joins the top programs with the mentor table, scores field
// tags against expertise tags, and keeps the best PerProgram mentors per
// program. Programs appear in the order of their best-scoring mentor.
func (e *Engine) Mentors(req MentorRequest) []artifact.MentorRow {
	programs := append([]artifact.ProgramRow(nil), req.Programs...)
	match.SortByKey(programs, func(r artifact.ProgramRow) match.Key {
		return match.Key{Score: r.PredLabelMatch, StudentID: r.StudentID, GroupID: r.ProgramID}
	})
	programs = distinctPrograms(programs)
	programs = match.Head(programs, req.TopPrograms)

	mentors := e.catalog.Mentors
	if req.Language != "" {
		mentors = filterMentors(mentors, req.Language)
	}

	var rows []artifact.MentorRow
	for _, p := range programs {
		tags := labels.Parse(p.FieldTags)
		for _, m := range mentors {
			exp := labels.Parse(m.ExpertiseTags)
			lm := match.LabelMatch(tags, exp, e.tables.Mentor)
			rows = append(rows, artifact.MentorRow{
				ProgramID:           p.ProgramID,
				FieldTags:           labels.Join(tags),
				MentorID:            m.ID,
				ExpertiseTags:       labels.Join(exp),
				Languages:           labels.Join(labels.Parse(m.Languages)),
				EducationBackground: m.EducationBackground,
				YearsExperience:     m.YearsExperience,
				LabelMatch:          lm,
				PredLabelMatch:      refine(e.models.Mentor, tags, exp, lm),
			})
		}
	}
	match.SortByKey(rows, func(r artifact.MentorRow) match.Key {
		return match.Key{Score: r.PredLabelMatch, GroupID: r.ProgramID, CandidateID: r.MentorID}
	})
	out := match.TopK(rows,
		func(r artifact.MentorRow) string { return r.ProgramID },
		func(r artifact.MentorRow) float64 { return r.PredLabelMatch },
		req.PerProgram)

	log := logging.With("retrieval")
	log.Info().
		Int("programs", len(programs)).
		Int("mentors", len(mentors)).
		Int("returned", len(out)).
		Msg("mentor retrieval done")
	return out
}

func distinctPrograms(rows []artifact.ProgramRow) []artifact.ProgramRow {
	seen := make(map[string]struct{}, len(rows))
	out := rows[:0]
	for _, r := range rows {
		if _, ok := seen[r.ProgramID]; ok {
			continue
		}
		seen[r.ProgramID] = struct{}{}
		out = append(out, r)
	}
	return out
}

func filterMentors(ms []catalog.Mentor, language string) []catalog.Mentor {
	var out []catalog.Mentor
	for _, m := range ms {
		if m.Speaks(language) {
			out = append(out, m)
		}
	}
	return out
}
