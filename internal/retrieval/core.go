package retrieval

import (
	"github.com/kamusis/studymatch/internal/artifact"
	"github.com/kamusis/studymatch/internal/labels"
	"github.com/kamusis/studymatch/internal/match"
	"github.com/kamusis/studymatch/internal/profile"
)

// Core scores the student's interests against every core cluster (the
// columns of the core table) and returns all clusters ranked.
func (e *Engine) Core(s profile.Student) ([]artifact.CoreRow, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if e.tables.Core == nil {
		return nil, nil
	}
	interests := s.InterestLabels()
	clusters := e.tables.Core.Cols()
	rows := make([]artifact.CoreRow, 0, len(clusters))
	for _, cluster := range clusters {
		tags := labels.Parse(cluster)
		pm := match.LabelMatch(interests, tags, e.tables.Core)
		rows = append(rows, artifact.CoreRow{
			StudentID:      s.StudentID,
			Interests:      labels.Join(interests),
			CoreProgram:    cluster,
			ProgramMatch:   pm,
			PredLabelMatch: refine(e.models.Core, interests, tags, pm),
		})
	}
	match.SortByKey(rows, func(r artifact.CoreRow) match.Key {
		return match.Key{Score: r.PredLabelMatch, StudentID: r.StudentID, GroupID: r.CoreProgram}
	})
	return rows, nil
}
