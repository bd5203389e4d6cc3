package retrieval

import (
	"github.com/kamusis/studymatch/internal/artifact"
	"github.com/kamusis/studymatch/internal/eligibility"
	"github.com/kamusis/studymatch/internal/labels"
	"github.com/kamusis/studymatch/internal/logging"
	"github.com/kamusis/studymatch/internal/match"
	"github.com/kamusis/studymatch/internal/profile"
)

// Request is one program retrieval for one student.
type Request struct {
	Student profile.Student
	// TopN caps the ranked programs; 0 keeps all.
	TopN int
	// Strategy defaults to pairwise over the program table.
	Strategy match.ScoringStrategy
	// ViaCore routes students with migration interest through the core
	// cluster stage first.
	ViaCore bool
	// CoreTopN is how many core clusters feed the program stage.
	CoreTopN int
}

// ProgramResult is the outcome of Programs.
type ProgramResult struct {
	Rows []artifact.ProgramRow
	// Core is set when the request went through the core stage.
	Core []artifact.CoreRow
	// Eligible counts programs that passed every predicate before TopN.
	Eligible int
}

// Programs filters the catalog for the student, scores the survivors, and
// returns them ranked. Without survivors the result is empty, not an error.
func (e *Engine) Programs(req Request) (ProgramResult, error) {
	s := req.Student
	log := logging.With("retrieval")

	var (
		res        ProgramResult
		candidates []eligibility.Candidate
		err        error
	)
	if req.ViaCore && s.WantsMigration() && e.tables.Core != nil {
		core, err := e.Core(s)
		if err != nil {
			return ProgramResult{}, err
		}
		res.Core = core
		names := make([]string, 0, len(core))
		for _, c := range match.Head(core, orDefault(req.CoreTopN, 3)) {
			names = append(names, c.CoreProgram)
		}
		pool := e.catalog.ProgramsNamed(names)
		log.Debug().Str("student_id", s.StudentID).Strs("core", names).Int("pool", len(pool)).Msg("core clusters selected")
		candidates, err = eligibility.Filter(s, pool)
		if err != nil {
			return ProgramResult{}, err
		}
	} else {
		candidates, err = e.index.Filter(s)
		if err != nil {
			return ProgramResult{}, err
		}
	}
	res.Eligible = len(candidates)

	strategy := req.Strategy
	if strategy == nil {
		strategy = match.PairwiseStrategy{Table: e.tables.Program, MaxRank: e.catalog.MaxRank}
	}
	interests := s.InterestLabels()
	items := make([]match.Item, len(candidates))
	for i, c := range candidates {
		items[i] = match.Item{Interests: interests, Tags: c.Tags(), Rank: c.Institution.OverallRank}
	}
	scores := strategy.Score(items)

	rows := make([]artifact.ProgramRow, len(candidates))
	for i, c := range candidates {
		sc := scores[i]
		rows[i] = artifact.ProgramRow{
			StudentID:            s.StudentID,
			ProgramID:            c.ID,
			ProgramName:          c.Name,
			InstitutionID:        c.InstitutionID,
			InstitutionName:      c.Institution.Name,
			Location:             c.Institution.Location,
			Website:              c.Institution.Website,
			OverallRank:          c.Institution.OverallRank,
			Interests:            labels.Join(interests),
			FieldTags:            labels.Join(items[i].Tags),
			LabelMatch:           sc.LabelMatch,
			Weight:               sc.Weight,
			Relevance:            sc.Relevance,
			TuitionLow:           c.Tuition.Low,
			ScholarshipReduction: c.Tuition.Reduction,
			EffectiveTuition:     c.Tuition.Effective,
			DesignatedRegional:   c.Regional,
			StudentMigration:     s.WantsMigration(),
			PredLabelMatch:       refine(e.models.Program, interests, items[i].Tags, sc.Composite),
		}
	}
	match.SortByKey(rows, programKey)
	res.Rows = match.Head(rows, req.TopN)

	log.Info().
		Str("student_id", s.StudentID).
		Str("strategy", strategy.Name()).
		Int("eligible", res.Eligible).
		Int("returned", len(res.Rows)).
		Msg("program retrieval done")
	return res, nil
}

// ProgramsBatch runs Programs for each student and concatenates the ranked
// rows in final sort order.
func (e *Engine) ProgramsBatch(students []profile.Student, tmpl Request) ([]artifact.ProgramRow, []artifact.CoreRow, error) {
	var (
		rows []artifact.ProgramRow
		core []artifact.CoreRow
	)
	for _, s := range students {
		req := tmpl
		req.Student = s
		res, err := e.Programs(req)
		if err != nil {
			return nil, nil, err
		}
		rows = append(rows, res.Rows...)
		core = append(core, res.Core...)
	}
	match.SortByKey(rows, programKey)
	return rows, core, nil
}

func programKey(r artifact.ProgramRow) match.Key {
	return match.Key{Score: r.PredLabelMatch, StudentID: r.StudentID, GroupID: r.ProgramID, CandidateID: r.InstitutionID}
}

func orDefault(v, d int) int {
	if v <= 0 {
		return d
	}
	return v
}
