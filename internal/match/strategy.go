package match

import (
	"github.com/kamusis/studymatch/internal/simtable"
)

// Strategy names.
const (
	Pairwise = "pairwise"
	Overlap  = "overlap"
)

// Item is one eligible candidate as seen by a scoring strategy.
type Item struct {
	Interests []string
	Tags      []string
	Rank      int
}

// Score is the per-item result of a strategy.
type Score struct {
	// LabelMatch is the pairwise similarity average.
	LabelMatch float64
	// Weight is LabelMatch discounted by institution rank.
	Weight float64
	// Relevance is the blended overlap score (overlap strategy only).
	Relevance float64
	// Composite is the strategy's ordering key.
	Composite float64
}

// ScoringStrategy scores a batch of candidates. Batches matter: the overlap
// strategy normalizes rank over the ranks it sees.
type ScoringStrategy interface {
	Name() string
	Score(items []Item) []Score
}

// PairwiseStrategy ranks by label match weighted by institution rank.
type PairwiseStrategy struct {
	Table   simtable.Lookuper
	MaxRank int
}

func (PairwiseStrategy) Name() string { return Pairwise }

func (s PairwiseStrategy) Score(items []Item) []Score {
	out := make([]Score, len(items))
	for i, it := range items {
		lm := LabelMatch(it.Interests, it.Tags, s.Table)
		w := RankWeight(lm, it.Rank, s.MaxRank)
		out[i] = Score{LabelMatch: lm, Weight: w, Composite: w}
	}
	return out
}

// OverlapStrategy blends set overlap of interests and tags with the
// candidate's rank normalized over the batch. Table is optional; when set
// LabelMatch is still reported for display.
type OverlapStrategy struct {
	WInterest float64
	WRank     float64
	Table     simtable.Lookuper
	MaxRank   int
}

// DefaultOverlap returns the 0.6/0.4 blend.
func DefaultOverlap() OverlapStrategy {
	return OverlapStrategy{WInterest: 0.6, WRank: 0.4}
}

func (OverlapStrategy) Name() string { return Overlap }

func (s OverlapStrategy) Score(items []Item) []Score {
	minSeen, maxSeen := 0, 0
	first := true
	for _, it := range items {
		if it.Rank <= 0 {
			continue
		}
		if first || it.Rank < minSeen {
			minSeen = it.Rank
		}
		if first || it.Rank > maxSeen {
			maxSeen = it.Rank
		}
		first = false
	}
	out := make([]Score, len(items))
	for i, it := range items {
		norm := 0.0
		if maxSeen > minSeen && it.Rank > 0 {
			norm = float64(maxSeen-it.Rank) / float64(maxSeen-minSeen)
		}
		rel := Bound(s.WInterest*OverlapFraction(it.Interests, it.Tags)+s.WRank*norm, ScoreDecimals)
		sc := Score{Relevance: rel, Composite: rel}
		if s.Table != nil {
			sc.LabelMatch = LabelMatch(it.Interests, it.Tags, s.Table)
			sc.Weight = RankWeight(sc.LabelMatch, it.Rank, s.MaxRank)
		}
		out[i] = sc
	}
	return out
}

// NewStrategy returns the strategy registered under name, or Pairwise for
// an empty name.
func NewStrategy(name string, table simtable.Lookuper, maxRank int, wInterest, wRank float64) (ScoringStrategy, error) {
	switch name {
	case "", Pairwise:
		return PairwiseStrategy{Table: table, MaxRank: maxRank}, nil
	case Overlap:
		s := DefaultOverlap()
		if wInterest != 0 || wRank != 0 {
			s.WInterest, s.WRank = wInterest, wRank
		}
		s.Table, s.MaxRank = table, maxRank
		return s, nil
	default:
		return nil, &UnknownStrategyError{Name: name}
	}
}

// UnknownStrategyError is returned by NewStrategy for an unregistered name.
type UnknownStrategyError struct{ Name string }

func (e *UnknownStrategyError) Error() string {
	return "unknown scoring strategy " + e.Name + " (want pairwise or overlap)"
}
