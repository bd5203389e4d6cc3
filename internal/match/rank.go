package match

// RankFactor is the linear discount for an institution rank: 1 for rank 1,
// falling by 1/maxRank per position, and 0 at or beyond maxRank. Unranked
// institutions (rank <= 0) and an unknown maxRank get 0.
func RankFactor(rank, maxRank int) float64 {
	switch {
	case rank <= 0 || maxRank <= 0:
		return 0
	case rank == 1:
		return 1
	case rank >= maxRank:
		return 0
	default:
		return 1 - float64(rank-1)/float64(maxRank)
	}
}

// RankWeight discounts a label match by institution rank, rounded to two
// decimals.
func RankWeight(labelMatch float64, rank, maxRank int) float64 {
	return Bound(labelMatch*RankFactor(rank, maxRank), ScoreDecimals)
}

// Tuition is the scholarship-adjusted cost of one candidate.
type Tuition struct {
	Low       float64
	Reduction float64
	Effective float64
}

// EffectiveTuition applies a scholarship of pct (fraction of tuitionLow) when
// gpa reaches threshold. A zero pct gives no reduction.
func EffectiveTuition(tuitionLow, pct, threshold, gpa float64) Tuition {
	t := Tuition{Low: tuitionLow}
	if pct > 0 && gpa >= threshold {
		t.Reduction = Round(tuitionLow*pct, ScoreDecimals)
	}
	t.Effective = Round(tuitionLow-t.Reduction, ScoreDecimals)
	return t
}
