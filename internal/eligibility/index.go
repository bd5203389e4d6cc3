package eligibility

import (
	"github.com/kamusis/studymatch/internal/catalog"
	"github.com/kamusis/studymatch/internal/labels"
	"github.com/kamusis/studymatch/internal/profile"
)

// Index pre-buckets a pool by (degree level, english test type) so a lookup
// only evaluates the numeric predicates on programs that can match at all.
// It returns exactly what Filter returns over the same pool.
type Index struct {
	pool    []catalog.ProgramRecord
	buckets map[bucketKey][]int
}

type bucketKey struct {
	degree  string
	english string
}

func keyFor(degree, english string) bucketKey {
	return bucketKey{degree: labels.Fold(degree), english: labels.Fold(english)}
}

// NewIndex builds an index over pool. The pool must not be mutated afterwards.
func NewIndex(pool []catalog.ProgramRecord) *Index {
	idx := &Index{pool: pool, buckets: make(map[bucketKey][]int)}
	for i, p := range pool {
		k := keyFor(p.DegreeLevel, p.EnglishRequiredType)
		idx.buckets[k] = append(idx.buckets[k], i)
	}
	return idx
}

// Filter is the pushdown form of the package-level Filter.
func (idx *Index) Filter(s profile.Student) ([]Candidate, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	positions := idx.buckets[keyFor(s.DegreeGoal, s.EnglishTestType)]
	out := make([]Candidate, 0, len(positions))
	for _, i := range positions {
		if c, ok := admit(s, idx.pool[i]); ok {
			out = append(out, c)
		}
	}
	return out, nil
}

// Len returns the number of indexed programs.
func (idx *Index) Len() int { return len(idx.pool) }
