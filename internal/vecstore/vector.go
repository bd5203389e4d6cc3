package vecstore

import "math"

// Similarity returns the cosine similarity between the vectors stored for
// a and b. ok is false when either label has no vector. A zero vector on
// either side scores 0.
func (s *Store) Similarity(a, b string) (sim float64, ok bool) {
	i, okA := s.rows[a]
	j, okB := s.rows[b]
	if !okA || !okB {
		return 0, false
	}
	den := s.norms[i] * s.norms[j]
	if den == 0 {
		return 0, true
	}
	return dot(s.row(i), s.row(j)) / den, true
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func l2(v []float32) float64 {
	return math.Sqrt(dot(v, v))
}

// unit scales v to unit L2 length into a new slice. Zero vectors are
// copied unchanged.
func unit(v []float32) []float32 {
	out := make([]float32, len(v))
	n := l2(v)
	if n == 0 {
		copy(out, v)
		return out
	}
	inv := float32(1.0 / n)
	for i := range v {
		out[i] = v[i] * inv
	}
	return out
}
