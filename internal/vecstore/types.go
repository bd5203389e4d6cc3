package vecstore

import (
	"fmt"
	"math"

	"github.com/kamusis/studymatch/internal/labels"
)

// Manifest describes a label vector store and how to interpret it.
type Manifest struct {
	StoreVersion int    `json:"store_version"`
	CreatedAt    string `json:"created_at"`
	ModelID      string `json:"model_id"`
	Dim          int    `json:"dim"`
	Normalize    bool   `json:"normalize"`
	VectorFile   string `json:"vector_file"`
	LabelsFile   string `json:"labels_file"`
}

// LabelEntry represents one label row in labels.jsonl.
type LabelEntry struct {
	Label     string `json:"label"`
	TextHash  string `json:"text_hash"`
	UpdatedAt string `json:"updated_at"`
}

// Store is a label vector store. Vectors is row-major, one Dim-sized slice
// per entry in Labels. Build stores with NewStore so lookups are indexed.
type Store struct {
	Manifest Manifest
	Labels   []LabelEntry
	Vectors  []float32

	rows  map[string]int
	norms []float64
}

// StoreVersion is the on-disk layout version Build writes.
const StoreVersion = 1

const (
	manifestFile      = "store_manifest.json"
	defaultVectorFile = "vectors.f32"
	defaultLabelsFile = "labels.jsonl"

	// unitTolerance bounds how far a row of a normalized store may drift
	// from unit length after the float32 round trip.
	unitTolerance = 1e-3
)

// NewStore checks the store invariants and indexes labels to their rows.
// Every label must be in normalized form and appear once; rows of a store
// whose manifest says Normalize must have unit length (or be all zero).
func NewStore(m Manifest, entries []LabelEntry, vectors []float32) (*Store, error) {
	if m.Dim <= 0 {
		return nil, fmt.Errorf("invalid dim: %d", m.Dim)
	}
	if len(vectors) != len(entries)*m.Dim {
		return nil, fmt.Errorf("%w: got %d floats want %d", ErrVectorLengthMismatch, len(vectors), len(entries)*m.Dim)
	}
	s := &Store{
		Manifest: m,
		Labels:   entries,
		Vectors:  vectors,
		rows:     make(map[string]int, len(entries)),
		norms:    make([]float64, len(entries)),
	}
	for i, e := range entries {
		if e.Label == "" || labels.Normalize(e.Label) != e.Label {
			return nil, fmt.Errorf("%w: row %d %q", ErrLabelNotNormalized, i+1, e.Label)
		}
		if prev, ok := s.rows[e.Label]; ok {
			return nil, fmt.Errorf("%w: %q on rows %d and %d", ErrDuplicateLabel, e.Label, prev+1, i+1)
		}
		s.rows[e.Label] = i
		n := l2(s.row(i))
		if m.Normalize && n != 0 && math.Abs(n-1) > unitTolerance {
			return nil, fmt.Errorf("%w: %q has length %.4f", ErrNotUnitLength, e.Label, n)
		}
		s.norms[i] = n
	}
	return s, nil
}

func (s *Store) row(i int) []float32 {
	start := i * s.Manifest.Dim
	return s.Vectors[start : start+s.Manifest.Dim]
}

// Vector returns the embedding stored for label.
func (s *Store) Vector(label string) ([]float32, bool) {
	i, ok := s.rows[label]
	if !ok {
		return nil, false
	}
	return s.row(i), true
}
