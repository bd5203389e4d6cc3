// Package model is the contract of the trained refinement stage: a pair of
// label encoders turn two label lists into one feature vector, and a scorer
// maps that vector to a predicted label match.
package model

import (
	"math"

	"github.com/kamusis/studymatch/internal/labels"
	"github.com/kamusis/studymatch/internal/match"
)

// LabelEncoder turns a label list into a fixed-width feature vector.
type LabelEncoder interface {
	Encode(ls []string) []float64
	Len() int
}

// Scorer predicts a score from a feature vector.
type Scorer interface {
	Predict(features []float64) float64
}

// MultiHot encodes labels as a 0/1 vector over a fixed vocabulary. Labels
// outside the vocabulary are ignored.
type MultiHot struct {
	vocab []string
	index map[string]int
}

// NewMultiHot builds an encoder; vocabulary labels are normalized and
// duplicates collapse onto their first position.
func NewMultiHot(vocab []string) *MultiHot {
	m := &MultiHot{index: make(map[string]int, len(vocab))}
	for _, v := range vocab {
		v = labels.Normalize(v)
		if v == "" {
			continue
		}
		if _, dup := m.index[v]; dup {
			continue
		}
		m.index[v] = len(m.vocab)
		m.vocab = append(m.vocab, v)
	}
	return m
}

func (m *MultiHot) Len() int { return len(m.vocab) }

func (m *MultiHot) Encode(ls []string) []float64 {
	out := make([]float64, len(m.vocab))
	for _, l := range ls {
		if i, ok := m.index[labels.Normalize(l)]; ok {
			out[i] = 1
		}
	}
	return out
}

// Linear is w·x + b, optionally squashed through a sigmoid.
type Linear struct {
	Weights  []float64
	Bias     float64
	Logistic bool
}

func (l Linear) Predict(x []float64) float64 {
	z := l.Bias
	for i, v := range x {
		if i < len(l.Weights) {
			z += l.Weights[i] * v
		}
	}
	if l.Logistic {
		return 1 / (1 + math.Exp(-z))
	}
	return z
}

// Pair scores one (left labels, right labels) row end to end.
type Pair struct {
	Left   LabelEncoder
	Right  LabelEncoder
	Scorer Scorer
}

// Features concatenates the two encodings, left first.
func (p Pair) Features(left, right []string) []float64 {
	l := p.Left.Encode(left)
	r := p.Right.Encode(right)
	return append(l, r...)
}

// Predict returns the model output clamped to [0,1] and rounded to four
// decimals.
func (p Pair) Predict(left, right []string) float64 {
	return match.Bound(p.Scorer.Predict(p.Features(left, right)), match.PredDecimals)
}
