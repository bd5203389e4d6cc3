package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// ErrDimMismatch is returned when a bundle's weights do not cover both
// vocabularies.
var ErrDimMismatch = errors.New("model weights do not match vocabulary sizes")

// Bundle is the on-disk form of a trained linear scorer.
type Bundle struct {
	Name       string    `json:"name" yaml:"name"`
	Kind       string    `json:"kind" yaml:"kind"` // linear (default) or logistic
	LeftVocab  []string  `json:"left_vocab" yaml:"left_vocab"`
	RightVocab []string  `json:"right_vocab" yaml:"right_vocab"`
	Weights    []float64 `json:"weights" yaml:"weights"`
	Bias       float64   `json:"bias" yaml:"bias"`
}

// Pair builds the encoder/scorer pair described by b.
func (b Bundle) Pair() (Pair, error) {
	left := NewMultiHot(b.LeftVocab)
	right := NewMultiHot(b.RightVocab)
	if want := left.Len() + right.Len(); len(b.Weights) != want {
		return Pair{}, fmt.Errorf("%w: %d weights for %d+%d features", ErrDimMismatch, len(b.Weights), left.Len(), right.Len())
	}
	var logistic bool
	switch strings.ToLower(b.Kind) {
	case "", "linear":
	case "logistic":
		logistic = true
	default:
		return Pair{}, fmt.Errorf("unsupported model kind %q", b.Kind)
	}
	return Pair{
		Left:   left,
		Right:  right,
		Scorer: Linear{Weights: b.Weights, Bias: b.Bias, Logistic: logistic},
	}, nil
}

// Load reads a bundle from a .json, .yaml or .yml file.
func Load(path string) (Pair, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Pair{}, fmt.Errorf("cannot read model %s: %w", path, err)
	}
	var b Bundle
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &b)
	default:
		err = json.Unmarshal(data, &b)
	}
	if err != nil {
		return Pair{}, fmt.Errorf("invalid model %s: %w", path, err)
	}
	p, err := b.Pair()
	if err != nil {
		return Pair{}, fmt.Errorf("invalid model %s: %w", path, err)
	}
	return p, nil
}

// LoadOptional is Load, but a missing file yields (nil, nil).
func LoadOptional(path string) (*Pair, error) {
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	p, err := Load(path)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
