// Package retrieval runs the three ranking flows over a loaded catalog:
// student to programs, student to core clusters, and programs to mentors.
// An Engine holds only read-only tables; every call takes its own request.
package retrieval

import (
	"github.com/kamusis/studymatch/internal/catalog"
	"github.com/kamusis/studymatch/internal/eligibility"
	"github.com/kamusis/studymatch/internal/match"
	"github.com/kamusis/studymatch/internal/simtable"
)

// Refiner predicts a refined label match for (left labels, right labels).
// model.Pair satisfies it.
type Refiner interface {
	Predict(left, right []string) float64
}

// Tables are the similarity tables of each flow. Core columns are the
// core-cluster vocabulary.
type Tables struct {
	Program simtable.Lookuper
	Core    *simtable.Table
	Mentor  simtable.Lookuper
}

// Models are the optional trained refiners of each flow; a nil refiner
// falls back to the strategy score.
type Models struct {
	Program Refiner
	Core    Refiner
	Mentor  Refiner
}

// Engine ranks candidates against read-only reference data.
type Engine struct {
	catalog *catalog.Catalog
	tables  Tables
	models  Models
	index   *eligibility.Index
}

// New builds an engine and its eligibility index.
func New(c *catalog.Catalog, tables Tables, models Models) *Engine {
	return &Engine{
		catalog: c,
		tables:  tables,
		models:  models,
		index:   eligibility.NewIndex(c.Programs),
	}
}

// Catalog returns the reference data the engine ranks against.
func (e *Engine) Catalog() *catalog.Catalog { return e.catalog }

func refine(r Refiner, left, right []string, fallback float64) float64 {
	if r == nil {
		return fallback
	}
	return r.Predict(left, right)
}

// Strategy resolves a scoring strategy by name over the engine's program
// table and catalog rank range.
func (e *Engine) Strategy(name string, wInterest, wRank float64) (match.ScoringStrategy, error) {
	return match.NewStrategy(name, e.tables.Program, e.catalog.MaxRank, wInterest, wRank)
}
