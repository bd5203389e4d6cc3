package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/kamusis/studymatch/internal/artifact"
	"github.com/kamusis/studymatch/internal/catalog"
	"github.com/kamusis/studymatch/internal/config"
	"github.com/kamusis/studymatch/internal/logging"
	"github.com/kamusis/studymatch/internal/model"
	"github.com/kamusis/studymatch/internal/profile"
	"github.com/kamusis/studymatch/internal/retrieval"
	"github.com/kamusis/studymatch/internal/simtable"
)

// Similarity tables an engine can be asked to load.
const (
	needProgram = 1 << iota
	needCore
	needMentor
)

func catalogFiles(cfg *config.Config) catalog.Files {
	return catalog.Files{
		Programs:     cfg.Tables.Programs,
		Requirements: cfg.Tables.Requirements,
		Institutions: cfg.Tables.Institutions,
		Mentors:      cfg.Tables.Mentors,
		Scholarships: cfg.Tables.Scholarships,
		RegionalArea: cfg.Tables.RegionalArea,
	}
}

// loadStudents reads the profiles in path. Invalid members of a batch are
// logged and returned as rejected; the call fails only when nothing valid
// remains.
func loadStudents(path string) ([]profile.Student, []profile.RejectedProfile, error) {
	students, err := profile.LoadAll(path)
	var batch *profile.BatchError
	switch {
	case err == nil:
		return students, nil, nil
	case errors.As(err, &batch) && len(students) > 0:
		log := logging.With("cmd")
		for _, r := range batch.Rejected {
			log.Warn().Str("path", path).Int("profile", r.Index).Str("student_id", r.StudentID).Err(r.Err).Msg("invalid student profile skipped")
		}
		return students, batch.Rejected, nil
	default:
		return nil, nil, err
	}
}

// loadEngine loads the catalog, the similarity tables named in need and any
// trained model bundles present in the models dir. The core table is
// optional: without it the core stage is skipped.
func loadEngine(cfg *config.Config, need int) (*retrieval.Engine, error) {
	log := logging.With("cmd")

	cat, err := catalog.Load(cfg.DataDir, catalogFiles(cfg))
	if err != nil {
		return nil, err
	}
	if cat.Skipped > 0 {
		log.Warn().Int("skipped", cat.Skipped).Msg("programs without requirements or institution were dropped")
	}

	var tables retrieval.Tables
	if need&needProgram != 0 {
		t, err := simtable.Load(cfg.TaxonomyPath(cfg.Matrices.Program))
		if err != nil {
			return nil, err
		}
		tables.Program = t
	}
	if need&needCore != 0 {
		p := cfg.TaxonomyPath(cfg.Matrices.Core)
		t, err := simtable.Load(p)
		switch {
		case err == nil:
			tables.Core = t
		case errors.Is(err, os.ErrNotExist):
			log.Warn().Str("path", p).Msg("core table not found, core stage disabled")
		default:
			return nil, err
		}
	}
	if need&needMentor != 0 {
		t, err := simtable.Load(cfg.TaxonomyPath(cfg.Matrices.Mentor))
		if err != nil {
			return nil, err
		}
		tables.Mentor = t
	}

	var models retrieval.Models
	for _, m := range []struct {
		name string
		dst  *retrieval.Refiner
	}{
		{cfg.Models.Program, &models.Program},
		{cfg.Models.Core, &models.Core},
		{cfg.Models.Mentor, &models.Mentor},
	} {
		pair, err := model.LoadOptional(cfg.ModelPath(m.name))
		if err != nil {
			return nil, err
		}
		if pair != nil {
			*m.dst = pair
			log.Debug().Str("model", m.name).Msg("trained scorer loaded")
		}
	}

	log.Debug().
		Int("programs", len(cat.Programs)).
		Int("mentors", len(cat.Mentors)).
		Int("max_rank", cat.MaxRank).
		Msg("catalog loaded")
	return retrieval.New(cat, tables, models), nil
}

// openSinks returns the CSV sink for the output dir plus the SQLite mirror
// when enabled.
func openSinks(cfg *config.Config) (artifact.Multi, error) {
	sinks := artifact.Multi{artifact.NewDir(cfg.OutputDir)}
	if cfg.SQLite {
		if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
			return nil, fmt.Errorf("cannot create %s: %w", cfg.OutputDir, err)
		}
		db, err := artifact.OpenSQLite(cfg.OutputPath(artifact.SQLiteFile))
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, db)
	}
	return sinks, nil
}
