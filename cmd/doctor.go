package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/kamusis/studymatch/internal/artifact"
	"github.com/kamusis/studymatch/internal/catalog"
	"github.com/kamusis/studymatch/internal/config"
	"github.com/kamusis/studymatch/internal/embeddings"
	"github.com/kamusis/studymatch/internal/model"
	"github.com/kamusis/studymatch/internal/simtable"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check config, reference tables and similarity tables",
	Long: `Load every configured table and report what is missing or malformed.
Run this command when a retrieval fails, or after changing the data dir.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(_ *cobra.Command, _ []string) error {
	printSection("studymatch doctor")
	fmt.Println()

	// ── Check 1: config ──────────────────────────────────────────────────────
	fmt.Println("[ config ]")
	cfg, err := loadConfig()
	if err != nil {
		printErr("", err.Error())
		return fmt.Errorf("doctor found issues")
	}
	printOK("", fmt.Sprintf("strategy %s, top %d, data dir %s", cfg.Strategy, cfg.TopN, cfg.DataDir))
	fmt.Println()

	problems := doctorChecks(cfg)

	// ── Summary ──────────────────────────────────────────────────────────────
	fmt.Println("===================")
	if problems == 0 {
		fmt.Println("✓  All checks passed. studymatch is ready to use.")
		return nil
	}
	fmt.Fprintf(os.Stderr, "✗  %d check(s) failed. See details above.\n", problems)
	return fmt.Errorf("doctor found issues")
}

// doctorChecks prints one block per check group and returns the number of
// failures.
func doctorChecks(cfg *config.Config) int {
	failed := 0
	fail := func(name, msg string) {
		printErr(name, msg)
		failed++
	}

	// ── Check 2: reference tables ─────────────────────────────────────────────
	fmt.Println("[ Reference tables ]")
	if errs := catalog.Check(cfg.DataDir, catalogFiles(cfg)); len(errs) > 0 {
		for _, err := range errs {
			fail("", err.Error())
		}
	} else if cat, err := catalog.Load(cfg.DataDir, catalogFiles(cfg)); err != nil {
		fail("", err.Error())
	} else {
		printOK("", fmt.Sprintf("%d program(s), %d mentor(s), %d institution(s), max rank %d",
			len(cat.Programs), len(cat.Mentors), len(cat.Institutions), cat.MaxRank))
		if cat.Skipped > 0 {
			printWarn("", fmt.Sprintf("%d program(s) dropped: no requirements or unknown institution", cat.Skipped))
		}
	}
	fmt.Println()

	// ── Check 3: similarity tables ───────────────────────────────────────────
	fmt.Println("[ Similarity tables ]")
	for _, m := range []struct {
		name, file string
		optional   bool
	}{
		{"program", cfg.Matrices.Program, false},
		{"core", cfg.Matrices.Core, true},
		{"mentor", cfg.Matrices.Mentor, false},
	} {
		p := cfg.TaxonomyPath(m.file)
		t, err := simtable.Load(p)
		switch {
		case err == nil:
			r, c := t.Shape()
			printOK(m.name, fmt.Sprintf("%d×%d %s", r, c, p))
		case errors.Is(err, os.ErrNotExist) && m.optional:
			printSkip(m.name, fmt.Sprintf("not found, core stage disabled (%s)", p))
		case errors.Is(err, os.ErrNotExist):
			fail(m.name, fmt.Sprintf("not found: %s (run 'studymatch matrix build --kind %s')", p, m.name))
		default:
			fail(m.name, err.Error())
		}
	}
	fmt.Println()

	// ── Check 4: trained scorers ──────────────────────────────────────────────
	fmt.Println("[ Trained scorers ]")
	for _, m := range []struct{ name, file string }{
		{"program", cfg.Models.Program},
		{"core", cfg.Models.Core},
		{"mentor", cfg.Models.Mentor},
	} {
		p := cfg.ModelPath(m.file)
		pair, err := model.LoadOptional(p)
		switch {
		case err != nil:
			fail(m.name, err.Error())
		case pair == nil:
			printMiss(m.name, "no model, strategy score is used")
		default:
			printOK(m.name, p)
		}
	}
	fmt.Println()

	// ── Check 5: output dir ──────────────────────────────────────────────────
	fmt.Println("[ Output dir ]")
	if unlock, err := artifact.Lock(cfg.OutputDir, artifact.DefaultLockTimeout); err != nil {
		fail("", fmt.Sprintf("cannot lock %s: %v", cfg.OutputDir, err))
	} else {
		unlock()
		printOK("", fmt.Sprintf("writable: %s", cfg.OutputDir))
	}
	fmt.Println()

	// ── Check 6: embeddings (only needed by matrix build) ─────────────────────
	fmt.Println("[ Embeddings ]")
	if embCfg, err := embeddings.LoadConfig(); err != nil {
		printWarn("", err.Error())
	} else if _, err := embeddings.NewFromConfig(embCfg); err != nil {
		printSkip("", fmt.Sprintf("%v; only 'matrix build' needs it", err))
	} else {
		printOK("", fmt.Sprintf("%s model %s", embCfg.Provider, emptyAsNA(embCfg.Model)))
	}
	fmt.Println()
	return failed
}
