package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kamusis/studymatch/internal/config"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create ~/.studymatch with a default config and .env template",
	Long: `Initialize ~/.studymatch/.

Writes studymatch.yaml (unless it exists) pointing at the reference data
directory and a .env template for the embeddings provider used by
'studymatch matrix build'.`,
	RunE: runInit,
}

var (
	flagInitDataDir string
	flagInitSQLite  bool
)

func init() {
	initCmd.Flags().StringVar(&flagInitDataDir, "data-dir", "", "Reference table directory (default ~/.studymatch/data_clean)")
	initCmd.Flags().BoolVar(&flagInitSQLite, "sqlite", false, "Also mirror artifacts into artifacts.db")
	rootCmd.AddCommand(initCmd)
}

func runInit(_ *cobra.Command, _ []string) error {
	// ── 1. Resolve ~/.studymatch directory ────────────────────────────────────
	dir, err := config.Dir()
	if err != nil {
		return err
	}
	cfgPath := flagConfig
	if cfgPath == "" {
		if cfgPath, err = config.ConfigPath(); err != nil {
			return err
		}
	}

	// ── 2. Create ~/.studymatch/ if it doesn't exist ──────────────────────────
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create %s: %w", dir, err)
	}
	printOK("", fmt.Sprintf("studymatch directory ready: %s", dir))

	// ── 3. Write studymatch.yaml if missing ───────────────────────────────────
	created, err := writeDefaultConfig(cfgPath, flagInitDataDir, flagInitSQLite)
	if err != nil {
		return err
	}
	if created {
		printOK("", fmt.Sprintf("config written: %s", cfgPath))
	} else {
		printSkip("", fmt.Sprintf("config already exists: %s", cfgPath))
	}

	// ── 4. Embeddings .env template ───────────────────────────────────────────
	if err := config.EnsureDotEnvTemplate(); err != nil {
		return err
	}
	if p, err := config.DotEnvPath(); err == nil {
		printOK("", fmt.Sprintf("embeddings settings: %s", p))
	}

	fmt.Println()
	printHint("Next: copy the reference CSVs into the data dir, then run 'studymatch doctor'.")
	return nil
}

// writeDefaultConfig saves the default config to path unless a file is
// already there. It reports whether a file was written.
func writeDefaultConfig(path, dataDir string, sqlite bool) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	cfg, err := config.DefaultConfig()
	if err != nil {
		return false, err
	}
	if dataDir != "" {
		abs, err := filepath.Abs(dataDir)
		if err != nil {
			return false, fmt.Errorf("cannot resolve %s: %w", dataDir, err)
		}
		cfg.DataDir = abs
		cfg.TaxonomyDir = abs
	}
	cfg.SQLite = sqlite
	for _, d := range []string{cfg.DataDir, cfg.TaxonomyDir, cfg.OutputDir, cfg.ModelsDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return false, fmt.Errorf("cannot create %s: %w", d, err)
		}
	}
	if err := config.Save(cfg, path); err != nil {
		return false, err
	}
	return true, nil
}
