package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/kamusis/studymatch/internal/catalog"
	"github.com/kamusis/studymatch/internal/config"
	"github.com/kamusis/studymatch/internal/embeddings"
	"github.com/kamusis/studymatch/internal/profile"
	"github.com/kamusis/studymatch/internal/taxonomy"
	"github.com/spf13/cobra"
)

var (
	flagMatrixKind     string
	flagMatrixStudents string
	flagMatrixClusters []string
	flagMatrixForce    bool
)

var matrixCmd = &cobra.Command{
	Use:   "matrix",
	Short: "Manage label similarity tables",
}

var matrixBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build a similarity table with the configured embeddings provider",
	Long: `Collect the label vocabulary for one table, embed every label through
the provider configured in ~/.studymatch/.env (STUDYMATCH_EMBEDDINGS_*) and
write the cosine similarity table into the taxonomy dir.

Kinds:
  program   interests and field tags on both axes
  core      interests and field tags against the core clusters
  mentor    field tags and mentor expertise on both axes`,
	RunE: runMatrixBuild,
}

func init() {
	matrixBuildCmd.Flags().StringVar(&flagMatrixKind, "kind", "program", "Table to build: program, core or mentor")
	matrixBuildCmd.Flags().StringVar(&flagMatrixStudents, "students", "", "Student profiles whose interests join the vocabulary")
	matrixBuildCmd.Flags().StringSliceVar(&flagMatrixClusters, "cluster", nil, "Core cluster column (repeatable; default: built-in clusters)")
	matrixBuildCmd.Flags().BoolVar(&flagMatrixForce, "force", false, "Re-embed every label even if cached")
	matrixCmd.AddCommand(matrixBuildCmd)
	rootCmd.AddCommand(matrixCmd)
}

func runMatrixBuild(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	kind, err := taxonomy.ParseKind(flagMatrixKind)
	if err != nil {
		return err
	}

	embCfg, err := embeddings.LoadConfig()
	if err != nil {
		return err
	}
	prov, err := embeddings.NewFromConfig(embCfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	printInfo("", fmt.Sprintf("building %s table using %s", kind, prov.ModelID()))
	out, rows, cols, err := matrixBuild(ctx, cfg, prov, kind)
	if err != nil {
		return fmt.Errorf("table build failed: %w", err)
	}
	printOK("", fmt.Sprintf("%d×%d table written: %s", rows, cols, out))
	return nil
}

// matrixBuild gathers the vocabulary of kind and builds its table.
func matrixBuild(ctx context.Context, cfg *config.Config, prov embeddings.Provider, kind taxonomy.Kind) (string, int, int, error) {
	cat, err := catalog.Load(cfg.DataDir, catalogFiles(cfg))
	if err != nil {
		return "", 0, 0, err
	}
	var students []profile.Student
	if flagMatrixStudents != "" {
		if students, _, err = loadStudents(flagMatrixStudents); err != nil {
			return "", 0, 0, err
		}
	}
	rows, cols, err := taxonomy.Vocab(kind, cat, students, flagMatrixClusters)
	if err != nil {
		return "", 0, 0, err
	}

	dir, err := config.Dir()
	if err != nil {
		return "", 0, 0, err
	}
	out := cfg.TaxonomyPath(matrixFile(cfg, kind))
	_, err = taxonomy.Build(ctx, prov, taxonomy.BuildOptions{
		Kind:     kind,
		Rows:     rows,
		Cols:     cols,
		StoreDir: filepath.Join(dir, "vectors", string(kind)),
		Out:      out,
		Force:    flagMatrixForce,
	})
	if err != nil {
		return "", 0, 0, err
	}
	return out, len(rows), len(cols), nil
}

func matrixFile(cfg *config.Config, kind taxonomy.Kind) string {
	switch kind {
	case taxonomy.Core:
		return cfg.Matrices.Core
	case taxonomy.Mentor:
		return cfg.Matrices.Mentor
	default:
		return cfg.Matrices.Program
	}
}
