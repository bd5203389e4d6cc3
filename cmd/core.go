package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/kamusis/studymatch/internal/artifact"
	"github.com/kamusis/studymatch/internal/config"
	"github.com/kamusis/studymatch/internal/match"
	"github.com/spf13/cobra"
)

var (
	flagCoreStudent string
	flagCoreTop     int
)

var coreCmd = &cobra.Command{
	Use:   "core",
	Short: "Rank core study clusters for one or more students",
	RunE:  runCore,
}

func init() {
	coreCmd.Flags().StringVarP(&flagCoreStudent, "student", "s", "", "Student profile JSON (one object or an array)")
	coreCmd.Flags().IntVar(&flagCoreTop, "top", 0, "Clusters to keep per student (default: all)")
	_ = coreCmd.MarkFlagRequired("student")
	rootCmd.AddCommand(coreCmd)
}

func runCore(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	rows, err := coreRun(cfg, flagCoreStudent, flagCoreTop)
	if err != nil {
		return err
	}
	printSection("Core clusters")
	printCoreRows(rows)
	fmt.Println()
	printOK("", fmt.Sprintf("%d row(s) written to %s", len(rows), cfg.OutputPath(artifact.CoreFile)))
	return nil
}

// coreRun ranks core clusters for every student in path, keeps top per
// student and writes core_program.csv.
func coreRun(cfg *config.Config, path string, top int) ([]artifact.CoreRow, error) {
	students, _, err := loadStudents(path)
	if err != nil {
		return nil, err
	}
	eng, err := loadEngine(cfg, needCore)
	if err != nil {
		return nil, err
	}

	var rows []artifact.CoreRow
	for _, s := range students {
		ranked, err := eng.Core(s)
		if err != nil {
			return nil, err
		}
		if ranked == nil {
			return nil, fmt.Errorf("core table %s not found; run 'studymatch matrix build --kind core'", cfg.TaxonomyPath(cfg.Matrices.Core))
		}
		rows = append(rows, match.Head(ranked, top)...)
	}

	sinks, err := openSinks(cfg)
	if err != nil {
		return nil, err
	}
	defer sinks.Close()
	if err := sinks.Core(rows); err != nil {
		return nil, fmt.Errorf("cannot write core artifact: %w", err)
	}
	return rows, nil
}

func printCoreRows(rows []artifact.CoreRow) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  STUDENT\tCLUSTER\tMATCH\tSCORE")
	for _, r := range rows {
		fmt.Fprintf(w, "  %s\t%s\t%.2f\t%.4f\n", r.StudentID, r.CoreProgram, r.ProgramMatch, r.PredLabelMatch)
	}
	_ = w.Flush()
}
