package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/kamusis/studymatch/internal/artifact"
	"github.com/kamusis/studymatch/internal/config"
	"github.com/kamusis/studymatch/internal/profile"
	"github.com/kamusis/studymatch/internal/retrieval"
	"github.com/spf13/cobra"
)

var (
	flagProgramsStudent  string
	flagProgramsTop      int
	flagProgramsStrategy string
	flagProgramsNoCore   bool
	flagProgramsCoreTop  int
)

var programsCmd = &cobra.Command{
	Use:   "programs",
	Short: "Rank eligible programs for one or more students",
	Long: `Filter the program catalog by each student's GPA, English test, degree
goal and budget, score the survivors against the student's interests and
write the ranking to student_program.csv in the output dir.

Students with migration_interest are first routed through the core cluster
stage unless --no-core is given.`,
	RunE: runPrograms,
}

func init() {
	programsCmd.Flags().StringVarP(&flagProgramsStudent, "student", "s", "", "Student profile JSON (one object or an array)")
	programsCmd.Flags().IntVar(&flagProgramsTop, "top", 0, "Programs to keep per student (default: top_n from config)")
	programsCmd.Flags().StringVar(&flagProgramsStrategy, "strategy", "", "Scoring strategy: pairwise or overlap (default: strategy from config)")
	programsCmd.Flags().BoolVar(&flagProgramsNoCore, "no-core", false, "Skip the core cluster stage for migration-minded students")
	programsCmd.Flags().IntVar(&flagProgramsCoreTop, "core-top", 0, "Core clusters feeding the program stage (default: core_top_n from config)")
	_ = programsCmd.MarkFlagRequired("student")
	rootCmd.AddCommand(programsCmd)
}

type programsOptions struct {
	StudentPath string
	TopN        int
	Strategy    string
	NoCore      bool
	CoreTopN    int
}

type programsOutput struct {
	Students int
	Rejected []profile.RejectedProfile
	Rows     []artifact.ProgramRow
	Core     []artifact.CoreRow
}

func runPrograms(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	out, err := programsRun(cfg, programsOptions{
		StudentPath: flagProgramsStudent,
		TopN:        flagProgramsTop,
		Strategy:    flagProgramsStrategy,
		NoCore:      flagProgramsNoCore,
		CoreTopN:    flagProgramsCoreTop,
	})
	if err != nil {
		return err
	}

	printSection("Programs")
	for _, r := range out.Rejected {
		printWarn(fmt.Sprintf("#%d %s", r.Index, r.StudentID), fmt.Sprintf("skipped: %v", r.Err))
	}
	if len(out.Core) > 0 {
		printCoreRows(out.Core)
	}
	printProgramRows(out.Rows)
	fmt.Println()
	printOK("", fmt.Sprintf("%d row(s) for %d student(s) written to %s", len(out.Rows), out.Students, cfg.OutputPath(artifact.ProgramFile)))
	if len(out.Rows) > 0 {
		printHint("Run 'studymatch mentors' to rank mentors for these programs.")
	}
	return nil
}

// programsRun executes the program flow and writes the artifacts.
func programsRun(cfg *config.Config, opts programsOptions) (programsOutput, error) {
	students, rejected, err := loadStudents(opts.StudentPath)
	if err != nil {
		return programsOutput{}, err
	}
	eng, err := loadEngine(cfg, needProgram|needCore)
	if err != nil {
		return programsOutput{}, err
	}

	name := opts.Strategy
	if name == "" {
		name = cfg.Strategy
	}
	strategy, err := eng.Strategy(name, cfg.Weights.Interest, cfg.Weights.Rank)
	if err != nil {
		return programsOutput{}, err
	}

	rows, core, err := eng.ProgramsBatch(students, retrieval.Request{
		TopN:     orConfig(opts.TopN, cfg.TopN),
		Strategy: strategy,
		ViaCore:  !opts.NoCore,
		CoreTopN: orConfig(opts.CoreTopN, cfg.CoreTopN),
	})
	if err != nil {
		return programsOutput{}, err
	}

	sinks, err := openSinks(cfg)
	if err != nil {
		return programsOutput{}, err
	}
	defer sinks.Close()
	if err := sinks.Programs(rows); err != nil {
		return programsOutput{}, fmt.Errorf("cannot write program artifact: %w", err)
	}
	if len(core) > 0 {
		if err := sinks.Core(core); err != nil {
			return programsOutput{}, fmt.Errorf("cannot write core artifact: %w", err)
		}
	}
	return programsOutput{Students: len(students), Rejected: rejected, Rows: rows, Core: core}, nil
}

func printProgramRows(rows []artifact.ProgramRow) {
	if len(rows) == 0 {
		printMiss("", "no eligible programs")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  STUDENT\tPROGRAM\tINSTITUTION\tRANK\tMATCH\tWEIGHT\tTUITION\tREGIONAL\tSCORE")
	for _, r := range rows {
		regional := ""
		if r.DesignatedRegional {
			regional = "yes"
		}
		fmt.Fprintf(w, "  %s\t%s %s\t%s\t%d\t%.2f\t%.2f\t%.0f\t%s\t%.4f\n",
			r.StudentID, r.ProgramID, r.ProgramName, r.InstitutionName, r.OverallRank,
			r.LabelMatch, r.Weight, r.EffectiveTuition, regional, r.PredLabelMatch)
	}
	_ = w.Flush()
}

func orConfig(flag, cfg int) int {
	if flag > 0 {
		return flag
	}
	return cfg
}
