package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/kamusis/studymatch/internal/artifact"
	"github.com/kamusis/studymatch/internal/config"
	"github.com/kamusis/studymatch/internal/retrieval"
	"github.com/spf13/cobra"
)

var (
	flagMentorsPrograms    string
	flagMentorsTopPrograms int
	flagMentorsPerProgram  int
	flagMentorsLanguage    string
)

var mentorsCmd = &cobra.Command{
	Use:   "mentors",
	Short: "Rank mentors for the top programs of the last program run",
	Long: `Read student_program.csv from the output dir (or --programs), take the
best distinct programs and rank every mentor's expertise against each
program's field tags. Results go to program_mentor_scored.csv.`,
	RunE: runMentors,
}

func init() {
	mentorsCmd.Flags().StringVar(&flagMentorsPrograms, "programs", "", "Program artifact to read (default: <output_dir>/student_program.csv)")
	mentorsCmd.Flags().IntVar(&flagMentorsTopPrograms, "top-programs", 0, "Distinct programs to staff (default: mentor_programs from config)")
	mentorsCmd.Flags().IntVar(&flagMentorsPerProgram, "per-program", 0, "Mentors per program (default: mentors_per_program from config)")
	mentorsCmd.Flags().StringVar(&flagMentorsLanguage, "language", "", "Only mentors who speak this language")
	rootCmd.AddCommand(mentorsCmd)
}

type mentorsOptions struct {
	ProgramsPath string
	TopPrograms  int
	PerProgram   int
	Language     string
}

func runMentors(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	rows, err := mentorsRun(cfg, mentorsOptions{
		ProgramsPath: flagMentorsPrograms,
		TopPrograms:  flagMentorsTopPrograms,
		PerProgram:   flagMentorsPerProgram,
		Language:     flagMentorsLanguage,
	})
	if err != nil {
		return err
	}

	printSection("Mentors")
	printMentorRows(rows)
	fmt.Println()
	printOK("", fmt.Sprintf("%d row(s) written to %s", len(rows), cfg.OutputPath(artifact.MentorFile)))
	return nil
}

// mentorsRun ranks mentors for the program artifact and writes
// program_mentor_scored.csv.
func mentorsRun(cfg *config.Config, opts mentorsOptions) ([]artifact.MentorRow, error) {
	path := opts.ProgramsPath
	if path == "" {
		path = cfg.OutputPath(artifact.ProgramFile)
	}
	programs, err := artifact.ReadPrograms(path)
	if err != nil {
		return nil, fmt.Errorf("%w\nRun 'studymatch programs' first.", err)
	}
	eng, err := loadEngine(cfg, needMentor)
	if err != nil {
		return nil, err
	}

	rows := eng.Mentors(retrieval.MentorRequest{
		Programs:    programs,
		TopPrograms: orConfig(opts.TopPrograms, cfg.MentorPrograms),
		PerProgram:  orConfig(opts.PerProgram, cfg.MentorsPerProgram),
		Language:    opts.Language,
	})

	sinks, err := openSinks(cfg)
	if err != nil {
		return nil, err
	}
	defer sinks.Close()
	if err := sinks.Mentors(rows); err != nil {
		return nil, fmt.Errorf("cannot write mentor artifact: %w", err)
	}
	return rows, nil
}

// printMentorRows prints one block per program in artifact order.
func printMentorRows(rows []artifact.MentorRow) {
	if len(rows) == 0 {
		printMiss("", "no mentors matched")
		return
	}
	var w *tabwriter.Writer
	current := ""
	for _, r := range rows {
		if r.ProgramID != current || w == nil {
			if w != nil {
				_ = w.Flush()
			}
			current = r.ProgramID
			printBullet(fmt.Sprintf("%s (%s)", r.ProgramID, r.FieldTags))
			w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		}
		fmt.Fprintf(w, "  %s\t%s\t%s\t%.0fy\t%.4f\n", r.MentorID, r.ExpertiseTags, r.Languages, r.YearsExperience, r.PredLabelMatch)
	}
	_ = w.Flush()
}
