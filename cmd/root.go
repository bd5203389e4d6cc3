package cmd

import (
	"fmt"
	"os"

	"github.com/kamusis/studymatch/internal/config"
	"github.com/kamusis/studymatch/internal/logging"
	"github.com/spf13/cobra"
)

var (
	flagConfig    string
	flagLogLevel  string
	flagLogFormat string
)

var rootCmd = &cobra.Command{
	Use:          "studymatch",
	Short:        "studymatch: rank programs, core clusters and mentors for students",
	SilenceUsage: true, // don't print usage on operational errors
	Long: `studymatch matches student profiles to academic programs, core study
clusters and mentors using label similarity tables, eligibility rules,
institution rank and scholarship-adjusted tuition.

Reference tables and settings live in ~/.studymatch/studymatch.yaml.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logging.Init(logging.Config{Level: flagLogLevel, Format: flagLogFormat})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default ~/.studymatch/studymatch.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "Log format: console or json")
}

// loadConfig reads the config named by --config and applies its log
// settings unless the log flags override them.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("cannot load config: %w\nRun 'studymatch init' first.", err)
	}
	level, format := flagLogLevel, flagLogFormat
	if level == "" {
		level = cfg.Log.Level
	}
	if format == "" {
		format = cfg.Log.Format
	}
	logging.Init(logging.Config{Level: level, Format: format})
	return cfg, nil
}

// Execute is called by main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		printErr("", err.Error())
		os.Exit(1)
	}
}
