package cmd

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/kamusis/studymatch/internal/match"
	"github.com/kamusis/studymatch/internal/vecstore"
	"github.com/spf13/cobra"
)

// Set with -ldflags "-X github.com/kamusis/studymatch/cmd.version=..." at release.
var (
	version   = "dev"
	commit    = ""
	buildDate = ""
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show studymatch version, build and artifact format information",
	RunE:  runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

type versionInfo struct {
	Version      string
	Commit       string
	BuildDate    string
	GoVersion    string
	Platform     string
	StoreVersion int
	Precision    string
}

// currentVersion falls back to the module build info for binaries built
// with plain 'go install', where no ldflags were passed.
func currentVersion() versionInfo {
	v := versionInfo{
		Version:      version,
		Commit:       commit,
		BuildDate:    buildDate,
		GoVersion:    runtime.Version(),
		Platform:     runtime.GOOS + "/" + runtime.GOARCH,
		StoreVersion: vecstore.StoreVersion,
		Precision:    fmt.Sprintf("scores %d decimals, pred_label_match %d", match.ScoreDecimals, match.PredDecimals),
	}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return v
	}
	if v.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		v.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch {
		case s.Key == "vcs.revision" && v.Commit == "":
			v.Commit = s.Value
		case s.Key == "vcs.time" && v.BuildDate == "":
			v.BuildDate = s.Value
		}
	}
	return v
}

func runVersion(_ *cobra.Command, _ []string) error {
	v := currentVersion()
	fmt.Printf("Version:       %s\n", v.Version)
	fmt.Printf("Commit:        %s\n", emptyAsNA(v.Commit))
	fmt.Printf("Build Date:    %s\n", emptyAsNA(v.BuildDate))
	fmt.Printf("Go Version:    %s\n", v.GoVersion)
	fmt.Printf("OS/Arch:       %s\n", v.Platform)
	fmt.Printf("Label Store:   v%d\n", v.StoreVersion)
	fmt.Printf("Rounding:      %s\n", v.Precision)
	return nil
}

func emptyAsNA(s string) string {
	if s == "" {
		return "n/a"
	}
	return s
}
