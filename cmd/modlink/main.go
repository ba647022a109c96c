package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"modlink/internal/version"
)

// errDiagnostics signals a compilation with diagnostics; they are already printed.
var errDiagnostics = errors.New("compilation failed")

var rootCmd = &cobra.Command{
	Use:           "modlink",
	Short:         "Module composition checker for contract bundles",
	Long:          `modlink resolves imports, exports and access grants between contract modules and reports the final external surface`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Version = version.Version
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(surfaceCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	flags := rootCmd.PersistentFlags()
	flags.String("color", "auto", "colorize output (auto|on|off)")
	flags.Bool("timings", false, "show timing information")
	flags.Int("max-diagnostics", 0, "maximum number of diagnostics to keep (0 = manifest or unlimited)")
	flags.StringSliceP("path", "p", nil, "additional module search path (repeatable)")
	flags.Int("jobs", 0, "max parallel module checks per batch (0=auto)")
	flags.Bool("disk-cache", false, "reuse surfaces of unchanged modules from the user cache dir")
	flags.String("trace", "", "trace output file (- for stderr)")
	flags.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	flags.String("trace-format", "text", "trace format (text|ndjson)")
	flags.String("log-level", "warn", "log level (debug|info|warn|error)")
	flags.String("cpuprofile", "", "write a CPU profile to file")
	flags.String("memprofile", "", "write a heap profile to file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errDiagnostics) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
