package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"husk/internal/version"
)

// errHasErrors reports that the run printed error diagnostics. It carries
// no message of its own.
var errHasErrors = errors.New("errors reported")

var rootCmd = &cobra.Command{
	Use:           "husk",
	Short:         "Front end for the husk language",
	Long:          `husk resolves, types and checks ownership contracts of husk sources, and dumps the lowered forms.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// traceCleanup flushes the tracer and profiles set up for the running command.
var traceCleanup func()

func init() {
	rootCmd.Version = version.Semver()
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(hirCmd)
	rootCmd.AddCommand(instrCmd)
	rootCmd.AddCommand(tokensCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(versionCmd)

	pf := rootCmd.PersistentFlags()
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.Bool("timings", false, "print phase timings to stderr")
	pf.Int("max-diagnostics", 0, "maximum number of diagnostics to keep (0 uses husk.toml or 100)")
	pf.Int("jobs", 0, "regions checked in parallel (0 uses husk.toml or GOMAXPROCS)")
	pf.String("trace", "", "trace output file (- for stderr)")
	pf.String("trace-level", "", "trace level (off|error|phase|detail|debug)")
	pf.String("trace-mode", "", "trace storage mode (stream|ring|both)")
	pf.Int("trace-ring-size", 4096, "ring buffer size for --trace-mode=ring|both")
	pf.Duration("trace-heartbeat", 0, "emit a heartbeat event at this interval (0 disables)")
	pf.String("cpuprofile", "", "write a CPU profile to this file")
	pf.String("memprofile", "", "write a heap profile to this file on exit")
	pf.String("runtime-trace", "", "write a Go runtime trace to this file")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		stopProfiles, err := startProfiling(cmd)
		if err != nil {
			return err
		}
		stopTrace, err := setupTracing(cmd, args)
		if err != nil {
			stopProfiles()
			return err
		}
		traceCleanup = func() {
			stopTrace()
			stopProfiles()
		}
		return nil
	}
}

func main() {
	err := rootCmd.Execute()
	if traceCleanup != nil {
		traceCleanup()
	}
	if err != nil {
		if !errors.Is(err, errHasErrors) {
			fmt.Fprintf(os.Stderr, "husk: %v\n", err)
		}
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd())) //nolint:gosec // file descriptors fit in int
}

// useColor resolves --color for output written to f.
func useColor(cmd *cobra.Command, f *os.File) (bool, error) {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false, fmt.Errorf("failed to get color flag: %w", err)
	}
	switch mode {
	case "on":
		return true, nil
	case "off":
		return false, nil
	case "auto", "":
		return isTerminal(f), nil
	default:
		return false, fmt.Errorf("invalid --color value %q (expected auto|on|off)", mode)
	}
}
