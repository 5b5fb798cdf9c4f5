package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"husk/internal/diagfmt"
	"husk/internal/driver"
	"husk/internal/ui"
	"husk/internal/version"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] [file.hk|directory]...",
	Short: "Resolve, type and contract-check husk sources",
	Long: `Check runs the front end over the given files and directories, or over the
package root of the nearest husk.toml, and prints original diagnostics.`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	checkCmd.Flags().String("path-mode", "auto", "how file paths are printed (auto|absolute|relative|basename)")
	checkCmd.Flags().Bool("with-notes", true, "include diagnostic notes")
	checkCmd.Flags().Int("context", 1, "source lines shown around each diagnostic")
	checkCmd.Flags().Bool("cache", false, "serve diagnostics of unchanged crates from the disk cache")
	checkCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd, args)
	if err != nil {
		return err
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	format = strings.ToLower(format)
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unknown format: %s", format)
	}
	pathModeStr, err := cmd.Flags().GetString("path-mode")
	if err != nil {
		return fmt.Errorf("failed to get path-mode flag: %w", err)
	}
	pathMode, ok := diagfmt.ParsePathMode(pathModeStr)
	if !ok {
		return fmt.Errorf("invalid --path-mode value %q", pathModeStr)
	}
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	contextLines, err := cmd.Flags().GetInt("context")
	if err != nil {
		return fmt.Errorf("failed to get context flag: %w", err)
	}
	uiStr, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiStr)
	if err != nil {
		return err
	}

	opts := driver.Options{
		Paths:          s.paths,
		BaseDir:        s.baseDir,
		MaxDiagnostics: s.maxDiagnostics,
		Jobs:           s.jobs,
		ToolVersion:    version.Semver(),
	}
	if s.cache {
		if opts.Cache, err = driver.OpenDiskCache("husk"); err != nil {
			return err
		}
	}

	var res *driver.Result
	if format == "pretty" && shouldUseTUI(mode) {
		res, err = checkWithUI(cmd.Context(), "husk check", opts)
	} else {
		res, err = driver.Check(cmd.Context(), opts)
	}
	if err != nil {
		dumpTraceRing(cmd)
		return err
	}

	switch format {
	case "json":
		err = diagfmt.JSON(cmd.OutOrStdout(), res.Bag, res.FileSet, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			Max:              s.maxDiagnostics,
			IncludeNotes:     withNotes,
		})
	default:
		var color bool
		if color, err = useColor(cmd, os.Stdout); err != nil {
			return err
		}
		err = diagfmt.Pretty(cmd.OutOrStdout(), res.Bag, res.FileSet, diagfmt.PrettyOpts{
			Color:     color,
			Context:   contextLines,
			PathMode:  pathMode,
			ShowNotes: withNotes,
			Max:       s.maxDiagnostics,
		})
	}
	if err != nil {
		return err
	}
	if err := printTimings(cmd, res); err != nil {
		return err
	}
	if res.Bag.HasErrors() {
		return errHasErrors
	}
	return nil
}

type checkOutcome struct {
	res *driver.Result
	err error
}

// checkWithUI runs the check in the background and renders its progress
// until the event channel closes.
func checkWithUI(ctx context.Context, title string, opts driver.Options) (*driver.Result, error) {
	files := make([]string, 0, len(opts.Paths))
	if srcs, err := sourcesOf(opts.Paths); err == nil {
		files = srcs
	}
	events := make(chan driver.Event, 256)
	outcome := make(chan checkOutcome, 1)
	go func() {
		opts.Progress = driver.ChannelSink{Ch: events}
		res, err := driver.Check(ctx, opts)
		outcome <- checkOutcome{res: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, opts.Lower, events)
	_, uiErr := tea.NewProgram(model, tea.WithOutput(os.Stderr)).Run()
	out := <-outcome
	if uiErr != nil {
		return out.res, uiErr
	}
	return out.res, out.err
}

func printTimings(cmd *cobra.Command, res *driver.Result) error {
	show, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	if !show {
		return nil
	}
	w := cmd.ErrOrStderr()
	if res.Cached {
		_, err = fmt.Fprintln(w, "timings: served from cache")
		return err
	}
	_, err = fmt.Fprint(w, res.Timings.Summary())
	return err
}
