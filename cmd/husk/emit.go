package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"husk/internal/diagfmt"
	"husk/internal/driver"
	"husk/internal/hir"
	"husk/internal/instr"
	"husk/internal/tokeninfo"
	"husk/internal/version"
)

var hirCmd = &cobra.Command{
	Use:   "hir [flags] [file.hk|directory]...",
	Short: "Print the lowered form of every region that checked cleanly",
	RunE:  runHIR,
}

var instrCmd = &cobra.Command{
	Use:   "instr [flags] [file.hk|directory]...",
	Short: "Print the instruction listing of every lowered region",
	RunE:  runInstr,
}

var tokensCmd = &cobra.Command{
	Use:   "tokens [flags] [file.hk|directory]...",
	Short: "Print what every name in region bodies refers to",
	RunE:  runTokens,
}

func init() {
	for _, c := range []*cobra.Command{hirCmd, instrCmd, tokensCmd} {
		c.Flags().String("region", "", "only show regions whose name contains this text")
	}
}

// checkForEmit runs a full check and prints its diagnostics to stderr. The
// dump commands print whatever could be produced even when there are errors.
func checkForEmit(cmd *cobra.Command, args []string, lower bool) (*driver.Result, error) {
	s, err := loadSettings(cmd, args)
	if err != nil {
		return nil, err
	}
	res, err := driver.Check(cmd.Context(), driver.Options{
		Paths:          s.paths,
		BaseDir:        s.baseDir,
		MaxDiagnostics: s.maxDiagnostics,
		Jobs:           s.jobs,
		Lower:          lower,
		ToolVersion:    version.Semver(),
	})
	if err != nil {
		dumpTraceRing(cmd)
		return nil, err
	}
	if res.Bag.Len() > 0 {
		color, err := useColor(cmd, os.Stderr)
		if err != nil {
			return nil, err
		}
		if err := diagfmt.Pretty(cmd.ErrOrStderr(), res.Bag, res.FileSet, diagfmt.PrettyOpts{
			Color:     color,
			Context:   1,
			ShowNotes: true,
			Max:       s.maxDiagnostics,
		}); err != nil {
			return nil, err
		}
	}
	return res, printTimings(cmd, res)
}

func regionFilter(cmd *cobra.Command) (func(string) bool, error) {
	pattern, err := cmd.Flags().GetString("region")
	if err != nil {
		return nil, fmt.Errorf("failed to get region flag: %w", err)
	}
	return func(name string) bool { return strings.Contains(name, pattern) }, nil
}

func runHIR(cmd *cobra.Command, args []string) error {
	res, err := checkForEmit(cmd, args, true)
	if err != nil {
		return err
	}
	keep, err := regionFilter(cmd)
	if err != nil {
		return err
	}
	reg := res.DB.Reg()
	for _, m := range res.Modules {
		filtered := hir.NewModule(m.Name, m.Path)
		for _, r := range m.Regions {
			if keep(r.Key.Display(reg)) {
				filtered.Add(r)
			}
		}
		if err := hir.Dump(cmd.OutOrStdout(), res.DB, filtered); err != nil {
			return err
		}
	}
	return exitStatus(res)
}

func runInstr(cmd *cobra.Command, args []string) error {
	res, err := checkForEmit(cmd, args, true)
	if err != nil {
		return err
	}
	keep, err := regionFilter(cmd)
	if err != nil {
		return err
	}
	var seqs []*instr.Sequence
	for _, m := range res.Modules {
		got, err := instr.GenerateModule(res.DB, m)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "instr: %v\n", err)
		}
		for _, s := range got {
			if keep(s.Name) {
				seqs = append(seqs, s)
			}
		}
	}
	if err := instr.Dump(cmd.OutOrStdout(), res.DB, seqs); err != nil {
		return err
	}
	return exitStatus(res)
}

func runTokens(cmd *cobra.Command, args []string) error {
	res, err := checkForEmit(cmd, args, false)
	if err != nil {
		return err
	}
	keep, err := regionFilter(cmd)
	if err != nil {
		return err
	}
	var table tokeninfo.Table
	reg := res.DB.Reg()
	for _, r := range res.Regions {
		if r.Sema != nil && keep(r.Key.Display(reg)) {
			table.Collect(res.DB, r.Sema)
		}
	}
	table.Sort()
	if err := tokeninfo.Print(cmd.OutOrStdout(), res.FileSet, res.DB, &table); err != nil {
		return err
	}
	return exitStatus(res)
}

func exitStatus(res *driver.Result) error {
	if res.Bag.HasErrors() {
		return errHasErrors
	}
	return nil
}
