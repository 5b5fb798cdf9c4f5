package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"husk/internal/prof"
)

// startProfiling starts the profiles named by the profiling flags and
// returns the function that finishes them.
func startProfiling(cmd *cobra.Command) (func(), error) {
	flags := cmd.Root().PersistentFlags()
	var opts prof.Options
	for name, dst := range map[string]*string{
		"cpuprofile":    &opts.CPU,
		"memprofile":    &opts.Mem,
		"runtime-trace": &opts.Trace,
	} {
		v, err := flags.GetString(name)
		if err != nil {
			return nil, fmt.Errorf("failed to get %s flag: %w", name, err)
		}
		*dst = v
	}
	if !opts.Enabled() {
		return func() {}, nil
	}
	s, err := prof.Start(opts)
	if err != nil {
		return nil, err
	}
	return func() {
		if err := s.Stop(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "profile: %v\n", err)
		}
	}, nil
}
