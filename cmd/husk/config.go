package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"husk/internal/project"
)

// settings merges husk.toml with command-line flags. Flags win.
type settings struct {
	manifest       *project.Manifest
	paths          []string
	baseDir        string
	maxDiagnostics int
	jobs           int
	cache          bool
}

// findManifest looks for husk.toml above the first argument, or above the
// working directory when there is none. A missing manifest is not an error.
func findManifest(args []string) (*project.Manifest, error) {
	start := "."
	if len(args) > 0 {
		start = args[0]
		if info, err := os.Stat(start); err == nil && !info.IsDir() {
			start = filepath.Dir(start)
		}
	}
	path, ok, err := project.FindManifest(start)
	if err != nil || !ok {
		return nil, err
	}
	return project.LoadManifest(path)
}

func loadSettings(cmd *cobra.Command, args []string) (*settings, error) {
	m, err := findManifest(args)
	if err != nil {
		return nil, err
	}
	s := &settings{manifest: m, paths: args}
	if m != nil {
		s.maxDiagnostics = m.Check.MaxDiagnostics
		s.jobs = m.Check.Jobs
		s.cache = m.Check.Cache
		s.baseDir = m.Dir
		if len(s.paths) == 0 {
			root, err := m.SourceRoot()
			if err != nil {
				return nil, fmt.Errorf("%s: %w", filepath.Join(m.Dir, project.ManifestName), err)
			}
			s.paths = []string{root}
		}
	}
	if len(s.paths) == 0 {
		s.paths = []string{"."}
	}
	if s.baseDir == "" {
		if s.baseDir, err = os.Getwd(); err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
	}

	flags := cmd.Root().PersistentFlags()
	if v, err := flags.GetInt("max-diagnostics"); err != nil {
		return nil, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	} else if v > 0 {
		s.maxDiagnostics = v
	}
	if v, err := flags.GetInt("jobs"); err != nil {
		return nil, fmt.Errorf("failed to get jobs flag: %w", err)
	} else if v > 0 {
		s.jobs = v
	}
	if f := cmd.Flags().Lookup("cache"); f != nil && f.Changed {
		if s.cache, err = cmd.Flags().GetBool("cache"); err != nil {
			return nil, fmt.Errorf("failed to get cache flag: %w", err)
		}
	}
	return s, nil
}
