package project

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
	"unicode"
)

// SourceExt is the extension of source files.
const SourceExt = ".hk"

// SourceFile is one file of a crate and the module it defines.
type SourceFile struct {
	Path   string
	Module string
}

// IsValidModuleIdent reports whether name can name a module: an ASCII
// identifier.
func IsValidModuleIdent(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if r > unicode.MaxASCII {
			return false
		}
		if i == 0 && r != '_' && !unicode.IsLetter(r) {
			return false
		}
		if i > 0 && r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// ModuleName derives the module a file defines from its base name.
func ModuleName(path string) (string, error) {
	name := strings.TrimSuffix(filepath.Base(path), SourceExt)
	if !IsValidModuleIdent(name) {
		return "", fmt.Errorf("%s: %q is not a valid module name", path, name)
	}
	return name, nil
}

// Sources resolves command-line arguments to source files. A directory
// contributes every .hk file below it. Results are sorted by path and
// module names must be unique.
func Sources(args []string) ([]SourceFile, error) {
	var paths []string
	for _, arg := range args {
		err := filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != arg && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if path == arg || filepath.Ext(path) == SourceExt {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("collect sources: %w", err)
		}
	}
	slices.Sort(paths)
	paths = slices.Compact(paths)
	out := make([]SourceFile, 0, len(paths))
	seen := make(map[string]string, len(paths))
	for _, p := range paths {
		name, err := ModuleName(p)
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[name]; dup {
			return nil, fmt.Errorf("module %s is defined by both %s and %s", name, prev, p)
		}
		seen[name] = p
		out = append(out, SourceFile{Path: p, Module: name})
	}
	return out, nil
}
