package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// ManifestName is the file FindManifest looks for.
const ManifestName = "husk.toml"

var (
	// ErrPackageSectionMissing indicates that [package] is missing.
	ErrPackageSectionMissing = errors.New("missing [package]")
	// ErrPackageNameInvalid indicates that [package].name is not an identifier.
	ErrPackageNameInvalid = errors.New("invalid [package].name")
)

// Manifest is a decoded husk.toml. Dir is the directory holding it.
type Manifest struct {
	Dir     string
	Package Package
	Check   Check
	Trace   Trace
}

type Package struct {
	Name string `toml:"name"`
	// Root is the source directory relative to Dir; empty means Dir.
	Root string `toml:"root"`
}

type Check struct {
	MaxDiagnostics int  `toml:"max_diagnostics"`
	Jobs           int  `toml:"jobs"`
	Cache          bool `toml:"cache"`
}

type Trace struct {
	Level  string `toml:"level"`
	Output string `toml:"output"`
	Mode   string `toml:"mode"`
}

type manifestFile struct {
	Package Package `toml:"package"`
	Check   Check   `toml:"check"`
	Trace   Trace   `toml:"trace"`
}

// FindManifest walks up from startDir to locate husk.toml.
func FindManifest(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// LoadManifest decodes path. Unset [check] values stay zero; callers apply
// their own defaults.
func LoadManifest(path string) (*Manifest, error) {
	var cfg manifestFile
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("package") {
		return nil, fmt.Errorf("%s: %w", path, ErrPackageSectionMissing)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	name := strings.TrimSpace(cfg.Package.Name)
	if name != "" && !IsValidModuleIdent(name) {
		return nil, fmt.Errorf("%s: %w %q", path, ErrPackageNameInvalid, name)
	}
	return &Manifest{
		Dir:     filepath.Dir(path),
		Package: Package{Name: name, Root: strings.TrimSpace(cfg.Package.Root)},
		Check:   cfg.Check,
		Trace:   cfg.Trace,
	}, nil
}

// SourceRoot resolves [package].root against the manifest directory. The
// root must stay inside it.
func (m *Manifest) SourceRoot() (string, error) {
	root := m.Package.Root
	if root == "" {
		return m.Dir, nil
	}
	if filepath.IsAbs(root) {
		return "", fmt.Errorf("invalid [package].root %q: must be relative", root)
	}
	rootPath := filepath.Join(m.Dir, filepath.Clean(filepath.FromSlash(root)))
	if !pathWithin(m.Dir, rootPath) {
		return "", fmt.Errorf("invalid [package].root %q: escapes the project directory", root)
	}
	info, err := os.Stat(rootPath)
	if err != nil {
		return "", fmt.Errorf("invalid [package].root %q: %w", root, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("invalid [package].root %q: not a directory", root)
	}
	return rootPath, nil
}

func pathWithin(root, path string) bool {
	if root == "" || path == "" {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
