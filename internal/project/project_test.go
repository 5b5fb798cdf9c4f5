package project

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFindManifestWalksUp(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, ManifestName), "[package]\nname = \"demo\"\n")
	nested := filepath.Join(root, "src", "deep")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	path, ok, err := FindManifest(nested)
	if err != nil || !ok {
		t.Fatalf("FindManifest: ok=%v err=%v", ok, err)
	}
	if path != filepath.Join(root, ManifestName) {
		t.Fatalf("path = %s", path)
	}
}

func TestLoadManifest(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "src", "main.hk"), "")
	path := filepath.Join(root, ManifestName)
	write(t, path, `
[package]
name = "demo"
root = "src"

[check]
max_diagnostics = 20
jobs = 2
cache = true

[trace]
level = "phase"
mode = "ring"
`)
	m, err := LoadManifest(path)
	if err != nil {
		t.Fatal(err)
	}
	if m.Package.Name != "demo" || m.Check.MaxDiagnostics != 20 || m.Check.Jobs != 2 || !m.Check.Cache {
		t.Fatalf("manifest = %+v", m)
	}
	if m.Trace.Level != "phase" || m.Trace.Mode != "ring" {
		t.Fatalf("trace = %+v", m.Trace)
	}
	src, err := m.SourceRoot()
	if err != nil || src != filepath.Join(root, "src") {
		t.Fatalf("SourceRoot = %s, %v", src, err)
	}
}

func TestLoadManifestErrors(t *testing.T) {
	root := t.TempDir()
	cases := []struct {
		name, content string
		is            error
	}{
		{"no package", "[check]\njobs = 1\n", ErrPackageSectionMissing},
		{"bad name", "[package]\nname = \"1x\"\n", ErrPackageNameInvalid},
		{"unknown key", "[package]\nname = \"a\"\ncolour = true\n", nil},
		{"bad toml", "[package\n", nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			path := filepath.Join(root, c.name, ManifestName)
			write(t, path, c.content)
			_, err := LoadManifest(path)
			if err == nil {
				t.Fatalf("accepted %q", c.content)
			}
			if c.is != nil && !errors.Is(err, c.is) {
				t.Fatalf("err = %v, want %v", err, c.is)
			}
		})
	}
}

func TestSourceRootMustStayInside(t *testing.T) {
	m := &Manifest{Dir: t.TempDir(), Package: Package{Root: "../elsewhere"}}
	if _, err := m.SourceRoot(); err == nil {
		t.Fatalf("accepted an escaping root")
	}
}

func TestSources(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "b.hk"), "")
	write(t, filepath.Join(root, "a.hk"), "")
	write(t, filepath.Join(root, "notes.txt"), "")
	write(t, filepath.Join(root, ".hidden", "c.hk"), "")
	files, err := Sources([]string{root})
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 || files[0].Module != "a" || files[1].Module != "b" {
		t.Fatalf("files = %+v", files)
	}

	write(t, filepath.Join(root, "sub", "a.hk"), "")
	if _, err := Sources([]string{root}); err == nil {
		t.Fatalf("duplicate module accepted")
	}
}

func TestModuleName(t *testing.T) {
	if n, err := ModuleName("dir/geometry.hk"); err != nil || n != "geometry" {
		t.Fatalf("ModuleName = %q, %v", n, err)
	}
	if _, err := ModuleName("dir/my-mod.hk"); err == nil {
		t.Fatalf("accepted a dashed name")
	}
}

func TestCombineIsOrderSensitive(t *testing.T) {
	a, b := Digest{1}, Digest{2}
	if Combine(a, b) == Combine(b, a) || Combine(a, b) != Combine(a, b) {
		t.Fatalf("combine is not a stable ordered hash")
	}
}

func TestDigestOfAndHex(t *testing.T) {
	d := DigestOf("")
	// SHA-256 of the empty string.
	if got := d.Hex(); got != "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855" {
		t.Fatalf("Hex() = %s", got)
	}
	if DigestOf("a") == DigestOf("b") {
		t.Fatalf("distinct inputs share a digest")
	}
}
