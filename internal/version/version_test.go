package version

import (
	"strings"
	"testing"

	"github.com/fatih/color"
)

func override(t *testing.T, v, commit, msg, date string) {
	t.Helper()
	saved := [4]string{Version, GitCommit, GitMessage, BuildDate}
	Version, GitCommit, GitMessage, BuildDate = v, commit, msg, date
	t.Cleanup(func() {
		Version, GitCommit, GitMessage, BuildDate = saved[0], saved[1], saved[2], saved[3]
	})
}

func TestSemverDefaultsToDevelopment(t *testing.T) {
	override(t, "", "", "", "")
	if got := Semver(); got != devVersion {
		t.Fatalf("Semver() = %q", got)
	}
	if got := Info(false); got != "husk "+devVersion+"\n" {
		t.Fatalf("Info() = %q", got)
	}
}

func TestInfoIncludesBuildMetadata(t *testing.T) {
	override(t, "1.2.3", "abc123", "fix lexer", "2026-01-15T10:30:00Z")
	want := "husk 1.2.3\ncommit: abc123 (fix lexer)\nbuilt: 2026-01-15T10:30:00Z\n"
	if got := Info(false); got != want {
		t.Fatalf("Info() = %q, want %q", got, want)
	}
}

func TestColoredKeepsText(t *testing.T) {
	override(t, "1.2.3-rc1", "", "", "")
	saved := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = saved })
	if got := Colored(); got != "1.2.3-rc1" {
		t.Fatalf("Colored() = %q", got)
	}

	Version = "nightly"
	if got := Colored(); got != "nightly" {
		t.Fatalf("Colored() = %q", got)
	}

	color.NoColor = false
	Version = "1.2.3"
	if got := Colored(); !strings.Contains(got, "\x1b[") {
		t.Fatalf("Colored() = %q, want escapes", got)
	}
}
