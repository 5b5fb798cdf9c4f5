// Package version holds build metadata for the husk CLI. The variables
// are overridden at build time with -ldflags "-X husk/internal/version.X=...".
package version

import (
	"strings"

	"github.com/fatih/color"
)

var (
	// Version is the semantic version; empty means a development build.
	Version    = ""
	GitCommit  = ""
	GitMessage = ""
	// BuildDate is ISO-8601.
	BuildDate = ""
)

const devVersion = "0.1.0-dev"

var (
	majorColor = color.New(color.FgYellow, color.Bold)
	minorColor = color.New(color.FgGreen, color.Bold)
	patchColor = color.New(color.FgBlue, color.Bold)
)

// Semver returns Version, or the development version when it is unset.
func Semver() string {
	if Version == "" {
		return devVersion
	}
	return Version
}

// Colored renders the version with each numeric component colored.
// Output obeys color.NoColor.
func Colored() string {
	v := Semver()
	core, suffix, _ := strings.Cut(v, "-")
	parts := strings.SplitN(core, ".", 3)
	if len(parts) != 3 {
		return v
	}
	out := majorColor.Sprint(parts[0]) + "." + minorColor.Sprint(parts[1]) + "." + patchColor.Sprint(parts[2])
	if suffix != "" {
		out += "-" + suffix
	}
	return out
}

// Info renders the multi-line build description printed by `husk version`.
func Info(colored bool) string {
	var sb strings.Builder
	sb.WriteString("husk ")
	if colored {
		sb.WriteString(Colored())
	} else {
		sb.WriteString(Semver())
	}
	sb.WriteString("\n")
	if GitCommit != "" {
		sb.WriteString("commit: " + GitCommit)
		if GitMessage != "" {
			sb.WriteString(" (" + GitMessage + ")")
		}
		sb.WriteString("\n")
	}
	if BuildDate != "" {
		sb.WriteString("built: " + BuildDate + "\n")
	}
	return sb.String()
}
