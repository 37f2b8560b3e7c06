// Package version holds build identification for the nuanceur CLI.
// The variables can be overridden at build time via -ldflags -X.
package version

import (
	"strings"

	"github.com/fatih/color"
)

var (
	// Version is the semantic version, e.g. 0.1.0-dev.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

var (
	majorColor = color.New(color.FgYellow, color.Bold)
	minorColor = color.New(color.FgGreen, color.Bold)
	patchColor = color.New(color.FgBlue, color.Bold)
)

// Info is the machine-readable form printed by `version --format json`.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
}

func Current() Info {
	return Info{Version: Version, GitCommit: GitCommit, BuildDate: BuildDate}
}

// Pretty colors the major, minor and patch numbers of Version. Anything that
// is not of the form X.Y.Z[-suffix] is returned unchanged. Colors follow
// color.NoColor.
func Pretty() string {
	core, suffix, hasSuffix := strings.Cut(Version, "-")
	parts := strings.Split(core, ".")
	if len(parts) != 3 {
		return Version
	}
	out := majorColor.Sprint(parts[0]) + "." + minorColor.Sprint(parts[1]) + "." + patchColor.Sprint(parts[2])
	if hasSuffix {
		out += "-" + suffix
	}
	return out
}

// ShortCommit trims GitCommit to 12 characters.
func ShortCommit() string {
	if len(GitCommit) > 12 {
		return GitCommit[:12]
	}
	return GitCommit
}
