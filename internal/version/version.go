// Package version provides build information for holicache.
package version

import (
	"regexp"
	"runtime"
)

var (
	// Version is the semantic version (injected at build time via ldflags).
	Version = "dev"
	// Commit is the git commit hash (injected at build time via ldflags).
	Commit = "none"
	// BuildDate is the build timestamp (injected at build time via ldflags).
	BuildDate = "unknown"
)

// describePattern matches `git describe --tags --dirty` output for a build
// that is ahead of its tag, e.g. v0.1.0-3-gabc1234-dirty.
var describePattern = regexp.MustCompile(`^(v?\d+\.\d+\.\d+)-(\d+)-g[0-9a-f]+(-dirty)?$`)

// Short returns the version, collapsing a git describe string to
// tag-commit-distance.
func Short() string {
	m := describePattern.FindStringSubmatch(Version)
	if m == nil {
		return Version
	}
	return m[1] + "-" + Commit + "-" + m[2]
}

// String returns formatted version information.
func String() string {
	return Short() + " (commit: " + Commit + ", built: " + BuildDate + ", " + runtime.Version() + ")"
}
