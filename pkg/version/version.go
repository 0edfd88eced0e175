// Package version exposes build metadata injected via ldflags.
package version

import (
	"fmt"
	"runtime"
)

// Set at build time:
//
//	go build -ldflags "-X .../pkg/version.Version=1.2.0 -X .../pkg/version.GitCommit=$(git rev-parse HEAD)"
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo carries the build metadata in one JSON-friendly struct.
type BuildInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
}

// Get returns the build metadata.
func Get() BuildInfo {
	return BuildInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: GoVersion,
	}
}

// String returns a single-line version string for startup logs.
func String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s, go: %s)", Version, GitCommit, BuildDate, GoVersion)
}
