package version

import "fmt"

// Version contains the application version information.
// Set via build-time ldflags in release builds:
// go build -ldflags "-X git.home.luguber.info/inful/livebuild/internal/version.Version=v0.3.0".
var Version = "unknown"

// BuildInfo contains additional build metadata.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String renders the one-line form printed by --version.
func String() string {
	return fmt.Sprintf("livebuild %s (commit %s, built %s)", Version, GitCommit, BuildTime)
}
