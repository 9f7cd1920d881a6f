// Package version carries build metadata set through ldflags:
//
//	go build -ldflags "-X git.home.luguber.info/inful/docweave/internal/version.Version=v0.3.0"
package version

import "fmt"

// Version is the release version.
var Version = "dev"

// BuildInfo contains additional build metadata.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String is the text printed by --version.
func String() string {
	if GitCommit == "unknown" && BuildTime == "unknown" {
		return "docweave " + Version
	}
	return fmt.Sprintf("docweave %s (commit %s, built %s)", Version, GitCommit, BuildTime)
}
