// Package version holds build metadata injected via ldflags:
//
//	-X github.com/kailas-cloud/facilitydex/internal/version.Version=v1.2.0
package version

import "fmt"

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// BuildVersion returns the version line printed by the binaries.
func BuildVersion(binary string) string {
	return fmt.Sprintf("%s %s (commit %s, built %s)", binary, Version, Commit, Date)
}
