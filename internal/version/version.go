// Package version provides build information. The values are set at build
// time using ldflags:
//
//	go build -ldflags "-X github.com/ramonehamilton/mtg-collector/internal/version.Version=v1.2.3"
package version

import "fmt"

var (
	// Version is the release version, "dev" for local builds.
	Version = "dev"
	// Commit is the git commit the binary was built from.
	Commit = "unknown"
)

// String returns the version line printed by --version.
func String(program string) string {
	return fmt.Sprintf("%s %s (commit %s)", program, Version, Commit)
}
