// Package version holds the build version surfaced in the health endpoint
// and the startup banner.
package version

import "fmt"

var (
	// Version is the semver of the current build.
	Version = "0.3.0"
	// DevVersion is shown when running an untagged build.
	DevVersion = fmt.Sprintf("%s-dev", Version)
)

// GetCurrentVersion returns the version for the given run mode.
func GetCurrentVersion(mode string) string {
	if mode == "dev" || mode == "demo" {
		return DevVersion
	}
	return Version
}
