// Package version identifies the seeder build. The variables are set at
// link time with -ldflags "-X".
package version

import "fmt"

var (
	// Version is the current application version
	Version = "dev"
	// GitSHA is the git commit SHA
	GitSHA = "unknown"
	// BuildTime is the build timestamp
	BuildTime = "unknown"
)

// String formats the build identification for -version output and run logs.
func String() string {
	return fmt.Sprintf("trackseed %s (%s, built %s)", Version, GitSHA, BuildTime)
}
