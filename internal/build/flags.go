// SPDX-License-Identifier: MIT
package build

import "fmt"

// ldFlags holds build-time information that is injected during compilation.
// The fields are populated via -ldflags during the build process, for example:
//
//	go build -ldflags "-X denoise/internal/build.buildName=denoise -X denoise/internal/build.buildVersion=0.1.0"
//
// Required flags for production builds:
// - Name: Application name (e.g., "denoise")
// - Time: Build timestamp (RFC3339 format)
// - Commit: Git commit hash
// - Version: Semantic version (e.g., "0.1.0")
//
// Description is not ldflags-injected; it is a static string describing the
// binary for the CLI's help text.
type ldFlags struct {
	Name        string
	Time        string
	Commit      string
	Version     string
	Description string
}

var (
	buildName    string
	buildTime    string
	buildCommit  string
	buildVersion string
	buildFlags   = &ldFlags{
		Name:        "unknown",
		Time:        "unknown",
		Commit:      "unknown",
		Version:     "unknown",
		Description: "single-channel spectral-subtraction noise reduction engine",
	}
)

// Initialize validates and copies build information from ldflags variables
// into the buildFlags struct. This must be called early in program startup
// to ensure all build information is properly set. Returns an error if any
// required build flag is missing.
func Initialize() error {
	if buildName == "" {
		return fmt.Errorf("BuildName is required")
	}
	if buildTime == "" {
		return fmt.Errorf("BuildTime is required")
	}
	if buildCommit == "" {
		return fmt.Errorf("BuildCommit is required")
	}
	if buildVersion == "" {
		return fmt.Errorf("BuildVersion is required")
	}

	buildFlags.Name = buildName
	buildFlags.Time = buildTime
	buildFlags.Commit = buildCommit
	buildFlags.Version = buildVersion

	return nil
}

// GetBuildFlags returns the current build information. Initialize() must be
// called before this function to ensure the build information is valid.
func GetBuildFlags() *ldFlags {
	return buildFlags
}
