// Package buildinfo provides build-time information.
//
// Values are injected at build time via ldflags:
//
//	go build -ldflags "-X github.com/ashureev/taskboard/internal/buildinfo.Mode=production"
package buildinfo

import "strings"

// Build-time variables (set via ldflags).
var (
	// Mode selects how clients reach the backend: "development" or "production".
	Mode = "development"
	// Version is the semantic version.
	Version = "dev"
	// Commit is the git commit hash.
	Commit = "unknown"
)

// BuildMode is the deployment mode a binary was built for.
type BuildMode string

const (
	Development BuildMode = "development"
	Production  BuildMode = "production"
)

// ParseMode maps a raw mode string onto a BuildMode. Anything that is not
// recognisably production is treated as development.
func ParseMode(raw string) BuildMode {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return Production
	default:
		return Development
	}
}

// CurrentMode returns the mode this binary was built with.
func CurrentMode() BuildMode {
	return ParseMode(Mode)
}

// String returns a formatted version string.
func String() string {
	return Version + " (" + Commit + ", " + string(CurrentMode()) + ")"
}
