// Package version holds the application version, set at build time via ldflags.
package version

// Version is the application version string.
// Overridden at build time: -ldflags "-X .../internal/version.Version=v1.2.3"
var Version = "dev"
