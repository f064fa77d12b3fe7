// Package version holds the build version string.
package version

// Version is overridden at build time with -ldflags "-X vidfetch/internal/version.Version=...".
var Version = "0.2.0"
