// Package appversion holds the coach version stamped at build time with
// -ldflags "-X coach/internal/appversion.version=...".
package appversion

var version = "dev" //nolint:gochecknoglobals // ldflags requires package-level var

// String returns the build version, or "dev" for unstamped builds.
func String() string {
	return version
}
