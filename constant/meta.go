// Package constant defines immutable application-level identifiers.
package constant

const (
	// Cue is the canonical application identifier used for filesystem paths, env prefixes and CLI branding.
	Cue = "cue"

	// Version is the current application semantic version string.
	Version = "0.3.0"
)

// Build metadata, set with -ldflags "-X".
var (
	BuiltAt  string
	BuiltBy  string
	Revision string
)

// runtime.GOOS values cue branches on.
const (
	Windows = "windows"
	Darwin  = "darwin"
	Linux   = "linux"
)
