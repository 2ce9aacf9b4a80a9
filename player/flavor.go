package player

import (
	"fmt"
	"net/url"
	"strings"
)

// Flavor is the command-line dialect of an mpv-based player.
// The engine flags are the same everywhere; only how they are handed over differs.
type Flavor string

const (
	// FlavorMPV passes engine flags straight to mpv.
	FlavorMPV Flavor = "mpv"
	// FlavorCelluloid wraps mpv and takes engine flags as one --mpv-options string.
	FlavorCelluloid Flavor = "celluloid"
	// FlavorIINA wraps mpv and takes engine flags under the --mpv- prefix.
	FlavorIINA Flavor = "iina"
)

// ParseFlavor validates a backend identifier.
func ParseFlavor(name string) (Flavor, error) {
	switch f := Flavor(strings.ToLower(strings.TrimSpace(name))); f {
	case FlavorMPV, FlavorCelluloid, FlavorIINA:
		return f, nil
	default:
		return "", fmt.Errorf("unknown mpv flavor %q", name)
	}
}

// DefaultExecutable is the binary looked up when none is configured.
func (f Flavor) DefaultExecutable() string {
	switch f {
	case FlavorCelluloid:
		return "celluloid"
	case FlavorIINA:
		return "iina-cli"
	default:
		return "mpv"
	}
}

// engineFlags start mpv paused and idle with its IPC server on address.
func engineFlags(address string) []string {
	return []string{
		"--input-ipc-server=" + address,
		"--idle=yes",
		"--pause",
		"--force-window=yes",
	}
}

// Args builds the full argument list for a launch: extra arguments first, then
// the flavor-specific rendering of the engine flags, then the playlist.
func (f Flavor) Args(extra []string, address string, playlist []string) []string {
	engine := engineFlags(address)
	args := append([]string{}, extra...)

	switch f {
	case FlavorCelluloid:
		args = append(args, "--new-window", "--mpv-options="+strings.Join(engine, " "))
	case FlavorIINA:
		for _, flag := range engine {
			args = append(args, "--mpv-"+strings.TrimPrefix(flag, "--"))
		}
	default:
		args = append(args, "--no-terminal")
		args = append(args, engine...)
	}

	for _, item := range playlist {
		args = append(args, mediaTarget(item))
	}
	return args
}

// mediaTarget keeps playlist entries from being read as flags.
func mediaTarget(item string) string {
	t := strings.Map(func(r rune) rune {
		if r == 0 || r == '\n' || r == '\r' {
			return -1
		}
		return r
	}, item)

	if strings.Contains(t, "://") {
		if _, err := url.Parse(t); err == nil {
			return t
		}
	}
	if strings.HasPrefix(t, "-") {
		return "./" + t
	}
	return t
}
