//go:build windows

package player

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"time"

	"gopkg.in/natefinch/npipe.v2"
)

// channelAddress returns the named pipe for a launch, scoped by the host PID.
// Named pipes live outside the filesystem, so dir is unused.
func channelAddress(_ string, pid int, seq int64) string {
	return fmt.Sprintf(`\\.\pipe\cue-mpv-%d-%d`, pid, seq)
}

func dialChannel(address string, timeout time.Duration) (net.Conn, error) {
	return npipe.DialTimeout(address, timeout)
}

// retryableDial is true while the pipe does not exist yet or is busy.
func retryableDial(err error) bool {
	if errors.Is(err, fs.ErrNotExist) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// removeChannel is a no-op: the pipe disappears with its server.
func removeChannel(string) {}
