//go:build !windows

package player

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"syscall"
	"time"
)

// channelAddress returns the socket path for a launch, scoped by the host PID.
func channelAddress(dir string, pid int, seq int64) string {
	return filepath.Join(dir, fmt.Sprintf("cue-mpv-%d-%d.sock", pid, seq))
}

func dialChannel(address string, timeout time.Duration) (net.Conn, error) {
	return net.DialTimeout("unix", address, timeout)
}

// retryableDial is true while the player is still creating its socket.
func retryableDial(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ECONNREFUSED)
}

// removeChannel deletes a leftover socket file.
func removeChannel(address string) {
	if err := os.Remove(address); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logRemoveFailure(address, err)
	}
}
