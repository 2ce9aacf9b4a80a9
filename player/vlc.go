package player

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cuewatch/cue/constant"
	"github.com/cuewatch/cue/log"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

// VLCOptions configures the VLC driver.
type VLCOptions struct {
	Executable     string
	Host           string
	ExtraArgs      []string
	PollInterval   time.Duration
	ConnectTimeout time.Duration
	CallTimeout    time.Duration
	TerminateGrace time.Duration
	Resolver       Resolver
	Clock          clockwork.Clock
}

// VLC drives VLC through its remote-control text interface over TCP.
//
// The interface cannot switch playlist entries reliably, so VLC is handed the
// playlist from the start index onwards and never paused.
type VLC struct {
	opts VLCOptions
}

// NewVLC returns a VLC driver. Zero options take their defaults.
func NewVLC(opts VLCOptions) *VLC {
	if opts.Executable == "" {
		opts.Executable = "vlc"
	}
	if opts.Host == "" {
		opts.Host = "127.0.0.1"
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Second
	}
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = 10 * time.Second
	}
	if opts.Resolver == nil {
		opts.Resolver = ContainsResolver{}
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	return &VLC{opts: opts}
}

func (v *VLC) Name() string { return "vlc" }

func (v *VLC) Launch(ctx context.Context, playlist []string, startIndex int, startTime float64) PlaybackState {
	if len(playlist) == 0 {
		return PlaybackState{}
	}

	startIndex = clampIndex(startIndex, len(playlist))
	fallback := fallbackState(playlist, startIndex, startTime, v.opts.Clock.Now())

	port, err := freePort(v.opts.Host)
	if err != nil {
		log.Errorf("vlc: no free port on %s: %v", v.opts.Host, err)
		return fallback
	}
	address := net.JoinHostPort(v.opts.Host, strconv.Itoa(port))

	logger := log.WithFields(logrus.Fields{
		"player":  v.Name(),
		"channel": address,
		"items":   len(playlist) - startIndex,
		"index":   startIndex,
		"start":   startTime,
	})

	args := append([]string{}, v.opts.ExtraArgs...)
	args = append(args,
		"--extraintf=rc",
		"--rc-host="+address,
		"--no-loop",
		"--no-repeat",
		"--one-instance",
	)
	for _, item := range playlist[startIndex:] {
		args = append(args, mediaTarget(item))
	}

	proc, err := StartProcess(v.opts.Executable, args)
	if err != nil {
		logger.Errorf("launch failed: %v", err)
		return fallback
	}
	defer func() {
		if err := proc.Terminate(v.opts.TerminateGrace); err != nil {
			logger.Warnf("terminate: %v", err)
		}
	}()

	conn, err := dialRetry(ctx, ConnectOptions{
		Timeout:  v.opts.ConnectTimeout,
		Interval: 500 * time.Millisecond,
		Alive:    proc.Alive,
	}, func(timeout time.Duration) (net.Conn, error) {
		return net.DialTimeout("tcp", address, timeout)
	}, func(err error) bool {
		var opErr *net.OpError
		return errors.As(err, &opErr)
	})
	if err != nil {
		logger.Warnf("rc interface unavailable: %v", err)
		return fallback
	}

	rc := newRCConn(conn, v.opts.CallTimeout)
	defer rc.Close()

	state := v.follow(ctx, proc, rc, playlist, startIndex, startTime)
	logger.WithFields(logrus.Fields{
		"file":     state.LastPlayedFile,
		"position": state.Position,
		"duration": state.Duration,
		"finished": state.IsFinished,
	}).Info("session ended")
	return state
}

func (v *VLC) follow(ctx context.Context, proc *Process, rc *rcConn, playlist []string, startIndex int, startTime float64) PlaybackState {
	mon := NewMonitor(rc, v.opts.Resolver, playlist[startIndex], startTime)
	mon.AdoptFirstReport()
	seeked := false

	ticker := v.opts.Clock.NewTicker(v.opts.PollInterval)
	defer ticker.Stop()

loop:
	for {
		if err := mon.Tick(); err != nil {
			log.Infof("vlc: %v", err)
			break
		}

		// Seek once, on the first file, as soon as its length is known.
		if !seeked && mon.Duration() > 0 {
			seeked = true
			if startTime > 0 && mon.Transitions() == 0 {
				if err := rc.Seek(startTime); err != nil {
					log.Warnf("vlc: seek: %v", err)
				}
			}
		}

		select {
		case <-ctx.Done():
			log.Infof("session cancelled: %v", ctx.Err())
			break loop
		case <-proc.Wait():
			break loop
		case <-ticker.Chan():
		}
	}

	return mon.Snapshot(playlist, startIndex, v.opts.Clock.Now())
}

// FindVLC looks for VLC on PATH and then in the usual install locations.
func FindVLC() (string, error) {
	if path, err := exec.LookPath("vlc"); err == nil {
		return path, nil
	}

	var candidates []string
	switch runtime.GOOS {
	case constant.Windows:
		candidates = []string{
			`C:\Program Files\VideoLAN\VLC\vlc.exe`,
			`C:\Program Files (x86)\VideoLAN\VLC\vlc.exe`,
		}
	case constant.Darwin:
		candidates = []string{"/Applications/VLC.app/Contents/MacOS/VLC"}
	}

	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c, nil
		}
	}
	return "", fmt.Errorf("vlc: %w", exec.ErrNotFound)
}

func freePort(host string) (int, error) {
	l, err := net.Listen("tcp", net.JoinHostPort(host, "0"))
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

// rcCommands maps the properties the monitor asks for onto rc commands.
var rcCommands = map[string]string{
	"path":     "get_title",
	"time-pos": "get_time",
	"duration": "get_length",
}

// rcConn speaks VLC's line-based rc protocol. Every command is answered by
// exactly one line, prefixed by the previous "> " prompt, which is stripped.
// A blank line is an empty value.
type rcConn struct {
	conn    net.Conn
	reader  *bufio.Reader
	timeout time.Duration
	closed  atomic.Bool
}

func newRCConn(conn net.Conn, timeout time.Duration) *rcConn {
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}
	c := &rcConn{conn: conn, reader: bufio.NewReader(conn), timeout: timeout}
	c.drain()
	return c
}

// drain discards the greeting banner.
func (c *rcConn) drain() {
	_ = c.conn.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	for {
		if _, err := c.reader.ReadString('\n'); err != nil {
			break
		}
	}
	c.reader.Reset(c.conn)
}

func (c *rcConn) send(cmd string) error {
	if c.closed.Load() {
		return ErrConnectionLost
	}
	if err := c.conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
		return classify(err)
	}
	if _, err := c.conn.Write([]byte(cmd + "\n")); err != nil {
		return classify(err)
	}
	return nil
}

func (c *rcConn) command(cmd string) (string, error) {
	if err := c.send(cmd); err != nil {
		return "", err
	}

	line, err := c.reader.ReadString('\n')
	if err != nil {
		return "", classify(err)
	}
	return strings.TrimSpace(strings.TrimLeft(line, "> ")), nil
}

func (c *rcConn) GetString(property string) (string, error) {
	cmd, ok := rcCommands[property]
	if !ok {
		return "", fmt.Errorf("rc: unsupported property %s", property)
	}
	return c.command(cmd)
}

func (c *rcConn) GetFloat(property string) (float64, error) {
	reply, err := c.GetString(property)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(reply, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %q", ErrCommandFailed, property, reply)
	}
	return f, nil
}

// Seek takes whole seconds only. VLC does not answer it.
func (c *rcConn) Seek(seconds float64) error {
	return c.send("seek " + strconv.Itoa(int(seconds)))
}

func (c *rcConn) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	return c.conn.Close()
}
