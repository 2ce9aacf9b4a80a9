package player

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cuewatch/cue/log"
)

var (
	// ErrTimeout means a single call got no matching reply within the call timeout.
	ErrTimeout = errors.New("ipc: call timed out")

	// ErrCommandFailed means the player answered with something other than "success".
	ErrCommandFailed = errors.New("ipc: command failed")

	// ErrConnectionLost means the channel is broken and no further call can succeed.
	ErrConnectionLost = errors.New("ipc: connection lost")

	// ErrProcessExited means the player went away before its channel could be reached.
	ErrProcessExited = errors.New("ipc: player exited before the channel was ready")
)

const (
	defaultCallTimeout   = 2 * time.Second
	defaultRetryInterval = 200 * time.Millisecond
)

// ipcRequest is one newline-terminated JSON command sent to the player.
type ipcRequest struct {
	Command   []any `json:"command"`
	RequestID int64 `json:"request_id"`
}

// ipcResponse covers both replies and the asynchronous events interleaved with them.
type ipcResponse struct {
	RequestID *int64 `json:"request_id"`
	Error     string `json:"error"`
	Data      any    `json:"data"`
	Event     string `json:"event"`
}

// ConnectOptions tunes Connect.
type ConnectOptions struct {
	// Timeout bounds the whole connection attempt.
	Timeout time.Duration
	// Interval is the pause between attempts.
	Interval time.Duration
	// CallTimeout bounds every Send on the resulting channel.
	CallTimeout time.Duration
	// Alive, when set, aborts the attempt as soon as it returns false.
	Alive func() bool
}

// Channel is a request/response connection to a player's JSON IPC server.
//
// Calls are serialized. Replies are matched by request_id; anything else on
// the stream (events, stale replies, garbage) is dropped.
type Channel struct {
	conn        net.Conn
	reader      *bufio.Reader
	callTimeout time.Duration
	nextID      atomic.Int64
	mu          sync.Mutex
	closed      atomic.Bool
}

// NewChannel wraps an established connection.
func NewChannel(conn net.Conn, callTimeout time.Duration) *Channel {
	if callTimeout <= 0 {
		callTimeout = defaultCallTimeout
	}
	return &Channel{
		conn:        conn,
		reader:      bufio.NewReader(conn),
		callTimeout: callTimeout,
	}
}

// Connect dials the player's control channel at address, retrying until it
// accepts or the timeout elapses. A missing socket and a refused connection
// are expected while the player boots and are retried.
func Connect(ctx context.Context, address string, opts ConnectOptions) (*Channel, error) {
	conn, err := dialRetry(ctx, opts, func(timeout time.Duration) (net.Conn, error) {
		return dialChannel(address, timeout)
	}, retryableDial)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", address, err)
	}
	return NewChannel(conn, opts.CallTimeout), nil
}

// dialRetry runs dial until it succeeds, fails permanently, or runs out of time.
func dialRetry(ctx context.Context, opts ConnectOptions, dial func(time.Duration) (net.Conn, error), retryable func(error) bool) (net.Conn, error) {
	interval := opts.Interval
	if interval <= 0 {
		interval = defaultRetryInterval
	}

	deadline := time.Now().Add(opts.Timeout)
	var lastErr error

	for attempt := 1; ; attempt++ {
		conn, err := dial(interval)
		if err == nil {
			log.Debugf("control channel ready after %d attempt(s)", attempt)
			return conn, nil
		}
		if !retryable(err) {
			return nil, err
		}
		lastErr = err

		if opts.Alive != nil && !opts.Alive() {
			return nil, ErrProcessExited
		}
		if time.Now().Add(interval).After(deadline) {
			return nil, fmt.Errorf("gave up after %d attempts: %w", attempt, lastErr)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
		}
	}
}

// Send issues one command and returns the data of its reply.
func (c *Channel) Send(args ...any) (any, error) {
	if c.closed.Load() {
		return nil, ErrConnectionLost
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID.Add(1)
	payload, err := json.Marshal(ipcRequest{Command: args, RequestID: id})
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	deadline := time.Now().Add(c.callTimeout)
	if err := c.conn.SetDeadline(deadline); err != nil {
		return nil, classify(err)
	}

	if _, err := c.conn.Write(append(payload, '\n')); err != nil {
		return nil, classify(err)
	}

	for {
		line, err := c.reader.ReadBytes('\n')
		if err != nil {
			return nil, classify(err)
		}

		var resp ipcResponse
		if err := json.Unmarshal(line, &resp); err != nil {
			log.Tracef("ipc: skipping malformed line %q", line)
			continue
		}
		if resp.RequestID == nil || *resp.RequestID != id {
			continue
		}
		if resp.Error != "success" {
			return nil, fmt.Errorf("%w: %v: %s", ErrCommandFailed, args, resp.Error)
		}
		return resp.Data, nil
	}
}

// GetFloat reads a numeric property.
func (c *Channel) GetFloat(property string) (float64, error) {
	data, err := c.Send("get_property", property)
	if err != nil {
		return 0, err
	}
	return toFloat(property, data)
}

// GetInt reads an integral property.
func (c *Channel) GetInt(property string) (int, error) {
	f, err := c.GetFloat(property)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

// GetString reads a string property.
func (c *Channel) GetString(property string) (string, error) {
	data, err := c.Send("get_property", property)
	if err != nil {
		return "", err
	}
	s, ok := data.(string)
	if !ok {
		return "", fmt.Errorf("property %s: expected string, got %T", property, data)
	}
	return s, nil
}

// SetProperty writes a property.
func (c *Channel) SetProperty(property string, value any) error {
	_, err := c.Send("set_property", property, value)
	return err
}

// Seek jumps to an absolute position in seconds.
func (c *Channel) Seek(seconds float64) error {
	_, err := c.Send("seek", strconv.FormatFloat(seconds, 'f', -1, 64), "absolute")
	return err
}

// Close closes the underlying connection. It is safe to call more than once.
func (c *Channel) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	return c.conn.Close()
}

// Closed reports whether Close has been called.
func (c *Channel) Closed() bool {
	return c.closed.Load()
}

func toFloat(property string, data any) (float64, error) {
	switch v := data.(type) {
	case float64:
		return v, nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("property %s: %w", property, err)
		}
		return f, nil
	case nil:
		return 0, fmt.Errorf("property %s: nil response", property)
	default:
		return 0, fmt.Errorf("property %s: expected number, got %T", property, data)
	}
}

// classify maps transport errors onto the channel's error kinds.
// Deadlines are per call; anything else (EOF, EPIPE, ECONNRESET, closed) breaks the channel.
func classify(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}
	return fmt.Errorf("%w: %v", ErrConnectionLost, err)
}
