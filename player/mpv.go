package player

import (
	"context"
	"os"
	"sync/atomic"
	"time"

	"github.com/cuewatch/cue/log"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

// MPVOptions configures an mpv-family driver.
type MPVOptions struct {
	Executable     string
	Flavor         Flavor
	ExtraArgs      []string
	SocketDir      string
	PollInterval   time.Duration
	ConnectTimeout time.Duration
	StartupTimeout time.Duration
	CallTimeout    time.Duration
	TerminateGrace time.Duration
	Resolver       Resolver
	Clock          clockwork.Clock
}

// MPV drives mpv, or an mpv wrapper, over its JSON IPC server.
type MPV struct {
	opts MPVOptions
	seq  atomic.Int64

	// observe sees the live process and channel of each session.
	observe func(*Process, *Channel)
}

// NewMPV returns an mpv driver. Zero options take their defaults.
func NewMPV(opts MPVOptions) *MPV {
	if opts.Flavor == "" {
		opts.Flavor = FlavorMPV
	}
	if opts.Executable == "" {
		opts.Executable = opts.Flavor.DefaultExecutable()
	}
	if opts.SocketDir == "" {
		opts.SocketDir = os.TempDir()
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = 15 * time.Second
	}
	if opts.StartupTimeout <= 0 {
		opts.StartupTimeout = DefaultStartupTimeout
	}
	if opts.Resolver == nil {
		opts.Resolver = ContainsResolver{}
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	return &MPV{opts: opts}
}

func (m *MPV) Name() string {
	return string(m.opts.Flavor)
}

func (m *MPV) Launch(ctx context.Context, playlist []string, startIndex int, startTime float64) PlaybackState {
	if len(playlist) == 0 {
		return PlaybackState{}
	}

	startIndex = clampIndex(startIndex, len(playlist))
	fallback := fallbackState(playlist, startIndex, startTime, m.opts.Clock.Now())

	address := channelAddress(m.opts.SocketDir, os.Getpid(), m.seq.Add(1))
	removeChannel(address)
	defer removeChannel(address)

	logger := log.WithFields(logrus.Fields{
		"player":  m.Name(),
		"channel": address,
		"items":   len(playlist),
		"index":   startIndex,
		"start":   startTime,
	})

	proc, err := StartProcess(m.opts.Executable, m.opts.Flavor.Args(m.opts.ExtraArgs, address, playlist))
	if err != nil {
		logger.Errorf("launch failed: %v", err)
		return fallback
	}
	defer func() {
		if err := proc.Terminate(m.opts.TerminateGrace); err != nil {
			logger.Warnf("terminate: %v", err)
		}
	}()
	logger.Infof("player started with pid %d", proc.Pid())

	ch, err := Connect(ctx, address, ConnectOptions{
		Timeout:     m.opts.ConnectTimeout,
		CallTimeout: m.opts.CallTimeout,
		Alive:       proc.Alive,
	})
	if err != nil {
		logger.Warnf("control channel unavailable: %v", err)
		return fallback
	}
	defer ch.Close()

	if m.observe != nil {
		m.observe(proc, ch)
	}

	state := m.follow(ctx, proc, ch, playlist, startIndex, startTime)
	logger.WithFields(logrus.Fields{
		"file":     state.LastPlayedFile,
		"position": state.Position,
		"duration": state.Duration,
		"finished": state.IsFinished,
	}).Info("session ended")
	return state
}

// follow runs the startup sequence and then monitors until the session ends.
func (m *MPV) follow(ctx context.Context, proc *Process, ch *Channel, playlist []string, startIndex int, startTime float64) PlaybackState {
	seq := NewSequencer(ch, m.opts.Clock, startIndex, startTime, m.opts.StartupTimeout)
	mon := NewMonitor(ch, m.opts.Resolver, playlist[startIndex], startTime)

	ticker := m.opts.Clock.NewTicker(m.opts.PollInterval)
	defer ticker.Stop()

loop:
	for {
		if !seq.Done() {
			if err := seq.Step(); err != nil {
				log.Warnf("startup: %v", err)
				break
			}
			if seq.Done() {
				mon.Acquire(seq.Duration())
				log.Debugf("startup: path %v", seq.Path())
			}
		} else if err := mon.Tick(); err != nil {
			log.Infof("monitor: %v", err)
			break
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

	return mon.Snapshot(playlist, startIndex, m.opts.Clock.Now())
}
