package player

import (
	"errors"
	"time"

	"github.com/cuewatch/cue/log"
)

// DefaultPollInterval is the monitor and sequencer tick.
const DefaultPollInterval = 250 * time.Millisecond

// prober reads the properties the monitor follows.
type prober interface {
	GetString(property string) (string, error)
	GetFloat(property string) (float64, error)
}

// Monitor follows position, duration and current file once startup is over.
type Monitor struct {
	prober   prober
	resolver Resolver

	file        string
	position    float64
	duration    float64
	transitions int
	adopt       bool
}

// NewMonitor starts tracking from the file the session was launched on.
func NewMonitor(p prober, resolver Resolver, initialFile string, position float64) *Monitor {
	if resolver == nil {
		resolver = ContainsResolver{}
	}
	return &Monitor{
		prober:   p,
		resolver: resolver,
		file:     initialFile,
		position: position,
	}
}

// Acquire seeds the duration when it is already known for the current file.
func (m *Monitor) Acquire(duration float64) {
	if duration > 0 {
		m.duration = duration
	}
}

// AdoptFirstReport makes the next non-empty path replace the tracked file
// without counting a transition. Players that report a media title instead of
// the file path need it, since the title never matches the launched path.
func (m *Monitor) AdoptFirstReport() {
	m.adopt = true
}

// Tick refreshes the tracked values. A failed read leaves its value as it was;
// only a lost connection is returned.
func (m *Monitor) Tick() error {
	path, err := m.prober.GetString("path")
	switch {
	case errors.Is(err, ErrConnectionLost):
		return err
	case err == nil && path != "" && m.adopt:
		m.adopt = false
		m.file = path
	case err == nil && path != "":
		if !m.resolver.Same(path, m.file) {
			log.Infof("monitor: file changed from %q to %q", m.file, path)
			m.file = path
			m.position = 0
			m.duration = 0
			m.transitions++
		}
	}

	if pos, err := m.prober.GetFloat("time-pos"); err == nil {
		m.position = pos
	} else if errors.Is(err, ErrConnectionLost) {
		return err
	}

	if dur, err := m.prober.GetFloat("duration"); err == nil {
		if dur > 0 {
			m.duration = dur
		}
	} else if errors.Is(err, ErrConnectionLost) {
		return err
	}
	return nil
}

// File is the last file the player reported.
func (m *Monitor) File() string { return m.file }

// Position is the last known position in seconds.
func (m *Monitor) Position() float64 { return m.position }

// Duration is the last known duration of the current file, 0 when unknown.
func (m *Monitor) Duration() float64 { return m.duration }

// Transitions counts detected file changes.
func (m *Monitor) Transitions() int { return m.transitions }

// Snapshot assembles the final state. The index is resolved against playlist;
// fallbackIndex is used when the reported file matches nothing.
func (m *Monitor) Snapshot(playlist []string, fallbackIndex int, now time.Time) PlaybackState {
	index, ok := m.resolver.Resolve(m.file, playlist)
	if !ok {
		log.Debugf("monitor: %q not found in playlist, keeping index %d", m.file, fallbackIndex)
		index = fallbackIndex
	}
	return PlaybackState{
		LastPlayedFile:  m.file,
		LastPlayedIndex: index,
		Position:        m.position,
		Duration:        m.duration,
		IsFinished:      Finished(m.position, m.duration),
		Timestamp:       now,
	}
}
