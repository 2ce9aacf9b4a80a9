package player

import (
	"errors"
	"time"

	"github.com/cuewatch/cue/log"
	"github.com/jonboulle/clockwork"
)

// DefaultStartupTimeout bounds how long the sequencer drives the player before
// handing it to the user as-is.
const DefaultStartupTimeout = 15 * time.Second

// indexRetryInterval spaces repeated playlist-pos writes while the player has
// not reached the requested entry.
const indexRetryInterval = time.Second

// Stage is a step of the startup sequence.
type Stage int

const (
	AwaitingPlaylistLoad Stage = iota
	ForcingIndex
	AwaitingFileLoad
	SeekingAndResuming
	Complete
)

func (s Stage) String() string {
	switch s {
	case AwaitingPlaylistLoad:
		return "AwaitingPlaylistLoad"
	case ForcingIndex:
		return "ForcingIndex"
	case AwaitingFileLoad:
		return "AwaitingFileLoad"
	case SeekingAndResuming:
		return "SeekingAndResuming"
	case Complete:
		return "Complete"
	default:
		return "Unknown"
	}
}

// controller is the part of the control channel the sequencer needs.
type controller interface {
	GetInt(property string) (int, error)
	GetFloat(property string) (float64, error)
	SetProperty(property string, value any) error
	Seek(seconds float64) error
}

// Sequencer walks a freshly started, paused player to the requested playlist
// entry and offset, then unpauses it. It is driven by calling Step once per tick.
type Sequencer struct {
	ctrl       controller
	clock      clockwork.Clock
	startIndex int
	startTime  float64
	timeout    time.Duration

	started    time.Time
	stage      Stage
	path       []Stage
	indexSets  int
	indexSetAt time.Time
	timedOut   bool
	duration   float64
}

// NewSequencer creates a sequencer in AwaitingPlaylistLoad. The timeout starts counting now.
func NewSequencer(ctrl controller, clock clockwork.Clock, startIndex int, startTime float64, timeout time.Duration) *Sequencer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if timeout <= 0 {
		timeout = DefaultStartupTimeout
	}
	return &Sequencer{
		ctrl:       ctrl,
		clock:      clock,
		startIndex: startIndex,
		startTime:  startTime,
		timeout:    timeout,
		started:    clock.Now(),
		stage:      AwaitingPlaylistLoad,
		path:       []Stage{AwaitingPlaylistLoad},
	}
}

// Stage returns the current stage.
func (s *Sequencer) Stage() Stage { return s.stage }

// Path returns every stage visited so far, in order.
func (s *Sequencer) Path() []Stage {
	return append([]Stage(nil), s.path...)
}

// Done reports whether the sequence reached Complete.
func (s *Sequencer) Done() bool { return s.stage == Complete }

// TimedOut reports whether Complete was forced by the timeout.
func (s *Sequencer) TimedOut() bool { return s.timedOut }

// Duration is the positive duration observed while waiting for the file, or 0.
func (s *Sequencer) Duration() float64 { return s.duration }

// Step performs one tick of the sequence. Failed reads count as "not yet";
// only a lost connection is returned.
func (s *Sequencer) Step() error {
	if s.Done() {
		return nil
	}

	if err := s.advance(); errors.Is(err, ErrConnectionLost) {
		return err
	} else if err != nil {
		log.Tracef("startup: %s: %v", s.stage, err)
	}

	if !s.Done() && s.clock.Since(s.started) > s.timeout {
		log.Warnf("startup: stuck in %s for %s, resuming playback as-is", s.stage, s.timeout)
		s.timedOut = true
		err := s.ctrl.SetProperty("pause", false)
		s.enter(Complete)
		if errors.Is(err, ErrConnectionLost) {
			return err
		}
	}
	return nil
}

func (s *Sequencer) advance() error {
	switch s.stage {
	case AwaitingPlaylistLoad:
		count, err := s.ctrl.GetInt("playlist-count")
		if err != nil {
			return err
		}
		if count > s.startIndex {
			s.enter(ForcingIndex)
		}

	case ForcingIndex:
		pos, err := s.ctrl.GetInt("playlist-pos")
		if err != nil {
			return err
		}
		if pos == s.startIndex {
			s.enter(AwaitingFileLoad)
			return nil
		}
		// A write can be dropped while the playlist is still loading.
		if s.indexSets == 0 || s.clock.Since(s.indexSetAt) >= indexRetryInterval {
			s.indexSets++
			s.indexSetAt = s.clock.Now()
			log.Debugf("startup: player at index %d, switching to %d (attempt %d)", pos, s.startIndex, s.indexSets)
			return s.ctrl.SetProperty("playlist-pos", s.startIndex)
		}

	case AwaitingFileLoad:
		duration, err := s.ctrl.GetFloat("duration")
		if err != nil {
			return err
		}
		if duration > 0 {
			s.duration = duration
			s.enter(SeekingAndResuming)
		}

	case SeekingAndResuming:
		var seekErr error
		if s.startTime > 0 {
			seekErr = s.ctrl.Seek(s.startTime)
		}
		unpauseErr := s.ctrl.SetProperty("pause", false)
		s.enter(Complete)
		return errors.Join(seekErr, unpauseErr)
	}
	return nil
}

func (s *Sequencer) enter(next Stage) {
	log.Debugf("startup: %s -> %s", s.stage, next)
	s.stage = next
	s.path = append(s.path, next)
}
