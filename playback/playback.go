// Package playback runs a watch session for a library entry and records its outcome.
package playback

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cuewatch/cue/library"
	"github.com/cuewatch/cue/log"
	"github.com/cuewatch/cue/player"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

// ErrNoMedia is returned when a session has no files to play.
var ErrNoMedia = errors.New("no media files found")

// Options tunes a Service.
type Options struct {
	// MinWatch is the wall-clock time below which a session is not recorded as viewing.
	MinWatch time.Duration
	Resolver player.Resolver
	Clock    clockwork.Clock
}

// Service launches the player for sessions and persists where they ended.
type Service struct {
	driver   player.Driver
	repo     library.Repository
	minWatch time.Duration
	resolver player.Resolver
	clock    clockwork.Clock
}

// NewService returns a playback service using driver and repo.
func NewService(driver player.Driver, repo library.Repository, opts Options) *Service {
	if opts.MinWatch <= 0 {
		opts.MinWatch = 5 * time.Second
	}
	if opts.Resolver == nil {
		opts.Resolver = player.ContainsResolver{}
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	return &Service{
		driver:   driver,
		repo:     repo,
		minWatch: opts.MinWatch,
		resolver: opts.Resolver,
		clock:    opts.Clock,
	}
}

// Plan picks where to start: the saved position, or the start of the next
// episode when the saved one is finished. After the last episode it wraps to the first.
func Plan(state player.PlaybackState, files int) (index int, start float64) {
	index, start = state.LastPlayedIndex, state.Position

	if state.IsFinished || player.Finished(state.Position, state.Duration) {
		index, start = index+1, 0
		if index >= files {
			log.Infof("playback: end of series, starting over")
			index = 0
		}
	}

	if index < 0 || index >= files {
		index, start = 0, 0
	}
	return index, start
}

// LaunchMedia plays files for session, blocking until the player is closed.
// The session's playback state is updated and saved, and the viewing is
// recorded when it lasted longer than the minimum watch time.
func (s *Service) LaunchMedia(ctx context.Context, session *library.Session, files []string) (player.PlaybackState, error) {
	if len(files) == 0 {
		return session.Playback, fmt.Errorf("%s: %w", session.Filepath, ErrNoMedia)
	}

	index, start := Plan(session.Playback, len(files))
	logger := log.WithFields(logrus.Fields{
		"session": session.ID,
		"player":  s.driver.Name(),
		"index":   index,
		"start":   start,
	})
	logger.Info("starting watch session")

	startedAt := s.clock.Now()
	state := s.driver.Launch(ctx, files, index, start)
	endedAt := s.clock.Now()

	// The session is saved even when ctx ended it.
	persist := context.WithoutCancel(ctx)

	if resolved, ok := s.resolver.Resolve(state.LastPlayedFile, files); ok {
		state.LastPlayedIndex = resolved
	}

	if watched := endedAt.Sub(startedAt); watched > s.minWatch {
		event := library.WatchEvent{
			SessionID:     session.ID,
			StartedAt:     startedAt,
			EndedAt:       endedAt,
			PositionStart: start,
			PositionEnd:   state.Position,
			EpisodeIndex:  state.LastPlayedIndex,
		}
		if err := s.repo.RecordWatchEvent(persist, event); err != nil {
			logger.Errorf("record watch event: %v", err)
		}
	} else {
		logger.Debugf("watched for %s only, not recording", watched)
	}

	session.Playback = state
	if err := s.repo.Save(persist, session); err != nil {
		return state, fmt.Errorf("save session: %w", err)
	}
	return state, nil
}
