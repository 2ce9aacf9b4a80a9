// Package library holds watch sessions and the media files they belong to.
package library

import (
	"context"
	"errors"
	"time"

	"github.com/cuewatch/cue/player"
	"github.com/samber/mo"
)

// ErrSessionNotFound is returned by repositories for unknown sessions.
var ErrSessionNotFound = errors.New("session not found")

// MediaMetadata is what is known about the show or movie behind a session.
type MediaMetadata struct {
	CleanTitle      string         `json:"clean_title"`
	SeasonNumber    mo.Option[int] `json:"season_number"`
	UserLockedTitle bool           `json:"is_user_locked_title"`
	Genres          []string       `json:"genres"`
	Year            mo.Option[int] `json:"year"`
	Description     string         `json:"description"`
}

// Session is one tracked item: a file or a directory of episodes, and where
// the user left it.
type Session struct {
	ID       string               `json:"id"`
	Filepath string               `json:"filepath"`
	Metadata MediaMetadata        `json:"metadata"`
	Playback player.PlaybackState `json:"playback"`
	Archived bool                 `json:"archived"`
}

// WatchEvent is one stretch of actual viewing, measured by the wall clock.
type WatchEvent struct {
	ID            int64     `json:"id"`
	SessionID     string    `json:"session_id"`
	StartedAt     time.Time `json:"started_at"`
	EndedAt       time.Time `json:"ended_at"`
	PositionStart float64   `json:"position_start"`
	PositionEnd   float64   `json:"position_end"`
	EpisodeIndex  int       `json:"episode_index"`
}

// WallClock is how long the event lasted.
func (e WatchEvent) WallClock() time.Duration {
	if e.EndedAt.Before(e.StartedAt) {
		return 0
	}
	return e.EndedAt.Sub(e.StartedAt)
}

// Repository persists sessions and watch events.
type Repository interface {
	LoadAll(ctx context.Context) ([]*Session, error)

	// GetByFilepath returns ErrSessionNotFound when nothing is stored for path.
	GetByFilepath(ctx context.Context, path string) (*Session, error)

	// Save inserts or updates the session together with its playback state.
	Save(ctx context.Context, session *Session) error

	Delete(ctx context.Context, id string) error

	// RecordWatchEvent stores event, extending the latest event of the same
	// session instead when that one ended within the merge window.
	RecordWatchEvent(ctx context.Context, event WatchEvent) error

	// WatchHistory returns the most recent events first.
	WatchHistory(ctx context.Context, limit int) ([]WatchEvent, error)

	Close() error
}
