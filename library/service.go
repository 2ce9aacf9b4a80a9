package library

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/cuewatch/cue/filesystem"
	"github.com/cuewatch/cue/log"
	"github.com/cuewatch/cue/player"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/afero"
)

// DefaultExtensions are the media files a series directory is scanned for.
var DefaultExtensions = []string{".mkv", ".mp4", ".avi", ".mov", ".webm"}

// ResumeAction is what to offer the user when they come back to a session.
type ResumeAction string

const (
	ActionResume        ResumeAction = "resume"
	ActionRestartOrNext ResumeAction = "restart_or_next"
	ActionShowRecap     ResumeAction = "show_recap"
)

// Options tunes a Service.
type Options struct {
	Extensions []string
	RecapAfter time.Duration
	Clock      clockwork.Clock
}

// Service manages sessions on top of a Repository.
type Service struct {
	repo       Repository
	extensions []string
	recapAfter time.Duration
	clock      clockwork.Clock
}

// NewService returns a library service backed by repo.
func NewService(repo Repository, opts Options) *Service {
	if len(opts.Extensions) == 0 {
		opts.Extensions = DefaultExtensions
	}
	if opts.RecapAfter <= 0 {
		opts.RecapAfter = 7 * 24 * time.Hour
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	return &Service{
		repo: repo,
		extensions: lo.Map(opts.Extensions, func(ext string, _ int) string {
			return strings.ToLower(ext)
		}),
		recapAfter: opts.RecapAfter,
		clock:      opts.Clock,
	}
}

// Repository returns the underlying repository.
func (s *Service) Repository() Repository {
	return s.repo
}

// GetOrCreate returns the session stored for path, creating and saving a new
// one with a title guessed from the name when there is none.
func (s *Service) GetOrCreate(ctx context.Context, path string) (*Session, error) {
	session, err := s.repo.GetByFilepath(ctx, path)
	if err == nil {
		return session, nil
	}
	if !errors.Is(err, ErrSessionNotFound) {
		return nil, err
	}

	title, season := GuessTitle(path)
	session = &Session{
		ID:       uuid.NewString(),
		Filepath: path,
		Metadata: MediaMetadata{
			CleanTitle:   title,
			SeasonNumber: season,
		},
		Playback: s.emptyPlayback(),
	}

	if err := s.repo.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save new session: %w", err)
	}
	log.Infof("library: new session %s for %s", session.ID, path)
	return session, nil
}

func (s *Service) emptyPlayback() (p player.PlaybackState) {
	p.Timestamp = s.clock.Now()
	return
}

// List returns the sessions with the given archived flag, most recently played first.
func (s *Service) List(ctx context.Context, archived bool) ([]*Session, error) {
	all, err := s.repo.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	sessions := lo.Filter(all, func(session *Session, _ int) bool {
		return session.Archived == archived
	})
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].Playback.Timestamp.After(sessions[j].Playback.Timestamp)
	})
	return sessions, nil
}

// MostRecent returns the last played active session.
func (s *Service) MostRecent(ctx context.Context) (mo.Option[*Session], error) {
	sessions, err := s.List(ctx, false)
	if err != nil {
		return mo.None[*Session](), err
	}
	if len(sessions) == 0 {
		return mo.None[*Session](), nil
	}
	return mo.Some(sessions[0]), nil
}

// SetArchived hides or restores a session.
func (s *Service) SetArchived(ctx context.Context, path string, archived bool) (*Session, error) {
	session, err := s.repo.GetByFilepath(ctx, path)
	if err != nil {
		return nil, err
	}
	session.Archived = archived
	return session, s.repo.Save(ctx, session)
}

// UpdateMetadata changes the title or season. A locked title is only replaced
// when the change also unlocks it.
func (s *Service) UpdateMetadata(ctx context.Context, path string, title mo.Option[string], season mo.Option[int], locked mo.Option[bool]) (*Session, error) {
	session, err := s.GetOrCreate(ctx, path)
	if err != nil {
		return nil, err
	}

	if t, ok := title.Get(); ok {
		if !session.Metadata.UserLockedTitle || !locked.OrElse(true) {
			session.Metadata.CleanTitle = t
		}
	}
	if n, ok := season.Get(); ok {
		session.Metadata.SeasonNumber = mo.Some(n)
	}
	if l, ok := locked.Get(); ok {
		session.Metadata.UserLockedTitle = l
	}
	return session, s.repo.Save(ctx, session)
}

// SeriesFiles lists the media files of a session: its directory, or the
// directory of the file it was opened on, scanned recursively and sorted.
func (s *Service) SeriesFiles(session *Session) ([]string, error) {
	root := session.Filepath
	info, err := filesystem.API().Stat(root)
	if err != nil {
		return nil, fmt.Errorf("series files: %w", err)
	}
	if !info.IsDir() {
		root = filepath.Dir(root)
	}

	var files []string
	err = afero.Walk(filesystem.API(), root, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && s.isMedia(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("series files: %w", err)
	}

	sort.Strings(files)
	return files, nil
}

func (s *Service) isMedia(path string) bool {
	return lo.Contains(s.extensions, strings.ToLower(filepath.Ext(path)))
}

// NextEpisode returns the index and base name of the episode after the last
// played one, if there is one.
func (s *Service) NextEpisode(session *Session, files []string) (int, string, bool) {
	next := session.Playback.LastPlayedIndex + 1
	if next < 0 || next >= len(files) {
		return 0, "", false
	}
	return next, filepath.Base(files[next]), true
}

// ResumeAction decides what to offer for a session.
func (s *Service) ResumeAction(session *Session) ResumeAction {
	switch {
	case session.Playback.IsFinished || player.Finished(session.Playback.Position, session.Playback.Duration):
		return ActionRestartOrNext
	case s.clock.Since(session.Playback.Timestamp) > s.recapAfter:
		return ActionShowRecap
	default:
		return ActionResume
	}
}
