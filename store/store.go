// Package store keeps sessions and watch events in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cuewatch/cue/library"
	"github.com/cuewatch/cue/log"
	"github.com/cuewatch/cue/player"
	"github.com/jonboulle/clockwork"
	"github.com/samber/mo"
	_ "modernc.org/sqlite"
)

const schema = `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		filepath TEXT NOT NULL UNIQUE,
		clean_title TEXT NOT NULL,
		season_number INTEGER,
		is_user_locked_title INTEGER NOT NULL DEFAULT 0,
		genres TEXT,
		year INTEGER,
		description TEXT,
		archived INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS playback (
		session_id TEXT PRIMARY KEY REFERENCES sessions(id) ON DELETE CASCADE,
		last_played_file TEXT,
		last_played_index INTEGER NOT NULL DEFAULT 0,
		position REAL NOT NULL DEFAULT 0,
		duration REAL NOT NULL DEFAULT 0,
		is_finished INTEGER NOT NULL DEFAULT 0,
		timestamp INTEGER
	);

	CREATE TABLE IF NOT EXISTS watch_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		started_at INTEGER NOT NULL,
		ended_at INTEGER NOT NULL,
		position_start REAL NOT NULL DEFAULT 0,
		position_end REAL NOT NULL DEFAULT 0,
		episode_index INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_watch_events_started ON watch_events(started_at);
	CREATE INDEX IF NOT EXISTS idx_watch_events_session ON watch_events(session_id, ended_at);
`

const selectSession = `
	SELECT s.id, s.filepath, s.clean_title, s.season_number, s.is_user_locked_title,
	       s.genres, s.year, s.description, s.archived,
	       p.last_played_file, p.last_played_index, p.position,
	       p.duration, p.is_finished, p.timestamp
	FROM sessions s
	LEFT JOIN playback p ON p.session_id = s.id
`

// Store is a library.Repository on SQLite. Times are stored as Unix milliseconds.
type Store struct {
	db          *sql.DB
	mergeWindow time.Duration
	clock       clockwork.Clock
}

// Options tunes a Store.
type Options struct {
	// MergeWindow is how close a new watch event must start to the end of the
	// previous one of the same session to extend it.
	MergeWindow time.Duration
	Clock       clockwork.Clock
}

// Open opens or creates the database at path. ":memory:" gives a private in-memory database.
func Open(path string, opts Options) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection keeps in-memory databases alive and serializes writers.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA journal_mode = WAL",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	if opts.MergeWindow <= 0 {
		opts.MergeWindow = 5 * time.Minute
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	return &Store{db: db, mergeWindow: opts.MergeWindow, clock: opts.Clock}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*library.Session, error) {
	var (
		session      library.Session
		season, year sql.NullInt64
		genres, desc sql.NullString
		locked, arch bool
		file         sql.NullString
		index        sql.NullInt64
		pos, dur     sql.NullFloat64
		finished     sql.NullBool
		stamp        sql.NullInt64
	)

	err := row.Scan(
		&session.ID, &session.Filepath, &session.Metadata.CleanTitle, &season, &locked,
		&genres, &year, &desc, &arch,
		&file, &index, &pos, &dur, &finished, &stamp,
	)
	if err != nil {
		return nil, err
	}

	session.Metadata.SeasonNumber = fromNull(season)
	session.Metadata.Year = fromNull(year)
	session.Metadata.UserLockedTitle = locked
	session.Metadata.Description = desc.String
	session.Archived = arch
	if genres.Valid && genres.String != "" {
		if err := json.Unmarshal([]byte(genres.String), &session.Metadata.Genres); err != nil {
			log.Warnf("store: session %s: bad genres: %v", session.ID, err)
		}
	}

	session.Playback = player.PlaybackState{
		LastPlayedFile:  file.String,
		LastPlayedIndex: int(index.Int64),
		Position:        pos.Float64,
		Duration:        dur.Float64,
		IsFinished:      finished.Bool,
	}
	if stamp.Valid {
		session.Playback.Timestamp = time.UnixMilli(stamp.Int64)
	}
	return &session, nil
}

// LoadAll returns every stored session.
func (s *Store) LoadAll(ctx context.Context) ([]*library.Session, error) {
	rows, err := s.db.QueryContext(ctx, selectSession+` ORDER BY s.filepath`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*library.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

// GetByFilepath returns the session for path or library.ErrSessionNotFound.
func (s *Store) GetByFilepath(ctx context.Context, path string) (*library.Session, error) {
	session, err := scanSession(s.db.QueryRowContext(ctx, selectSession+` WHERE s.filepath = ?`, path))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, library.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return session, nil
}

// Save upserts the session and its playback state in one transaction.
// Rows are updated in place so watch events keep their session.
func (s *Store) Save(ctx context.Context, session *library.Session) error {
	genres, err := json.Marshal(session.Metadata.Genres)
	if err != nil {
		return fmt.Errorf("failed to encode genres: %w", err)
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO sessions
			(id, filepath, clean_title, season_number, is_user_locked_title, genres, year, description, archived)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				filepath = excluded.filepath,
				clean_title = excluded.clean_title,
				season_number = excluded.season_number,
				is_user_locked_title = excluded.is_user_locked_title,
				genres = excluded.genres,
				year = excluded.year,
				description = excluded.description,
				archived = excluded.archived
		`,
			session.ID,
			session.Filepath,
			session.Metadata.CleanTitle,
			toNull(session.Metadata.SeasonNumber),
			session.Metadata.UserLockedTitle,
			string(genres),
			toNull(session.Metadata.Year),
			session.Metadata.Description,
			session.Archived,
		)
		if err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}

		p := session.Playback
		_, err = tx.ExecContext(ctx, `
			INSERT INTO playback
			(session_id, last_played_file, last_played_index, position, duration, is_finished, timestamp)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(session_id) DO UPDATE SET
				last_played_file = excluded.last_played_file,
				last_played_index = excluded.last_played_index,
				position = excluded.position,
				duration = excluded.duration,
				is_finished = excluded.is_finished,
				timestamp = excluded.timestamp
		`,
			session.ID,
			p.LastPlayedFile,
			p.LastPlayedIndex,
			p.Position,
			p.Duration,
			p.IsFinished,
			millis(p.Timestamp),
		)
		if err != nil {
			return fmt.Errorf("failed to save playback: %w", err)
		}
		return nil
	})
}

// Delete removes a session with its playback state and watch events.
func (s *Store) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return library.ErrSessionNotFound
	}
	return nil
}

// RecordWatchEvent inserts event, or extends the latest event of the same
// session when that one ended no earlier than the merge window before event started.
func (s *Store) RecordWatchEvent(ctx context.Context, event library.WatchEvent) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		cutoff := event.StartedAt.Add(-s.mergeWindow)

		var lastID int64
		err := tx.QueryRowContext(ctx, `
			SELECT id FROM watch_events
			WHERE session_id = ? AND ended_at >= ?
			ORDER BY ended_at DESC
			LIMIT 1
		`, event.SessionID, cutoff.UnixMilli()).Scan(&lastID)

		switch {
		case err == nil:
			_, err = tx.ExecContext(ctx, `
				UPDATE watch_events
				SET ended_at = ?, position_end = ?, episode_index = ?
				WHERE id = ?
			`, event.EndedAt.UnixMilli(), event.PositionEnd, event.EpisodeIndex, lastID)
			if err != nil {
				return fmt.Errorf("failed to extend watch event: %w", err)
			}
			log.Debugf("store: extended watch event %d", lastID)
			return nil

		case errors.Is(err, sql.ErrNoRows):
			_, err = tx.ExecContext(ctx, `
				INSERT INTO watch_events
				(session_id, started_at, ended_at, position_start, position_end, episode_index)
				VALUES (?, ?, ?, ?, ?, ?)
			`,
				event.SessionID,
				event.StartedAt.UnixMilli(),
				event.EndedAt.UnixMilli(),
				event.PositionStart,
				event.PositionEnd,
				event.EpisodeIndex,
			)
			if err != nil {
				return fmt.Errorf("failed to insert watch event: %w", err)
			}
			return nil

		default:
			return fmt.Errorf("failed to look up watch events: %w", err)
		}
	})
}

// WatchHistory returns the latest watch events first.
func (s *Store) WatchHistory(ctx context.Context, limit int) ([]library.WatchEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, started_at, ended_at, position_start, position_end, episode_index
		FROM watch_events
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query watch history: %w", err)
	}
	defer rows.Close()

	var events []library.WatchEvent
	for rows.Next() {
		var e library.WatchEvent
		var started, ended int64
		if err := rows.Scan(&e.ID, &e.SessionID, &started, &ended, &e.PositionStart, &e.PositionEnd, &e.EpisodeIndex); err != nil {
			return nil, fmt.Errorf("failed to scan watch event: %w", err)
		}
		e.StartedAt = time.UnixMilli(started)
		e.EndedAt = time.UnixMilli(ended)
		events = append(events, e)
	}
	return events, rows.Err()
}

func (s *Store) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func millis(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UnixMilli()
}

func toNull(o mo.Option[int]) any {
	if v, ok := o.Get(); ok {
		return int64(v)
	}
	return nil
}

func fromNull(n sql.NullInt64) mo.Option[int] {
	if !n.Valid {
		return mo.None[int]()
	}
	return mo.Some(int(n.Int64))
}
