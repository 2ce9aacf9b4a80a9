// Package history is a JSON file repository for sessions and watch events,
// for setups that do without the SQLite database.
package history

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cuewatch/cue/filesystem"
	"github.com/cuewatch/cue/library"
	"github.com/metafates/gache"
	"github.com/samber/lo"
)

// document is the file layout.
type document struct {
	Sessions map[string]*library.Session `json:"sessions"`
	Events   []library.WatchEvent        `json:"events"`
	NextID   int64                       `json:"next_id"`
}

// Repository keeps everything in one JSON document.
type Repository struct {
	cacher      *gache.Cache[*document]
	mergeWindow time.Duration
	mu          sync.Mutex
}

// New returns a repository stored at path on the current filesystem backend.
func New(path string, mergeWindow time.Duration) *Repository {
	if mergeWindow <= 0 {
		mergeWindow = 5 * time.Minute
	}
	return &Repository{
		cacher: gache.New[*document](
			&gache.Options{
				Path:       path,
				FileSystem: &filesystem.GacheFs{},
			},
		),
		mergeWindow: mergeWindow,
	}
}

func (r *Repository) load() (*document, error) {
	cached, expired, err := r.cacher.Get()
	if err != nil {
		return nil, err
	}
	if expired || cached == nil {
		cached = &document{}
	}
	if cached.Sessions == nil {
		cached.Sessions = make(map[string]*library.Session)
	}
	return cached, nil
}

func (r *Repository) update(fn func(doc *document) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	return r.cacher.Set(doc)
}

// LoadAll returns every stored session.
func (r *Repository) LoadAll(context.Context) ([]*library.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return nil, err
	}
	sessions := lo.Values(doc.Sessions)
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].Filepath < sessions[j].Filepath })
	return sessions, nil
}

// GetByFilepath returns the session for path or library.ErrSessionNotFound.
func (r *Repository) GetByFilepath(_ context.Context, path string) (*library.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return nil, err
	}
	session, ok := lo.Find(lo.Values(doc.Sessions), func(s *library.Session) bool {
		return s.Filepath == path
	})
	if !ok {
		return nil, library.ErrSessionNotFound
	}
	return session, nil
}

// Save inserts or replaces the session.
func (r *Repository) Save(_ context.Context, session *library.Session) error {
	return r.update(func(doc *document) error {
		copied := *session
		doc.Sessions[session.ID] = &copied
		return nil
	})
}

// Delete removes the session and its watch events.
func (r *Repository) Delete(_ context.Context, id string) error {
	return r.update(func(doc *document) error {
		if _, ok := doc.Sessions[id]; !ok {
			return library.ErrSessionNotFound
		}
		delete(doc.Sessions, id)
		doc.Events = lo.Reject(doc.Events, func(e library.WatchEvent, _ int) bool {
			return e.SessionID == id
		})
		return nil
	})
}

// RecordWatchEvent appends event or extends the latest event of the same
// session that ended within the merge window.
func (r *Repository) RecordWatchEvent(_ context.Context, event library.WatchEvent) error {
	return r.update(func(doc *document) error {
		cutoff := event.StartedAt.Add(-r.mergeWindow)

		last := -1
		for i, e := range doc.Events {
			if e.SessionID != event.SessionID || e.EndedAt.Before(cutoff) {
				continue
			}
			if last < 0 || e.EndedAt.After(doc.Events[last].EndedAt) {
				last = i
			}
		}

		if last >= 0 {
			doc.Events[last].EndedAt = event.EndedAt
			doc.Events[last].PositionEnd = event.PositionEnd
			doc.Events[last].EpisodeIndex = event.EpisodeIndex
			return nil
		}

		doc.NextID++
		event.ID = doc.NextID
		doc.Events = append(doc.Events, event)
		return nil
	})
}

// WatchHistory returns the latest events first.
func (r *Repository) WatchHistory(_ context.Context, limit int) ([]library.WatchEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return nil, err
	}

	events := append([]library.WatchEvent(nil), doc.Events...)
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].StartedAt.After(events[j].StartedAt)
	})
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

// Close is a no-op; every change is written through.
func (r *Repository) Close() error {
	return nil
}
