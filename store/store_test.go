package store

import (
	"context"
	"testing"
	"time"

	"github.com/cuewatch/cue/library"
	"github.com/cuewatch/cue/player"
	"github.com/jonboulle/clockwork"
	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
)

func openTestStore(t *testing.T, clock clockwork.Clock) *Store {
	s, err := Open(":memory:", Options{MergeWindow: 5 * time.Minute, Clock: clock})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testSession(id, path string) *library.Session {
	return &library.Session{
		ID:       id,
		Filepath: path,
		Metadata: library.MediaMetadata{
			CleanTitle:   "Show " + id,
			SeasonNumber: mo.Some(2),
			Genres:       []string{"Drama", "Mystery"},
		},
		Playback: player.PlaybackState{
			LastPlayedFile:  path + "/ep2.mkv",
			LastPlayedIndex: 1,
			Position:        612.5,
			Duration:        1440,
			Timestamp:       time.UnixMilli(1767225600000),
		},
	}
}

func TestSessions(t *testing.T) {
	ctx := context.Background()

	Convey("Given an empty store", t, func() {
		s := openTestStore(t, clockwork.NewRealClock())

		Convey("Looking up an unknown path should fail with ErrSessionNotFound", func() {
			_, err := s.GetByFilepath(ctx, "/nope")
			So(err, ShouldEqual, library.ErrSessionNotFound)
		})

		Convey("When a session is saved", func() {
			session := testSession("a", "/shows/a")
			So(s.Save(ctx, session), ShouldBeNil)

			Convey("Then it reads back unchanged", func() {
				got, err := s.GetByFilepath(ctx, "/shows/a")
				So(err, ShouldBeNil)
				So(got.ID, ShouldEqual, "a")
				So(got.Metadata, ShouldResemble, session.Metadata)
				So(got.Playback.Timestamp.Equal(session.Playback.Timestamp), ShouldBeTrue)
				So(got.Playback.Position, ShouldEqual, 612.5)
				So(got.Playback.LastPlayedIndex, ShouldEqual, 1)
				So(got.Archived, ShouldBeFalse)
			})

			Convey("Then saving again updates it in place", func() {
				session.Archived = true
				session.Metadata.SeasonNumber = mo.None[int]()
				session.Playback.IsFinished = true
				So(s.Save(ctx, session), ShouldBeNil)

				all, err := s.LoadAll(ctx)
				So(err, ShouldBeNil)
				So(all, ShouldHaveLength, 1)
				So(all[0].Archived, ShouldBeTrue)
				So(all[0].Playback.IsFinished, ShouldBeTrue)
				So(all[0].Metadata.SeasonNumber.IsAbsent(), ShouldBeTrue)
			})

			Convey("Then deleting it removes its events too", func() {
				now := time.Now()
				So(s.RecordWatchEvent(ctx, library.WatchEvent{SessionID: "a", StartedAt: now, EndedAt: now.Add(time.Minute)}), ShouldBeNil)
				So(s.Delete(ctx, "a"), ShouldBeNil)

				_, err := s.GetByFilepath(ctx, "/shows/a")
				So(err, ShouldEqual, library.ErrSessionNotFound)

				history, err := s.WatchHistory(ctx, 10)
				So(err, ShouldBeNil)
				So(history, ShouldBeEmpty)

				So(s.Delete(ctx, "a"), ShouldEqual, library.ErrSessionNotFound)
			})
		})

		Convey("A second session on the same path should be rejected", func() {
			So(s.Save(ctx, testSession("a", "/shows/a")), ShouldBeNil)
			So(s.Save(ctx, testSession("b", "/shows/a")), ShouldNotBeNil)
		})
	})
}

func TestWatchEvents(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 3, 10, 21, 0, 0, 0, time.Local)

	Convey("Given a stored session", t, func() {
		s := openTestStore(t, clockwork.NewFakeClockAt(base.Add(3*time.Hour)))
		So(s.Save(ctx, testSession("a", "/shows/a")), ShouldBeNil)
		So(s.Save(ctx, testSession("b", "/shows/b")), ShouldBeNil)

		first := library.WatchEvent{
			SessionID:     "a",
			StartedAt:     base,
			EndedAt:       base.Add(20 * time.Minute),
			PositionStart: 0,
			PositionEnd:   1200,
		}
		So(s.RecordWatchEvent(ctx, first), ShouldBeNil)

		Convey("When the same session resumes within the merge window", func() {
			So(s.RecordWatchEvent(ctx, library.WatchEvent{
				SessionID:    "a",
				StartedAt:    base.Add(23 * time.Minute),
				EndedAt:      base.Add(40 * time.Minute),
				PositionEnd:  300,
				EpisodeIndex: 1,
			}), ShouldBeNil)

			Convey("Then the previous event is extended", func() {
				history, err := s.WatchHistory(ctx, 10)
				So(err, ShouldBeNil)
				So(history, ShouldHaveLength, 1)
				So(history[0].StartedAt.Equal(base), ShouldBeTrue)
				So(history[0].EndedAt.Equal(base.Add(40*time.Minute)), ShouldBeTrue)
				So(history[0].PositionStart, ShouldEqual, 0)
				So(history[0].PositionEnd, ShouldEqual, 300)
				So(history[0].EpisodeIndex, ShouldEqual, 1)
			})
		})

		Convey("When it resumes after the merge window", func() {
			So(s.RecordWatchEvent(ctx, library.WatchEvent{
				SessionID: "a",
				StartedAt: base.Add(30 * time.Minute),
				EndedAt:   base.Add(40 * time.Minute),
			}), ShouldBeNil)

			Convey("Then a new event is stored, newest first", func() {
				history, err := s.WatchHistory(ctx, 10)
				So(err, ShouldBeNil)
				So(history, ShouldHaveLength, 2)
				So(history[0].StartedAt.Equal(base.Add(30*time.Minute)), ShouldBeTrue)
			})
		})

		Convey("When another session plays right after", func() {
			So(s.RecordWatchEvent(ctx, library.WatchEvent{
				SessionID: "b",
				StartedAt: base.Add(21 * time.Minute),
				EndedAt:   base.Add(31 * time.Minute),
			}), ShouldBeNil)

			Convey("Then events are not merged across sessions", func() {
				history, err := s.WatchHistory(ctx, 1)
				So(err, ShouldBeNil)
				So(history, ShouldHaveLength, 1)
				So(history[0].SessionID, ShouldEqual, "b")
			})

			Convey("Then the statistics add up", func() {
				total, err := s.TotalWatchTime(ctx)
				So(err, ShouldBeNil)
				So(total, ShouldEqual, 30*time.Minute)

				ranked, err := s.MostWatched(ctx, 10)
				So(err, ShouldBeNil)
				So(ranked, ShouldHaveLength, 2)
				So(ranked[0].SessionID, ShouldEqual, "a")
				So(ranked[0].WatchTime, ShouldEqual, 20*time.Minute)
				So(ranked[1].Title, ShouldEqual, "Show b")

				patterns, err := s.ViewingPatterns(ctx)
				So(err, ShouldBeNil)
				So(patterns[21], ShouldAlmostEqual, 30.0)

				calendar, err := s.StreakCalendar(ctx, 7)
				So(err, ShouldBeNil)
				So(calendar, ShouldResemble, []DayMinutes{{Date: base.Format(time.DateOnly), Minutes: 30}})

				streak, err := s.CurrentStreak(ctx, 7)
				So(err, ShouldBeNil)
				So(streak, ShouldEqual, 1)
			})
		})
	})
}
