package store

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// TitleWatchTime is the viewing time spent on one session.
type TitleWatchTime struct {
	SessionID string
	Title     string
	WatchTime time.Duration
}

// DayMinutes is the viewing time of one calendar day.
type DayMinutes struct {
	Date    string
	Minutes int
}

// TotalWatchTime sums the wall-clock time of every watch event.
func (s *Store) TotalWatchTime(ctx context.Context) (time.Duration, error) {
	var total int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(ended_at - started_at), 0) FROM watch_events
	`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum watch time: %w", err)
	}
	return time.Duration(total) * time.Millisecond, nil
}

// MostWatched ranks sessions by viewing time, longest first.
func (s *Store) MostWatched(ctx context.Context, limit int) ([]TitleWatchTime, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.clean_title, COALESCE(SUM(w.ended_at - w.started_at), 0) AS watch_time
		FROM sessions s
		LEFT JOIN watch_events w ON w.session_id = s.id
		GROUP BY s.id
		ORDER BY watch_time DESC, s.clean_title
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query most watched: %w", err)
	}
	defer rows.Close()

	var ranked []TitleWatchTime
	for rows.Next() {
		var t TitleWatchTime
		var ms int64
		if err := rows.Scan(&t.SessionID, &t.Title, &ms); err != nil {
			return nil, fmt.Errorf("failed to scan most watched: %w", err)
		}
		t.WatchTime = time.Duration(ms) * time.Millisecond
		ranked = append(ranked, t)
	}
	return ranked, rows.Err()
}

// spans returns start and end of every event starting at or after since.
func (s *Store) spans(ctx context.Context, since time.Time) ([][2]time.Time, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT started_at, ended_at FROM watch_events WHERE started_at >= ?
	`, since.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("failed to query watch events: %w", err)
	}
	defer rows.Close()

	var spans [][2]time.Time
	for rows.Next() {
		var started, ended int64
		if err := rows.Scan(&started, &ended); err != nil {
			return nil, fmt.Errorf("failed to scan watch event: %w", err)
		}
		spans = append(spans, [2]time.Time{time.UnixMilli(started), time.UnixMilli(ended)})
	}
	return spans, rows.Err()
}

// StreakCalendar returns minutes watched per local day over the last days
// days, today included, oldest first. Days without viewing are left out.
func (s *Store) StreakCalendar(ctx context.Context, days int) ([]DayMinutes, error) {
	now := s.clock.Now().In(time.Local)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)

	spans, err := s.spans(ctx, today.AddDate(0, 0, -days))
	if err != nil {
		return nil, err
	}

	byDay := make(map[string]time.Duration)
	for _, span := range spans {
		day := span[0].In(time.Local).Format(time.DateOnly)
		byDay[day] += span[1].Sub(span[0])
	}

	calendar := make([]DayMinutes, 0, len(byDay))
	for day, d := range byDay {
		calendar = append(calendar, DayMinutes{Date: day, Minutes: int(d.Minutes())})
	}
	sort.Slice(calendar, func(i, j int) bool { return calendar[i].Date < calendar[j].Date })
	return calendar, nil
}

// CurrentStreak counts consecutive days with viewing, ending today or yesterday.
func (s *Store) CurrentStreak(ctx context.Context, days int) (int, error) {
	calendar, err := s.StreakCalendar(ctx, days)
	if err != nil {
		return 0, err
	}

	watched := make(map[string]bool, len(calendar))
	for _, d := range calendar {
		watched[d.Date] = true
	}

	day := s.clock.Now().In(time.Local)
	if !watched[day.Format(time.DateOnly)] {
		day = day.AddDate(0, 0, -1)
	}

	streak := 0
	for watched[day.Format(time.DateOnly)] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak, nil
}

// ViewingPatterns returns minutes watched per local hour of day, keyed by the
// hour the event started in.
func (s *Store) ViewingPatterns(ctx context.Context) (map[int]float64, error) {
	spans, err := s.spans(ctx, time.UnixMilli(0))
	if err != nil {
		return nil, err
	}

	patterns := make(map[int]float64)
	for _, span := range spans {
		patterns[span[0].In(time.Local).Hour()] += span[1].Sub(span[0]).Minutes()
	}
	return patterns, nil
}
