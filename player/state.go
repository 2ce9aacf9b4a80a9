package player

import "time"

// finishedRemaining is how close to the end a file must be to count as watched.
const finishedRemaining = 10.0

// PlaybackState is the snapshot a driver hands back when a watch session ends.
type PlaybackState struct {
	LastPlayedFile  string    `json:"last_played_file"`
	LastPlayedIndex int       `json:"last_played_index"`
	Position        float64   `json:"position"`
	Duration        float64   `json:"duration"`
	IsFinished      bool      `json:"is_finished"`
	Timestamp       time.Time `json:"timestamp"`
}

// Finished is the single definition of a watched file: a known duration with
// less than ten seconds left.
func Finished(position, duration float64) bool {
	return duration > 0 && duration-position < finishedRemaining
}

// Remaining returns the seconds left in the file, or 0 when the duration is unknown.
func (s PlaybackState) Remaining() float64 {
	if s.Duration <= 0 || s.Position >= s.Duration {
		return 0
	}
	return s.Duration - s.Position
}

// fallbackState is returned when a session could not be followed at all.
func fallbackState(playlist []string, startIndex int, startTime float64, now time.Time) PlaybackState {
	return PlaybackState{
		LastPlayedFile:  playlist[startIndex],
		LastPlayedIndex: startIndex,
		Position:        startTime,
		Timestamp:       now,
	}
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
