// Package player drives external media players and reports where the user
// stopped watching.
//
// A driver starts the player paused, walks it to the requested playlist entry
// and offset over its control channel, then polls it until the user closes it.
package player

import "context"

// Driver launches a player for one watch session.
//
// Launch blocks until the player exits or ctx is done, and always returns a
// usable state: failures degrade to what was known before the failure.
// A driver runs one Launch at a time; concurrent calls on the same driver are not supported.
type Driver interface {
	Launch(ctx context.Context, playlist []string, startIndex int, startTime float64) PlaybackState

	// Name identifies the backend.
	Name() string
}
