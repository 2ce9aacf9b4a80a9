// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Player Backend - these keys select and tune the external player driver.
const (
	PlayerBackend        = "player.backend"
	PlayerExecutable     = "player.executable"
	PlayerExtraArgs      = "player.extra_args"
	PlayerPollInterval   = "player.poll_interval_ms"
	PlayerCallTimeout    = "player.call_timeout_ms"
	PlayerConnectTimeout = "player.connect_timeout"
	PlayerStartupTimeout = "player.startup_timeout"
	PlayerResolver       = "player.resolver"
)

// VLC Remote Control - these keys configure the alternate-protocol driver.
const (
	VLCHost = "vlc.host"
)

// Watch Tracking - these keys govern how finished sessions are turned into history and statistics.
const (
	PlaybackMinWatchSeconds   = "playback.min_watch_seconds"
	PlaybackMergeWindowMinute = "playback.merge_window_minutes"
	PlaybackRecapDays         = "playback.recap_days"
)

// Library - these keys define which files are considered part of a series.
const (
	LibraryExtensions = "library.extensions"
)

// Persistence - these keys select the repository implementation.
const (
	StoreBackend = "store.backend"
)

// Statistics - these keys tune the stats command output.
const (
	StatsMostWatchedLimit = "stats.most_watched_limit"
	StatsHistoryLimit     = "stats.history_limit"
	StatsStreakDays       = "stats.streak_days"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these flags and settings govern the command line behavior.
const (
	CliColored = "cli.colored"
)

// Icons - this key selects how status symbols are drawn.
const (
	IconsVariant = "icons.variant"
)
