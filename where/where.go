// Package where implements a cross-platform resolver for application-specific filesystem paths.
package where

import (
	"os"
	"path/filepath"

	"github.com/cuewatch/cue/constant"
	"github.com/cuewatch/cue/filesystem"
	"github.com/samber/lo"
)

// EnvConfigPath overrides the default configuration directory.
const EnvConfigPath = "CUE_CONFIG_PATH"

// EnvDataPath overrides the directory holding the database and JSON history.
const EnvDataPath = "CUE_DATA_PATH"

func ensureDir(path string) string {
	lo.Must0(filesystem.API().MkdirAll(path, os.ModePerm))
	return path
}

// Config resolves the directory holding cue.toml.
// Honors CUE_CONFIG_PATH, otherwise the platform user config dir.
func Config() string {
	if custom, ok := os.LookupEnv(EnvConfigPath); ok {
		return ensureDir(custom)
	}

	base := lo.Must(os.UserConfigDir())
	return ensureDir(filepath.Join(base, constant.Cue))
}

// Data resolves the directory holding persistent watch data.
func Data() string {
	if custom, ok := os.LookupEnv(EnvDataPath); ok {
		return ensureDir(custom)
	}

	return ensureDir(filepath.Join(Config(), "data"))
}

// Logs resolves the directory used for diagnostic logs.
func Logs() string {
	return ensureDir(filepath.Join(Config(), "logs"))
}

// Database resolves the SQLite database file.
func Database() string {
	return filepath.Join(Data(), "cue.db")
}

// History resolves the JSON history file used by the json store backend.
func History() string {
	return filepath.Join(Data(), "history.json")
}

// Sockets resolves the directory in which player control sockets are created.
// It lives on the OS filesystem regardless of the afero backend since the player process must reach it.
func Sockets() string {
	dir := filepath.Join(os.TempDir(), constant.Cue)
	lo.Must0(os.MkdirAll(dir, 0o700))
	return dir
}
