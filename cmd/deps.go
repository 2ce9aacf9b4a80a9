package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/cuewatch/cue/history"
	"github.com/cuewatch/cue/key"
	"github.com/cuewatch/cue/library"
	"github.com/cuewatch/cue/playback"
	"github.com/cuewatch/cue/player"
	"github.com/cuewatch/cue/store"
	"github.com/cuewatch/cue/where"
	"github.com/spf13/viper"
)

const (
	storeSQLite = "sqlite"
	storeJSON   = "json"
)

// openRepository opens the repository selected by store.backend.
func openRepository() (library.Repository, error) {
	mergeWindow := time.Duration(viper.GetInt(key.PlaybackMergeWindowMinute)) * time.Minute

	switch backend := viper.GetString(key.StoreBackend); backend {
	case storeSQLite:
		s, err := store.Open(where.Database(), store.Options{MergeWindow: mergeWindow})
		if err != nil {
			return nil, err
		}
		return s, nil
	case storeJSON:
		return history.New(where.History(), mergeWindow), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q, expected %s or %s", backend, storeSQLite, storeJSON)
	}
}

func newLibrary(repo library.Repository) *library.Service {
	return library.NewService(repo, library.Options{
		Extensions: viper.GetStringSlice(key.LibraryExtensions),
		RecapAfter: time.Duration(viper.GetInt(key.PlaybackRecapDays)) * 24 * time.Hour,
	})
}

func newPlayback(repo library.Repository) (*playback.Service, error) {
	opts := player.OptionsFromConfig()
	driver, err := player.New(opts)
	if err != nil {
		return nil, err
	}

	return playback.NewService(driver, repo, playback.Options{
		MinWatch: time.Duration(viper.GetInt(key.PlaybackMinWatchSeconds)) * time.Second,
		Resolver: player.NewResolver(opts.Resolver),
	}), nil
}

// absPath resolves a user supplied path the way sessions are keyed.
func absPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	return abs, nil
}

// interruptible returns a context that ends on Ctrl+C or SIGTERM.
func interruptible() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
