package cmd

import (
	"context"
	"strings"
	"testing"

	"github.com/cuewatch/cue/filesystem"
	"github.com/cuewatch/cue/history"
	"github.com/cuewatch/cue/key"
	"github.com/cuewatch/cue/player"
	"github.com/cuewatch/cue/where"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func TestOpenRepository(t *testing.T) {
	Convey("Given the json store backend on an in-memory filesystem", t, func() {
		filesystem.SetMemMapFs()
		t.Setenv(where.EnvDataPath, "/cue-data")
		viper.Set(key.StoreBackend, storeJSON)
		defer viper.Set(key.StoreBackend, storeSQLite)

		repo, err := openRepository()
		So(err, ShouldBeNil)
		defer repo.Close()

		Convey("The gache history repository is used", func() {
			_, ok := repo.(*history.Repository)
			So(ok, ShouldBeTrue)
		})

		Convey("A library service on top of it creates sessions", func() {
			session, err := newLibrary(repo).GetOrCreate(context.Background(), "/shows/Show S01E01.mkv")
			So(err, ShouldBeNil)
			So(session.ID, ShouldNotBeEmpty)
		})
	})

	Convey("Given an unknown store backend", t, func() {
		viper.Set(key.StoreBackend, "paper")
		defer viper.Set(key.StoreBackend, storeSQLite)

		_, err := openRepository()
		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldContainSubstring, "paper")
	})
}

func TestDescribeState(t *testing.T) {
	Convey("Given playback states", t, func() {
		Convey("A finished file says so", func() {
			out := describeState(player.PlaybackState{LastPlayedIndex: 2, IsFinished: true}, 5)
			So(out, ShouldContainSubstring, "3/5")
			So(out, ShouldContainSubstring, "finished")
		})

		Convey("An unknown duration shows only the position", func() {
			out := describeState(player.PlaybackState{Position: 75}, 1)
			So(out, ShouldContainSubstring, "stopped at 1:15")
		})

		Convey("A known duration shows position and length", func() {
			out := describeState(player.PlaybackState{Position: 60, Duration: 1440}, 12)
			So(out, ShouldContainSubstring, "1:00 / 24:00")
			So(strings.Contains(out, "1/12"), ShouldBeTrue)
		})
	})
}

func TestEnvNames(t *testing.T) {
	Convey("Given the exposed configuration keys", t, func() {
		names := envNames()

		Convey("Keys map to prefixed variables and path overrides are listed", func() {
			So(names, ShouldContain, "CUE_PLAYER_BACKEND")
			So(names, ShouldContain, "CUE_STORE_BACKEND")
			So(names, ShouldContain, where.EnvConfigPath)
			So(names, ShouldContain, where.EnvDataPath)
		})
	})
}
