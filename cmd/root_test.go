package cmd

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/cuewatch/cue/filesystem"
	"github.com/cuewatch/cue/key"
	"github.com/cuewatch/cue/library"
	"github.com/cuewatch/cue/where"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func TestCommandErrors(t *testing.T) {
	Convey("Given commands that open the store", t, func() {
		filesystem.SetMemMapFs()
		t.Setenv(where.EnvDataPath, "/cue-data")
		viper.Set(key.StoreBackend, storeJSON)
		defer viper.Set(key.StoreBackend, storeSQLite)

		var out bytes.Buffer
		for _, c := range []*cobra.Command{archiveCmd, statsCmd, listCmd} {
			c.SetContext(context.Background())
			c.SetOut(&out)
		}

		Convey("Errors after the store is open are returned, not fatal", func() {
			err := archiveCmd.RunE(archiveCmd, []string{"/shows/never seen.mkv"})
			So(errors.Is(err, library.ErrSessionNotFound), ShouldBeTrue)

			err = statsCmd.RunE(statsCmd, nil)
			So(errors.Is(err, errStatsUnsupported), ShouldBeTrue)
		})

		Convey("A failing store backend is returned too", func() {
			viper.Set(key.StoreBackend, "paper")
			So(listCmd.RunE(listCmd, nil), ShouldNotBeNil)
			So(playCmd.RunE(playCmd, []string{"/shows"}), ShouldNotBeNil)
		})

		Convey("An empty store lists nothing", func() {
			So(listCmd.RunE(listCmd, nil), ShouldBeNil)
			So(out.String(), ShouldContainSubstring, "no sessions")
		})

		Convey("Execute reports errors itself, without cobra's usage dump", func() {
			So(rootCmd.SilenceErrors, ShouldBeTrue)
			So(rootCmd.SilenceUsage, ShouldBeTrue)
		})
	})

	Convey("Given rename without anything to change", t, func() {
		err := renameCmd.RunE(renameCmd, []string{"/shows/a.mkv"})
		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldContainSubstring, "nothing to change")
	})
}
