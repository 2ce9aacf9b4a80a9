package log

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/cuewatch/cue/filesystem"
	"github.com/cuewatch/cue/key"
	"github.com/cuewatch/cue/where"
	"github.com/sirupsen/logrus"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestSetup(t *testing.T) {
	Convey("Given logging is disabled", t, func() {
		viper.Set(key.LogsWrite, false)
		So(Setup(), ShouldBeNil)
		So(Enabled(), ShouldBeFalse)

		Convey("WithFields should still be usable", func() {
			So(func() { WithFields(logrus.Fields{"a": 1}).Info("dropped") }, ShouldNotPanic)
		})
	})

	Convey("Given logging is enabled", t, func() {
		viper.Set(key.LogsWrite, true)
		viper.Set(key.LogsLevel, "debug")
		defer viper.Set(key.LogsWrite, false)

		So(Setup(), ShouldBeNil)
		So(Enabled(), ShouldBeTrue)
		So(logrus.GetLevel(), ShouldEqual, logrus.DebugLevel)

		Convey("A log file for today should exist", func() {
			Infof("hello %s", "cue")
			path := filepath.Join(where.Logs(), time.Now().Format("2006-01-02")+".log")
			exists, err := filesystem.API().Exists(path)
			So(err, ShouldBeNil)
			So(exists, ShouldBeTrue)
		})
	})
}
