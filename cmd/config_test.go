package cmd

import (
	"testing"

	"github.com/cuewatch/cue/key"
	. "github.com/smartystreets/goconvey/convey"
)

func TestClosestKey(t *testing.T) {
	Convey("Given a mistyped key", t, func() {
		Convey("The nearest registered key is suggested", func() {
			So(closestKey("player.backnd"), ShouldEqual, key.PlayerBackend)
			So(closestKey("store.backed"), ShouldEqual, key.StoreBackend)
		})
	})
}

func TestLookupField(t *testing.T) {
	Convey("Given a registered key", t, func() {
		field, err := lookupField(key.PlaybackMinWatchSeconds)
		So(err, ShouldBeNil)
		So(field.Value, ShouldEqual, 5)
	})

	Convey("Given an unknown key", t, func() {
		_, err := lookupField("nope.nope")
		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldContainSubstring, "did you mean")
	})
}
