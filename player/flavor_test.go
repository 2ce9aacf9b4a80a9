package player

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestFlavor(t *testing.T) {
	const address = "/tmp/cue/cue-mpv-1-1.sock"
	playlist := []string{"/a/ep1.mkv", "-weird.mkv"}

	Convey("Given the native mpv flavor", t, func() {
		args := FlavorMPV.Args([]string{"--fs"}, address, playlist)

		Convey("Engine flags should be passed directly", func() {
			So(args, ShouldResemble, []string{
				"--fs",
				"--no-terminal",
				"--input-ipc-server=" + address,
				"--idle=yes",
				"--pause",
				"--force-window=yes",
				"/a/ep1.mkv",
				"./-weird.mkv",
			})
		})
	})

	Convey("Given the celluloid flavor", t, func() {
		args := FlavorCelluloid.Args(nil, address, playlist[:1])

		Convey("Engine flags should be joined into one option", func() {
			So(args, ShouldResemble, []string{
				"--new-window",
				"--mpv-options=--input-ipc-server=" + address + " --idle=yes --pause --force-window=yes",
				"/a/ep1.mkv",
			})
		})
	})

	Convey("Given the iina flavor", t, func() {
		args := FlavorIINA.Args(nil, address, playlist[:1])

		Convey("Engine flags should be re-prefixed", func() {
			So(args, ShouldResemble, []string{
				"--mpv-input-ipc-server=" + address,
				"--mpv-idle=yes",
				"--mpv-pause",
				"--mpv-force-window=yes",
				"/a/ep1.mkv",
			})
		})
	})

	Convey("ParseFlavor", t, func() {
		Convey("Should accept known names in any case", func() {
			f, err := ParseFlavor(" IINA ")
			So(err, ShouldBeNil)
			So(f, ShouldEqual, FlavorIINA)
			So(f.DefaultExecutable(), ShouldEqual, "iina-cli")
		})

		Convey("Should reject unknown names", func() {
			_, err := ParseFlavor("vlc")
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Media targets", t, func() {
		So(mediaTarget("https://example.com/a.mkv"), ShouldEqual, "https://example.com/a.mkv")
		So(mediaTarget("--script=evil.lua"), ShouldEqual, "./--script=evil.lua")
		So(mediaTarget("ep\n1.mkv"), ShouldEqual, "ep1.mkv")
	})
}
