package player

import (
	"errors"
	"os/exec"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestNew(t *testing.T) {
	Convey("Given driver options", t, func() {
		Convey("An unknown backend should be rejected", func() {
			_, err := New(Options{Backend: "quicktime", Executable: "sh"})
			So(err, ShouldNotBeNil)
		})

		Convey("A missing executable should surface as exec.ErrNotFound", func() {
			_, err := New(Options{Backend: "mpv", Executable: "cue-no-such-player"})
			So(errors.Is(err, exec.ErrNotFound), ShouldBeTrue)
		})

		Convey("A wrapper flavor should build an mpv driver", func() {
			sh, err := exec.LookPath("sh")
			if err != nil {
				SkipSo(err, ShouldBeNil)
				return
			}
			d, err := New(Options{Backend: "celluloid", Executable: sh, Resolver: "fuzzy"})
			So(err, ShouldBeNil)
			So(d.Name(), ShouldEqual, "celluloid")

			m := d.(*MPV)
			So(m.opts.Executable, ShouldEqual, sh)
			So(m.opts.Resolver, ShouldHaveSameTypeAs, FuzzyResolver{})
		})

		Convey("The vlc backend should build a VLC driver", func() {
			sh, err := exec.LookPath("sh")
			if err != nil {
				SkipSo(err, ShouldBeNil)
				return
			}
			d, err := New(Options{Backend: "VLC", Executable: sh})
			So(err, ShouldBeNil)
			So(d, ShouldHaveSameTypeAs, &VLC{})
		})
	})
}
