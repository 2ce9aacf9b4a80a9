package player

import (
	"bufio"
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	. "github.com/smartystreets/goconvey/convey"
)

// fakeRC answers rc commands the way VLC does, prompt included.
func fakeRC(conn net.Conn, answers map[string]string, seen chan<- string) {
	go func() {
		defer conn.Close()
		_, _ = conn.Write([]byte("VLC media player 3.0.20 Vetinari\r\nCommand Line Interface initialized. Type `help' for help.\r\n> "))
		r := bufio.NewReader(conn)
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			cmd := strings.TrimSpace(line)
			seen <- cmd
			if answer, ok := answers[cmd]; ok {
				_, _ = conn.Write([]byte(answer + "\r\n> "))
			}
		}
	}()
}

// scriptedRC is fakeRC with answers that change over time. answer is called
// for every get_* command with the number of get_title calls seen so far;
// returning false hangs up. Seeks are recorded and never answered. done is
// closed once the fake has stopped reading.
func scriptedRC(conn net.Conn, answer func(cmd string, poll int) (string, bool), seen chan<- string) (done <-chan struct{}) {
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		defer conn.Close()
		_, _ = conn.Write([]byte("VLC media player 3.0.20 Vetinari\r\n> "))
		r := bufio.NewReader(conn)
		poll := 0
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			cmd := strings.TrimSpace(line)
			seen <- cmd
			if !strings.HasPrefix(cmd, "get_") {
				continue
			}
			if cmd == "get_title" {
				poll++
			}
			reply, ok := answer(cmd, poll)
			if !ok {
				return
			}
			_, _ = conn.Write([]byte(reply + "\r\n> "))
		}
	}()
	return closed
}

// followSession runs VLC.follow against a scripted rc server. stop is called
// after the given number of polls and must end the session one way or another.
type followSession struct {
	clock *clockwork.FakeClock
	proc  *Process
	seen  chan string
	log   []string
}

func (f *followSession) run(answer func(cmd string, poll int) (string, bool), polls int, stop func(*followSession), startTime float64) PlaybackState {
	client, server := net.Pipe()
	done := scriptedRC(server, answer, f.seen)
	rc := newRCConn(client, time.Second)

	v := NewVLC(VLCOptions{Clock: f.clock, PollInterval: time.Second})
	result := make(chan PlaybackState, 1)
	go func() {
		result <- v.follow(context.Background(), f.proc, rc, []string{"/a/ep1.mkv", "/a/ep2.mkv"}, 1, startTime)
	}()

	for poll := 1; poll <= polls; poll++ {
		for cmd := range f.seen {
			f.log = append(f.log, cmd)
			if cmd == "get_length" {
				break
			}
		}
		if poll < polls {
			f.clock.Advance(time.Second)
		}
	}
	stop(f)

	state := <-result
	_ = rc.Close()
	<-done
	close(f.seen)
	for cmd := range f.seen {
		f.log = append(f.log, cmd)
	}
	return state
}

func (f *followSession) count(cmd string) int {
	n := 0
	for _, c := range f.log {
		if c == cmd {
			n++
		}
	}
	return n
}

func exitProcess(f *followSession) { close(f.proc.exited) }

func TestVLCFollow(t *testing.T) {
	Convey("Given a VLC session resumed at 120s", t, func() {
		f := &followSession{
			clock: clockwork.NewFakeClock(),
			proc:  &Process{exited: make(chan struct{})},
			seen:  make(chan string, 64),
		}

		Convey("When VLC reports a media title instead of the launched path", func() {
			state := f.run(func(cmd string, poll int) (string, bool) {
				switch cmd {
				case "get_title":
					return "Episode Two", true
				case "get_time":
					return "125", true
				}
				return "1500", true
			}, 3, exitProcess, 120)

			Convey("Then it seeks exactly once", func() {
				So(f.count("seek 120"), ShouldEqual, 1)
				So(f.count("get_title"), ShouldEqual, 3)
			})

			Convey("Then the first title is not a file change", func() {
				So(state.Duration, ShouldEqual, 1500)
				So(state.Position, ShouldEqual, 125)
				So(state.LastPlayedFile, ShouldEqual, "Episode Two")
				So(state.LastPlayedIndex, ShouldEqual, 1)
			})
		})

		Convey("When the title changes before the length is known", func() {
			state := f.run(func(cmd string, poll int) (string, bool) {
				switch {
				case cmd == "get_title" && poll == 1:
					return "Episode Two", true
				case cmd == "get_title":
					return "Episode Three", true
				case cmd == "get_time":
					return "4", true
				case poll == 1:
					return "", true
				}
				return "1400", true
			}, 3, exitProcess, 120)

			Convey("Then the resume point is not applied to the next file", func() {
				So(f.count("seek 120"), ShouldEqual, 0)
				So(state.LastPlayedFile, ShouldEqual, "Episode Three")
				So(state.Duration, ShouldEqual, 1400)
				So(state.Position, ShouldEqual, 4)
			})
		})

		Convey("When the rc connection drops", func() {
			state := f.run(func(cmd string, poll int) (string, bool) {
				switch {
				case poll > 1:
					return "", false
				case cmd == "get_title":
					return "Episode Two", true
				case cmd == "get_time":
					return "300", true
				}
				return "1500", true
			}, 1, func(f *followSession) { f.clock.Advance(time.Second) }, 0)

			Convey("Then the last known values are kept", func() {
				So(f.count("seek 120"), ShouldEqual, 0)
				So(state.Position, ShouldEqual, 300)
				So(state.Duration, ShouldEqual, 1500)
			})
		})
	})
}

func TestRCConn(t *testing.T) {
	Convey("Given an rc connection to VLC", t, func() {
		client, server := net.Pipe()
		seen := make(chan string, 16)
		fakeRC(server, map[string]string{
			"get_title":  "ep2.mkv",
			"get_time":   "133",
			"get_length": "1500",
		}, seen)

		rc := newRCConn(client, 500*time.Millisecond)
		defer rc.Close()

		Convey("Properties should map onto rc commands", func() {
			title, err := rc.GetString("path")
			So(err, ShouldBeNil)
			So(title, ShouldEqual, "ep2.mkv")
			So(<-seen, ShouldEqual, "get_title")

			pos, err := rc.GetFloat("time-pos")
			So(err, ShouldBeNil)
			So(pos, ShouldEqual, 133)

			dur, err := rc.GetFloat("duration")
			So(err, ShouldBeNil)
			So(dur, ShouldEqual, 1500)
		})

		Convey("Seek should send whole seconds without waiting", func() {
			So(rc.Seek(120.7), ShouldBeNil)
			So(<-seen, ShouldEqual, "seek 120")
		})

		Convey("Unknown properties should be refused", func() {
			_, err := rc.GetString("playlist-pos")
			So(err, ShouldNotBeNil)
		})

		Convey("The monitor should run on top of it", func() {
			mon := NewMonitor(rc, ContainsResolver{}, "/a/ep2.mkv", 0)
			So(mon.Tick(), ShouldBeNil)
			So(mon.Transitions(), ShouldEqual, 0)

			s := mon.Snapshot([]string{"/a/ep1.mkv", "/a/ep2.mkv"}, 0, time.Now())
			So(s.LastPlayedIndex, ShouldEqual, 1)
			So(s.Position, ShouldEqual, 133)
			So(s.Duration, ShouldEqual, 1500)
		})
	})

	Convey("Given VLC answering with a blank line", t, func() {
		client, server := net.Pipe()
		seen := make(chan string, 16)
		fakeRC(server, map[string]string{
			"get_title": "",
			"get_time":  "133",
		}, seen)

		rc := newRCConn(client, 500*time.Millisecond)
		defer rc.Close()

		Convey("The blank reply should be an empty value and later replies should stay aligned", func() {
			title, err := rc.GetString("path")
			So(err, ShouldBeNil)
			So(title, ShouldEqual, "")

			pos, err := rc.GetFloat("time-pos")
			So(err, ShouldBeNil)
			So(pos, ShouldEqual, 133)
		})
	})

	Convey("Given a VLC driver", t, func() {
		v := NewVLC(VLCOptions{Executable: "/nonexistent/vlc"})

		Convey("An empty playlist should be a no-op", func() {
			So(v.Launch(context.Background(), nil, 0, 0), ShouldResemble, PlaybackState{})
		})

		Convey("A failed start should fall back to the start point", func() {
			s := v.Launch(context.Background(), []string{"/a/ep1.mkv"}, 0, 12)
			So(s.Position, ShouldEqual, 12)
			So(s.LastPlayedFile, ShouldEqual, "/a/ep1.mkv")
			So(v.Name(), ShouldEqual, "vlc")
		})
	})
}
