//go:build !windows

package player

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

const (
	helperEnv    = "CUE_WANT_HELPER_PROCESS"
	helperLogEnv = "CUE_HELPER_LOG"
)

// TestHelperProcess is not a real test. It stands in for mpv when the test
// binary is started by a driver. Its behaviour is picked by the mode in helperEnv.
func TestHelperProcess(t *testing.T) {
	mode := os.Getenv(helperEnv)
	if mode == "" {
		return
	}

	var address string
	var playlist []string
	for _, arg := range os.Args {
		switch {
		case strings.HasPrefix(arg, "--input-ipc-server="):
			address = strings.TrimPrefix(arg, "--input-ipc-server=")
		case !strings.HasPrefix(arg, "-"):
			playlist = append(playlist, arg)
		}
	}
	// os.Args[0] is the binary itself.
	playlist = playlist[1:]

	switch mode {
	case "crash":
		os.Exit(3)
	case "silent":
		time.Sleep(time.Minute)
		os.Exit(0)
	}

	l, err := net.Listen("unix", address)
	if err != nil {
		os.Exit(2)
	}
	conn, err := l.Accept()
	if err != nil {
		os.Exit(2)
	}

	fake := &fakePlayer{playlist: playlist, paused: true}
	r := bufio.NewReader(conn)
	for !fake.closedByUser() {
		line, err := r.ReadBytes('\n')
		if err != nil {
			break
		}
		var req ipcRequest
		if json.Unmarshal(line, &req) != nil {
			continue
		}
		fake.log = append(fake.log, req.Command)
		data, status := fake.handle(req.Command)
		reply, _ := json.Marshal(map[string]any{"request_id": req.RequestID, "error": status, "data": data})
		_, _ = conn.Write([]byte(`{"event":"property-change","id":1}` + "\n"))
		_, _ = conn.Write(append(reply, '\n'))
	}

	if out, err := json.Marshal(fake.log); err == nil {
		_ = os.WriteFile(os.Getenv(helperLogEnv), out, 0o600)
	}
	_ = conn.Close()
	_ = l.Close()
	os.Exit(0)
}

// fakePlayer starts at index 0 whatever was asked, reports a duration only
// after switching, and is closed by the user after a few position reads.
type fakePlayer struct {
	playlist []string
	pos      int
	paused   bool
	timePos  float64
	reads    int
	log      [][]any
}

func (f *fakePlayer) closedByUser() bool {
	return f.reads >= 5
}

func (f *fakePlayer) handle(cmd []any) (any, string) {
	name, _ := cmd[0].(string)
	switch name {
	case "get_property":
		switch cmd[1] {
		case "playlist-count":
			return len(f.playlist), "success"
		case "playlist-pos":
			return f.pos, "success"
		case "path":
			return f.playlist[f.pos], "success"
		case "duration":
			if f.pos == 0 {
				return nil, "property unavailable"
			}
			return 1500.0, "success"
		case "time-pos":
			if !f.paused {
				f.reads++
				f.timePos = 1495
			}
			return f.timePos, "success"
		}
	case "set_property":
		switch cmd[1] {
		case "playlist-pos":
			f.pos = int(cmd[2].(float64))
			return nil, "success"
		case "pause":
			f.paused = cmd[2].(bool)
			return nil, "success"
		}
	case "seek":
		if s, ok := cmd[1].(string); ok {
			_, _ = fmt.Sscan(s, &f.timePos)
		}
		return nil, "success"
	}
	return nil, "invalid parameter"
}

func helperDriver(t *testing.T, mode string) (*MPV, string) {
	dir, err := os.MkdirTemp("", "cue")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })

	t.Setenv(helperEnv, mode)
	t.Setenv(helperLogEnv, filepath.Join(dir, "commands.json"))

	m := NewMPV(MPVOptions{
		Executable:     os.Args[0],
		ExtraArgs:      []string{"-test.run=TestHelperProcess", "--"},
		SocketDir:      dir,
		PollInterval:   10 * time.Millisecond,
		CallTimeout:    time.Second,
		ConnectTimeout: 5 * time.Second,
		TerminateGrace: time.Second,
	})
	return m, dir
}

func TestMPVLaunch(t *testing.T) {
	playlist := []string{"/a/ep1.mkv", "/a/ep2.mkv"}

	Convey("Given a player that needs to be switched to the second episode", t, func() {
		m, dir := helperDriver(t, "serve")

		var proc *Process
		var ch *Channel
		m.observe = func(p *Process, c *Channel) { proc, ch = p, c }

		state := m.Launch(context.Background(), playlist, 1, 120)

		Convey("The final state should describe the second episode, finished", func() {
			So(state.LastPlayedFile, ShouldEqual, "/a/ep2.mkv")
			So(state.LastPlayedIndex, ShouldEqual, 1)
			So(state.Duration, ShouldEqual, 1500)
			So(state.Position, ShouldEqual, 1495)
			So(state.IsFinished, ShouldBeTrue)
		})

		Convey("The player should have been switched, seeked and unpaused once", func() {
			raw, err := os.ReadFile(filepath.Join(dir, "commands.json"))
			So(err, ShouldBeNil)

			var log [][]any
			So(json.Unmarshal(raw, &log), ShouldBeNil)

			var seeks, unpauses, switches int
			for _, cmd := range log {
				switch {
				case cmd[0] == "seek":
					seeks++
					So(cmd, ShouldResemble, []any{"seek", "120", "absolute"})
				case cmd[0] == "set_property" && cmd[1] == "pause" && cmd[2] == false:
					unpauses++
				case cmd[0] == "set_property" && cmd[1] == "playlist-pos":
					switches++
				}
			}
			So(seeks, ShouldEqual, 1)
			So(unpauses, ShouldEqual, 1)
			So(switches, ShouldEqual, 1)
		})

		Convey("Everything should be released", func() {
			So(ch, ShouldNotBeNil)
			So(ch.Closed(), ShouldBeTrue)
			So(proc.Alive(), ShouldBeFalse)

			sockets, _ := filepath.Glob(filepath.Join(dir, "*.sock"))
			So(sockets, ShouldBeEmpty)
		})
	})

	Convey("Given a player that dies at once", t, func() {
		m, _ := helperDriver(t, "crash")
		state := m.Launch(context.Background(), playlist, 1, 120)

		Convey("The start point should be returned", func() {
			So(state.LastPlayedIndex, ShouldEqual, 1)
			So(state.Position, ShouldEqual, 120)
			So(state.Duration, ShouldEqual, 0)
		})
	})

	Convey("Given a player that never opens its channel", t, func() {
		m, dir := helperDriver(t, "silent")
		m.opts.ConnectTimeout = 300 * time.Millisecond

		started := time.Now()
		state := m.Launch(context.Background(), playlist, 0, 30)

		Convey("Launch should give up and fall back", func() {
			So(time.Since(started), ShouldBeLessThan, 10*time.Second)
			So(state.LastPlayedFile, ShouldEqual, "/a/ep1.mkv")
			So(state.Position, ShouldEqual, 30)
			So(state.IsFinished, ShouldBeFalse)

			_, err := os.Stat(channelAddress(dir, os.Getpid(), m.seq.Load()))
			So(errors.Is(err, fs.ErrNotExist), ShouldBeTrue)
		})
	})

	Convey("Given a cancelled context", t, func() {
		m, _ := helperDriver(t, "silent")
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		state := m.Launch(ctx, playlist, 0, 5)

		Convey("Launch should return the start point", func() {
			So(state.Position, ShouldEqual, 5)
		})
	})
}
