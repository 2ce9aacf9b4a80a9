package player

import (
	"errors"
	"fmt"
	"os/exec"
	"sync"
	"time"

	"github.com/cuewatch/cue/log"
)

const defaultTerminateGrace = 3 * time.Second

// Process is a spawned player. It is reaped in the background so liveness can
// be polled without blocking.
type Process struct {
	cmd    *exec.Cmd
	exited chan struct{}
	err    error
	once   sync.Once
}

// StartProcess spawns executable with args in its own process group, with no
// standard streams attached.
func StartProcess(executable string, args []string) (*Process, error) {
	cmd := exec.Command(executable, args...)
	cmd.SysProcAttr = sysProcAttr()
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", executable, err)
	}

	p := &Process{cmd: cmd, exited: make(chan struct{})}
	go func() {
		p.err = cmd.Wait()
		close(p.exited)
	}()
	return p, nil
}

// Pid returns the OS process id.
func (p *Process) Pid() int {
	return p.cmd.Process.Pid
}

// Alive reports whether the process is still running.
func (p *Process) Alive() bool {
	select {
	case <-p.exited:
		return false
	default:
		return true
	}
}

// Wait returns a channel closed when the process exits.
func (p *Process) Wait() <-chan struct{} {
	return p.exited
}

// ExitErr returns the wait error once the process has exited.
func (p *Process) ExitErr() error {
	if p.Alive() {
		return nil
	}
	return p.err
}

// Terminate asks the process group to stop and kills it if it is still around
// after grace. It returns once the process has been reaped.
func (p *Process) Terminate(grace time.Duration) error {
	if grace <= 0 {
		grace = defaultTerminateGrace
	}

	var err error
	p.once.Do(func() {
		if !p.Alive() {
			return
		}
		if termErr := terminateProcess(p.cmd); termErr != nil {
			log.Warnf("player: terminate pid %d: %v", p.Pid(), termErr)
		}

		select {
		case <-p.exited:
			return
		case <-time.After(grace):
		}

		log.Warnf("player: pid %d ignored termination, killing", p.Pid())
		if killErr := killProcess(p.cmd); killErr != nil && !errors.Is(killErr, errProcessDone) {
			err = killErr
		}
		<-p.exited
	})
	return err
}

func logRemoveFailure(address string, err error) {
	log.Warnf("player: remove control channel %s: %v", address, err)
}
