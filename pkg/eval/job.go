package eval

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/sys/unix"
)

// SignaledStatus is the exit status of a process killed by a signal.
const SignaledStatus = 130

// Job is an external process started by the shell.
type Job struct {
	Pid int
	// Cmd is the command line, after expansion.
	Cmd []string

	proc *os.Process
	done bool
	ws   unix.WaitStatus
	err  error
}

func makeSysProcAttr(bg bool) *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: bg}
}

// Blocks until the process exits and returns its exit status.
func (j *Job) wait() (int, error) {
	for !j.done {
		var ws unix.WaitStatus
		_, err := unix.Wait4(j.Pid, &ws, 0, nil)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		j.finish(ws, err)
	}
	if j.err != nil {
		return 1, fmt.Errorf("waiting for %s (pid %d): %w", j.Cmd[0], j.Pid, j.err)
	}
	return j.ExitStatus(), nil
}

// Reports whether the process has exited, without blocking.
func (j *Job) poll() bool {
	if j.done {
		return true
	}
	var ws unix.WaitStatus
	pid, err := unix.Wait4(j.Pid, &ws, unix.WNOHANG, nil)
	switch {
	case errors.Is(err, unix.EINTR):
		return false
	case err != nil:
		j.finish(ws, err)
	case pid == j.Pid:
		j.finish(ws, nil)
	}
	return j.done
}

func (j *Job) finish(ws unix.WaitStatus, err error) {
	j.done, j.ws, j.err = true, ws, err
	if j.proc != nil {
		j.proc.Release()
	}
}

// ExitStatus returns the exit status of a finished process. A process killed
// by a signal has SignaledStatus.
func (j *Job) ExitStatus() int {
	if j.ws.Exited() {
		return j.ws.ExitStatus()
	}
	return SignaledStatus
}

// Status describes the state of the job for the jobs builtin.
func (j *Job) Status() string {
	switch {
	case !j.poll():
		return "Running"
	case j.err != nil:
		return "Unknown(" + j.err.Error() + ")"
	case j.ws.Signaled():
		return "Done(killed by " + unix.SignalName(j.ws.Signal()) + ")"
	default:
		return fmt.Sprintf("Done(%d)", j.ws.ExitStatus())
	}
}

func (j *Job) String() string {
	return strings.Join(j.Cmd, " ")
}
