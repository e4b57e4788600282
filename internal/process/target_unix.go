//go:build unix

package process

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/w31r4/gofreeze/internal/suspend"
	"golang.org/x/sys/unix"
)

func wrapErrno(op string, pid int32, err error) error {
	switch {
	case errors.Is(err, unix.ESRCH):
		return fmt.Errorf("%s %d: %w: %w", op, pid, ErrNotFound, err)
	case errors.Is(err, unix.EPERM):
		return fmt.Errorf("%s %d: %w: %w", op, pid, ErrAccessDenied, err)
	}
	return fmt.Errorf("%s %d: %w", op, pid, err)
}

func classifyStatus(s suspend.Status) error {
	switch unix.Errno(s) {
	case unix.ESRCH:
		return ErrNotFound
	case unix.EPERM:
		return ErrAccessDenied
	}
	return nil
}

// terminate sends SIGTERM followed by SIGCONT. A stopped process only acts
// on SIGTERM once it runs again, and it may have been stopped by someone
// other than gofreeze; SIGCONT to a running process is a no-op.
func terminate(pid int32) error {
	p, err := os.FindProcess(int(pid))
	if err != nil {
		return wrapErrno("find process", pid, err)
	}
	if err := p.Signal(syscall.SIGTERM); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			return fmt.Errorf("kill process %d: %w: %w", pid, ErrNotFound, err)
		}
		return wrapErrno("kill process", pid, err)
	}
	_ = p.Signal(syscall.SIGCONT)
	return nil
}
