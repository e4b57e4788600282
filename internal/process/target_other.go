//go:build unix && !linux

package process

import (
	"github.com/w31r4/gofreeze/internal/suspend"
	"golang.org/x/sys/unix"
)

// openHandle checks that pid exists and is ours to signal. There is no
// process handle on these systems, so the pid itself is the handle.
func openHandle(pid int32) (suspend.Handle, error) {
	if pid <= 0 {
		return suspend.InvalidHandle, wrapErrno("open process", pid, unix.EINVAL)
	}
	if err := unix.Kill(int(pid), 0); err != nil {
		return suspend.InvalidHandle, wrapErrno("open process", pid, err)
	}
	return int(pid), nil
}

func closeHandle(suspend.Handle) error {
	return nil
}
