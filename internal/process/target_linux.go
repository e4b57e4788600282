//go:build linux

package process

import (
	"github.com/w31r4/gofreeze/internal/suspend"
	"golang.org/x/sys/unix"
)

// openHandle returns a pidfd, which keeps addressing the same process even
// if its pid is recycled while we hold it.
func openHandle(pid int32) (suspend.Handle, error) {
	fd, err := unix.PidfdOpen(int(pid), 0)
	if err != nil {
		return suspend.InvalidHandle, wrapErrno("open process", pid, err)
	}
	return fd, nil
}

func closeHandle(h suspend.Handle) error {
	if h < 0 {
		return nil
	}
	return unix.Close(h)
}
