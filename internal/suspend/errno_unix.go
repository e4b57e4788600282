//go:build unix

package suspend

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

func errnoStatus(err error) Status {
	var errno unix.Errno
	if errors.As(err, &errno) {
		return Status(errno)
	}
	return Status(unix.EINVAL)
}

// Err returns the status as a unix.Errno, or nil on success.
func (s Status) Err() error {
	if s.OK() {
		return nil
	}
	return unix.Errno(s)
}

func (s Status) String() string {
	if s.OK() {
		return "ok"
	}
	return fmt.Sprintf("errno %d (%v)", uint32(s), unix.Errno(s))
}
