package process

import (
	"sync"

	"github.com/w31r4/gofreeze/internal/suspend"
)

// Target owns an OS handle to one process. The suspend package only
// borrows the handle; Target is what opens and closes it.
type Target struct {
	pid       int32
	h         suspend.Handle
	closeOnce sync.Once
	closeErr  error
}

// Open acquires a handle suitable for suspending and resuming pid.
// Failures wrap ErrNotFound or ErrAccessDenied when the OS says so.
func Open(pid int32) (*Target, error) {
	h, err := openHandle(pid)
	if err != nil {
		return nil, err
	}
	return &Target{pid: pid, h: h}, nil
}

// Pid returns the process id the handle was opened for.
func (t *Target) Pid() int32 { return t.pid }

// Handle lends the raw handle. It stays valid until Close.
func (t *Target) Handle() suspend.Handle { return t.h }

// Close releases the handle. Calling it more than once is harmless.
func (t *Target) Close() error {
	t.closeOnce.Do(func() {
		t.closeErr = closeHandle(t.h)
		t.h = suspend.InvalidHandle
	})
	return t.closeErr
}
