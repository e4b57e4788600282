package process

import (
	"errors"
	"fmt"

	"github.com/w31r4/gofreeze/internal/suspend"
)

var (
	// ErrNotFound means the process does not exist (or no longer exists).
	ErrNotFound = errors.New("process not found")
	// ErrAccessDenied means the OS refused to let us control the process.
	ErrAccessDenied = errors.New("access denied")
)

// ControlError reports a suspend or resume request the OS rejected. It
// keeps the raw status and unwraps both to the platform error
// (windows.NTStatus or unix.Errno) and, when recognised, to ErrNotFound or
// ErrAccessDenied.
type ControlError struct {
	Op     string
	Pid    int32
	Status suspend.Status
}

func (e *ControlError) Error() string {
	return fmt.Sprintf("%s process %d: %v (%s)", e.Op, e.Pid, e.Status.Err(), e.Status)
}

func (e *ControlError) Unwrap() []error {
	errs := []error{e.Status.Err()}
	if kind := classifyStatus(e.Status); kind != nil {
		errs = append(errs, kind)
	}
	return errs
}

// IsGone reports whether err says the process has already exited. The
// list treats those as races, not failures.
func IsGone(err error) bool {
	return errors.Is(err, ErrNotFound)
}
