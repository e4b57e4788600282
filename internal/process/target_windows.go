//go:build windows

package process

import (
	"errors"
	"fmt"
	"os"

	"github.com/w31r4/gofreeze/internal/suspend"
	"golang.org/x/sys/windows"
)

const targetAccess = windows.PROCESS_SUSPEND_RESUME | windows.PROCESS_QUERY_LIMITED_INFORMATION

func openHandle(pid int32) (suspend.Handle, error) {
	h, err := windows.OpenProcess(targetAccess, false, uint32(pid))
	if err != nil {
		switch {
		// OpenProcess reports a pid nobody owns as an invalid parameter.
		case errors.Is(err, windows.ERROR_INVALID_PARAMETER):
			return suspend.InvalidHandle, fmt.Errorf("open process %d: %w: %w", pid, ErrNotFound, err)
		case errors.Is(err, windows.ERROR_ACCESS_DENIED):
			return suspend.InvalidHandle, fmt.Errorf("open process %d: %w: %w", pid, ErrAccessDenied, err)
		}
		return suspend.InvalidHandle, fmt.Errorf("open process %d: %w", pid, err)
	}
	return h, nil
}

func closeHandle(h suspend.Handle) error {
	if h == suspend.InvalidHandle {
		return nil
	}
	return windows.CloseHandle(h)
}

func classifyStatus(s suspend.Status) error {
	switch windows.NTStatus(s) {
	case windows.STATUS_ACCESS_DENIED:
		return ErrAccessDenied
	case windows.STATUS_PROCESS_IS_TERMINATING:
		return ErrNotFound
	}
	return nil
}

// terminate ends the process. Windows has no SIGTERM; TerminateProcess
// also works on suspended processes, so there is nothing to wake up.
func terminate(pid int32) error {
	p, err := os.FindProcess(int(pid))
	if err != nil {
		return fmt.Errorf("find process %d: %w: %w", pid, ErrNotFound, err)
	}
	defer p.Release()
	if err := p.Kill(); err != nil {
		return fmt.Errorf("kill process %d: %w", pid, err)
	}
	return nil
}
