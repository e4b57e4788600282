//go:build windows

package suspend

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// Handle is a process handle opened with at least PROCESS_SUSPEND_RESUME.
type Handle = windows.Handle

// InvalidHandle never addresses a process. windows.InvalidHandle is not
// used because its value doubles as the current-process pseudo handle.
const InvalidHandle Handle = 0

// Nests is true because Windows keeps a per-thread suspend count: every
// Suspend needs a matching Resume.
const Nests = true

var (
	ntdll                = windows.NewLazySystemDLL("ntdll.dll")
	procNtSuspendProcess = ntdll.NewProc("NtSuspendProcess")
	procNtResumeProcess  = ntdll.NewProc("NtResumeProcess")
)

// Suspend asks the kernel to stop scheduling every thread of the process.
func Suspend(h Handle) Status {
	return callNt(procNtSuspendProcess, h)
}

// Resume asks the kernel to resume every thread of the process.
func Resume(h Handle) Status {
	return callNt(procNtResumeProcess, h)
}

func callNt(proc *windows.LazyProc, h Handle) Status {
	if err := proc.Find(); err != nil {
		return Status(windows.STATUS_PROCEDURE_NOT_FOUND)
	}
	r, _, _ := proc.Call(uintptr(h))
	return Status(uint32(r))
}

// Err returns the status as a windows.NTStatus, or nil on success.
func (s Status) Err() error {
	if s.OK() {
		return nil
	}
	return windows.NTStatus(s)
}

func (s Status) String() string {
	if s.OK() {
		return "ok"
	}
	return fmt.Sprintf("NTSTATUS 0x%08X", uint32(s))
}
