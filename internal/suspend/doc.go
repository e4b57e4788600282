// Package suspend halts and resumes every thread of an OS process.
//
// It is a leaf binding to the operating system: callers hand it a process
// handle they obtained elsewhere and get back the raw native status. The
// package never opens, validates or closes handles and holds no state, so
// the suspended/running state of a process lives only in the OS.
//
// On Windows the calls go to NtSuspendProcess/NtResumeProcess in ntdll.
// On Linux the handle is a pidfd and the calls deliver SIGSTOP/SIGCONT
// through pidfd_send_signal. Other Unix systems address the process by PID.
package suspend
