//go:build linux

package suspend

import "golang.org/x/sys/unix"

// Handle is a pidfd as returned by pidfd_open(2).
type Handle = int

// InvalidHandle never addresses a process.
const InvalidHandle Handle = -1

// Nests is false: a second SIGSTOP on a stopped process is absorbed and one
// SIGCONT resumes it.
const Nests = false

// Suspend delivers SIGSTOP through the pidfd.
func Suspend(h Handle) Status {
	return signal(h, unix.SIGSTOP)
}

// Resume delivers SIGCONT through the pidfd.
func Resume(h Handle) Status {
	return signal(h, unix.SIGCONT)
}

func signal(h Handle, sig unix.Signal) Status {
	if err := unix.PidfdSendSignal(h, sig, nil, 0); err != nil {
		return errnoStatus(err)
	}
	return 0
}
