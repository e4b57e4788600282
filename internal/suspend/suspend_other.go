//go:build unix && !linux

package suspend

import "golang.org/x/sys/unix"

// Handle is the PID of the target process.
type Handle = int

// InvalidHandle never addresses a process.
const InvalidHandle Handle = 0

// Nests is false: a second SIGSTOP on a stopped process is absorbed and one
// SIGCONT resumes it.
const Nests = false

// Suspend delivers SIGSTOP to the process.
func Suspend(h Handle) Status {
	return signal(h, unix.SIGSTOP)
}

// Resume delivers SIGCONT to the process.
func Resume(h Handle) Status {
	return signal(h, unix.SIGCONT)
}

func signal(h Handle, sig unix.Signal) Status {
	// kill(2) treats 0 and negative pids as process groups.
	if h <= 0 {
		return Status(unix.EINVAL)
	}
	if err := unix.Kill(h, sig); err != nil {
		return errnoStatus(err)
	}
	return 0
}
