//go:build linux

package framelib

import "golang.org/x/sys/unix"

// setThreadPriority maps a PriorityLevel to a "nice" value and applies it to
// the calling OS thread, generalizing the teacher's direct
// golang.org/x/sys/unix use (device ioctls in cm108.go/ptt.go) from raw
// device IO to realtime thread scheduling. Errors are ignored: an
// unprivileged process can't lower niceness, and the block driver's
// correctness never depends on priority actually taking effect.
func setThreadPriority(level PriorityLevel) {
	var nice int
	switch level {
	case LowPriority:
		nice = 10
	case MediumPriority:
		nice = 0
	case HighPriority:
		nice = -10
	case AudioPriority:
		nice = -20
	}
	_ = unix.Setpriority(unix.PRIO_PROCESS, 0, nice)
}
