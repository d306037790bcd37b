//go:build !linux

package framelib

// setThreadPriority is a no-op on platforms without a portable priority
// knob reachable from Go; the scheduler's correctness never depends on it.
func setThreadPriority(level PriorityLevel) {}
