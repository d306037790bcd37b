package framelib

import "fmt"

// ConfigError is the only error kind the runtime surfaces to the host (§7):
// a bad connection index, a cycle, or an out-of-range parameter, reported
// at connection time or instantiation. A node refusing to go live returns
// one of these; allocation failures and timing anomalies are not errors —
// they are silent, best-effort recoveries logged at most (see logging.go).
type ConfigError struct {
	Op  string
	Msg string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("framelib: configuration error in %s: %s", e.Op, e.Msg)
}

func newConfigError(op, format string, args ...any) *ConfigError {
	return &ConfigError{Op: op, Msg: fmt.Sprintf(format, args...)}
}

// ErrDriverActive is returned by connection-management calls attempted
// while a BlockDriver built on the graph is open, from NewBlockDriver until
// its Close (§4.6: "forbidden while the block driver is active"; the host
// must quiesce first).
var ErrDriverActive = &ConfigError{Op: "connection", Msg: "graph connections cannot change while the block driver is active; quiesce first"}
