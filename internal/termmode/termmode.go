// Package termmode defines TerminationMode, kept in its own leaf package
// so both internal/master and internal/rpc can depend on it without an
// import cycle (the master drives RPC invocations parameterized by mode;
// the RPC layer serializes it onto the wire).
package termmode

// ActionAfterTerminate describes what should happen once an execution
// has stopped because of this termination.
type ActionAfterTerminate string

const (
	ActionNone    ActionAfterTerminate = "NONE"
	ActionRestart ActionAfterTerminate = "RESTART"
	ActionSuspend ActionAfterTerminate = "SUSPEND"
)

// Mode is a termination request: what to do after stopping, whether to
// take a terminal snapshot first, and whether the stop is cooperative.
type Mode struct {
	ActionAfterTerminate ActionAfterTerminate
	WithTerminalSnapshot bool
	Graceful             bool
}

// Named modes from spec.md §3.
var (
	CancelForceful = Mode{ActionAfterTerminate: ActionNone, WithTerminalSnapshot: false, Graceful: false}
	CancelGraceful = Mode{ActionAfterTerminate: ActionNone, WithTerminalSnapshot: true, Graceful: true}
	RestartGraceful = Mode{ActionAfterTerminate: ActionRestart, WithTerminalSnapshot: true, Graceful: true}
	SuspendGraceful = Mode{ActionAfterTerminate: ActionSuspend, WithTerminalSnapshot: true, Graceful: true}
)

// Name returns a human-readable label for logging/error messages.
func (m Mode) Name() string {
	switch m {
	case CancelForceful:
		return "CANCEL_FORCEFUL"
	case CancelGraceful:
		return "CANCEL_GRACEFUL"
	case RestartGraceful:
		return "RESTART_GRACEFUL"
	case SuspendGraceful:
		return "SUSPEND_GRACEFUL"
	default:
		return "CUSTOM"
	}
}

// WithoutSnapshot returns a copy of m with WithTerminalSnapshot cleared
// and Graceful downgraded, used when a job has no processing guarantee
// (spec.md §4.2 step 1: "graceful becomes forceful").
func (m Mode) WithoutSnapshot() Mode {
	m.WithTerminalSnapshot = false
	m.Graceful = false
	return m
}
