package master

// JobStatus is a job's coarse lifecycle state, per spec.md §3.
type JobStatus string

const (
	StatusNotRunning                 JobStatus = "NOT_RUNNING"
	StatusStarting                   JobStatus = "STARTING"
	StatusRunning                    JobStatus = "RUNNING"
	StatusSuspended                  JobStatus = "SUSPENDED"
	StatusSuspendedExportingSnapshot JobStatus = "SUSPENDED_EXPORTING_SNAPSHOT"
	StatusCompleted                  JobStatus = "COMPLETED"
	StatusFailed                     JobStatus = "FAILED"
)

// IsTerminal reports whether s is a terminal status: once reached, a Job
// never transitions again.
func (s JobStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// legalTransitions enumerates every from->to pair spec.md §4.1 allows.
var legalTransitions = map[JobStatus]map[JobStatus]bool{
	StatusNotRunning: {
		StatusStarting:   true,
		StatusNotRunning: true,
	},
	StatusStarting: {
		StatusRunning:    true,
		StatusNotRunning: true,
	},
	StatusRunning: {
		StatusCompleted:  true,
		StatusFailed:     true,
		StatusNotRunning: true,
		StatusSuspended:  true,
	},
	StatusSuspended: {
		StatusNotRunning: true,
		StatusFailed:     true,
	},
	StatusSuspendedExportingSnapshot: {
		StatusFailed: true,
	},
}

// CanTransition reports whether moving from status from to status to is
// legal.
func CanTransition(from, to JobStatus) bool {
	if from.IsTerminal() {
		return false
	}
	return legalTransitions[from][to]
}
