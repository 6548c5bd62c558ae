package master

import "github.com/streamforge/jetmaster/internal/jobfail"

// Errors is internal/jobfail's taxonomy re-exposed under this package so
// that callers driving a Job don't also need to import internal/jobfail
// to pattern-match on termination causes.
type (
	MemberLeft             = jobfail.MemberLeft
	TerminatedWithSnapshot = jobfail.TerminatedWithSnapshot
	JobTerminateRequested  = jobfail.JobTerminateRequested
	UserError              = jobfail.UserError
	IllegalState           = jobfail.IllegalState
)

var (
	ErrCancelled        = jobfail.Cancelled
	ErrTopologyChanged  = jobfail.TopologyChanged
	ErrLocalMemberReset = jobfail.LocalMemberReset
)

func wasCancelledErr(err error) bool { return err == jobfail.Cancelled }

func wasLocalMemberReset(err error) bool { return err == jobfail.LocalMemberReset }
