// Package jobfail is the classified error taxonomy from spec.md §7. It is
// a leaf package (no dependency on internal/master or internal/rpc) so
// that both the RPC transport (which produces raw participant failures)
// and the master's Result Classifier (C5, which maps those failures to a
// single job-level outcome) can share one vocabulary without an import
// cycle.
package jobfail

import (
	"errors"
	"fmt"

	"github.com/streamforge/jetmaster/internal/termmode"
)

// Cancelled is returned when a job stopped due to cooperative user
// cancellation.
var Cancelled = errors.New("job cancelled")

// TopologyChanged is returned when a participant left and no more
// specific cause was found.
var TopologyChanged = errors.New("topology changed")

// LocalMemberReset indicates this node itself left and rejoined the
// cluster; treated as cancel-locally-without-deleting-metadata.
var LocalMemberReset = errors.New("local member reset")

// MemberLeft is a topology exception: a specific participant departed
// mid-execution.
type MemberLeft struct {
	Member string
}

func (e *MemberLeft) Error() string { return fmt.Sprintf("member left: %s", e.Member) }

// IsTopology reports whether err is (or wraps) a topology exception:
// TopologyChanged or MemberLeft.
func IsTopology(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, TopologyChanged) {
		return true
	}
	var ml *MemberLeft
	return errors.As(err, &ml)
}

// TerminatedWithSnapshot is returned by a participant that stopped after
// successfully taking its terminal-snapshot slice.
type TerminatedWithSnapshot struct{}

func (e *TerminatedWithSnapshot) Error() string { return "terminated with snapshot" }

// JobTerminateRequested is a non-cancel termination outcome (restart,
// suspend, or graceful-restart-with-snapshot).
type JobTerminateRequested struct {
	Mode termmode.Mode
}

func (e *JobTerminateRequested) Error() string {
	return fmt.Sprintf("job terminate requested: %s", e.Mode.Name())
}

// UserError wraps an exception raised in user DAG code or plan
// deserialization, classified as restartable or not.
type UserError struct {
	Cause       error
	IsRestartable bool
}

func (e *UserError) Error() string { return fmt.Sprintf("user error: %v", e.Cause) }
func (e *UserError) Unwrap() error { return e.Cause }

// NewUserError wraps cause as a non-restartable UserError.
func NewUserError(cause error) *UserError { return &UserError{Cause: cause} }

// NewRestartableUserError wraps cause as a restartable UserError.
func NewRestartableUserError(cause error) *UserError {
	return &UserError{Cause: cause, IsRestartable: true}
}

// IllegalState marks an invariant violation inside the coordinator: it
// should never happen and is logged as severe.
type IllegalState struct {
	Msg string
}

func (e *IllegalState) Error() string { return "illegal state: " + e.Msg }

// NewIllegalState builds an IllegalState from a format string.
func NewIllegalState(format string, args ...any) *IllegalState {
	return &IllegalState{Msg: fmt.Sprintf(format, args...)}
}

// Restartable reports whether failure is an error class eligible for
// automatic restart: TopologyChanged, MemberLeft, or a UserError flagged
// restartable.
func Restartable(failure error) bool {
	if failure == nil {
		return false
	}
	if IsTopology(failure) {
		return true
	}
	var ue *UserError
	if errors.As(failure, &ue) {
		return ue.IsRestartable
	}
	return false
}

// IsSuccess implements spec.md §4.6's isSuccess(failure): only nil is
// success. Cancelled and JobTerminateRequested also return false; they
// are told apart from genuine failures by IsNormalStop.
func IsSuccess(failure error) bool {
	return failure == nil
}

// IsNormalStop reports whether failure represents a cooperative,
// non-error stop (Cancelled or JobTerminateRequested) as opposed to a
// genuine failure, for logging classification.
func IsNormalStop(failure error) bool {
	if failure == nil {
		return false
	}
	if errors.Is(failure, Cancelled) {
		return true
	}
	var jtr *JobTerminateRequested
	return errors.As(failure, &jtr)
}

// Peel unwraps a failure down to the first already-classified jobfail
// error, mirroring the spec's "unwrap ('peel') a transport wrapper and
// return the classified cause" step in the classifier. It stops as soon
// as err is itself one of this package's types or sentinels: a
// *UserError arriving from the start protocol must keep its
// IsRestartable tag all the way to Restartable(), so Peel must not keep
// unwrapping through UserError.Unwrap() down to the bare user cause.
func Peel(err error) error {
	for {
		if isClassified(err) {
			return err
		}
		unwrapped := errors.Unwrap(err)
		if unwrapped == nil {
			return err
		}
		err = unwrapped
	}
}

// isClassified reports whether err is already one of this package's own
// classified types or sentinels.
func isClassified(err error) bool {
	switch err {
	case Cancelled, TopologyChanged, LocalMemberReset:
		return true
	}
	switch err.(type) {
	case *MemberLeft, *TerminatedWithSnapshot, *JobTerminateRequested, *UserError, *IllegalState:
		return true
	}
	return false
}
