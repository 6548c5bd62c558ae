package rpc

import (
	"time"

	"github.com/streamforge/jetmaster/internal/jobfail"
	"github.com/streamforge/jetmaster/internal/metrics"
	"github.com/streamforge/jetmaster/internal/termmode"
)

// Wire kinds classify a throwable across the gob-encoded wire, since
// gob cannot carry an `error` interface directly. The invoker
// reconstructs the matching internal/jobfail type on receipt.
const (
	kindNone                   = ""
	kindCancelled              = "cancelled"
	kindTerminatedWithSnapshot = "terminated_with_snapshot"
	kindMemberLeft             = "member_left"
	kindTopologyChanged        = "topology_changed"
	kindUserError              = "user_error"
	kindUserErrorRestartable   = "user_error_restartable"
	kindLocalMemberReset       = "local_member_reset"
	kindIllegalState           = "illegal_state"
	kindExecutionNotFound      = "execution_not_found"
	kindOther                  = "other"
)

type wireFailure struct {
	Kind    string
	Message string
	Member  string // only set for kindMemberLeft
	JobID   string // only set for kindExecutionNotFound
}

func toWireFailure(err error) wireFailure {
	if err == nil {
		return wireFailure{Kind: kindNone}
	}
	switch {
	case err == jobfail.Cancelled:
		return wireFailure{Kind: kindCancelled}
	case err == jobfail.TopologyChanged:
		return wireFailure{Kind: kindTopologyChanged}
	case err == jobfail.LocalMemberReset:
		return wireFailure{Kind: kindLocalMemberReset}
	}
	if _, ok := err.(*jobfail.TerminatedWithSnapshot); ok {
		return wireFailure{Kind: kindTerminatedWithSnapshot}
	}
	if ml, ok := err.(*jobfail.MemberLeft); ok {
		return wireFailure{Kind: kindMemberLeft, Member: ml.Member}
	}
	if ue, ok := err.(*jobfail.UserError); ok {
		kind := kindUserError
		if ue.IsRestartable {
			kind = kindUserErrorRestartable
		}
		return wireFailure{Kind: kind, Message: ue.Error()}
	}
	if enf, ok := err.(*ExecutionNotFound); ok {
		return wireFailure{Kind: kindExecutionNotFound, JobID: enf.JobID}
	}
	if is, ok := err.(*jobfail.IllegalState); ok {
		return wireFailure{Kind: kindIllegalState, Message: is.Msg}
	}
	return wireFailure{Kind: kindOther, Message: err.Error()}
}

func (w wireFailure) toError() error {
	switch w.Kind {
	case kindNone:
		return nil
	case kindCancelled:
		return jobfail.Cancelled
	case kindTopologyChanged:
		return jobfail.TopologyChanged
	case kindLocalMemberReset:
		return jobfail.LocalMemberReset
	case kindTerminatedWithSnapshot:
		return &jobfail.TerminatedWithSnapshot{}
	case kindMemberLeft:
		return &jobfail.MemberLeft{Member: w.Member}
	case kindUserError:
		return jobfail.NewUserError(errStr(w.Message))
	case kindUserErrorRestartable:
		return jobfail.NewRestartableUserError(errStr(w.Message))
	case kindExecutionNotFound:
		return &ExecutionNotFound{JobID: w.JobID}
	case kindIllegalState:
		return jobfail.NewIllegalState("%s", w.Message)
	default:
		return errStr(w.Message)
	}
}

type errStr string

func (e errStr) Error() string { return string(e) }

type wireRawMetrics struct {
	Timestamp time.Time
	Values    []metrics.NamedValue
}

func toWireMetrics(m *metrics.RawJobMetrics) *wireRawMetrics {
	if m == nil {
		return nil
	}
	return &wireRawMetrics{Timestamp: m.Timestamp, Values: m.Values}
}

func (w *wireRawMetrics) toMetrics() *metrics.RawJobMetrics {
	if w == nil {
		return nil
	}
	return &metrics.RawJobMetrics{Timestamp: w.Timestamp, Values: w.Values}
}

// initExecutionRequest is the wire shape of InitExecutionOperation.
type initExecutionRequest struct {
	JobID              string
	ExecutionID        uint64
	MembersViewVersion uint64
	SerializedPlan     []byte
}

type initExecutionResponse struct {
	Failure wireFailure
}

type startExecutionRequest struct {
	JobID       string
	ExecutionID uint64
}

type startExecutionResponse struct {
	Metrics *wireRawMetrics
	Failure wireFailure
}

type terminateExecutionRequest struct {
	JobID       string
	ExecutionID uint64
	Mode        termmode.Mode
}

type terminateExecutionResponse struct {
	Failure wireFailure
}

type getLocalJobMetricsRequest struct {
	JobID       string
	ExecutionID uint64
}

type getLocalJobMetricsResponse struct {
	Metrics   *wireRawMetrics
	Completed bool
	Failure   wireFailure
}
