package master

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/streamforge/jetmaster/internal/cluster"
	"github.com/streamforge/jetmaster/internal/jobfail"
	"github.com/streamforge/jetmaster/internal/planbuilder"
	"github.com/streamforge/jetmaster/internal/termmode"
)

func member(t *testing.T) cluster.MemberInfo {
	t.Helper()
	return cluster.MemberInfo{UUID: uuid.New(), Address: "member:1"}
}

func planOf(members ...cluster.MemberInfo) map[cluster.MemberInfo]planbuilder.Plan {
	plan := make(map[cluster.MemberInfo]planbuilder.Plan, len(members))
	for _, m := range members {
		plan[m] = planbuilder.Plan{}
	}
	return plan
}

func TestClassify_ForcefulCancelShortCircuits(t *testing.T) {
	m := member(t)
	err := classify(map[cluster.MemberInfo]error{m: nil}, planOf(m), nil, true)
	require.ErrorIs(t, err, jobfail.Cancelled)
}

func TestClassify_AllSuccessIsNil(t *testing.T) {
	a, b := member(t), member(t)
	responses := map[cluster.MemberInfo]error{a: nil, b: nil}
	err := classify(responses, planOf(a, b), nil, false)
	require.NoError(t, err)
}

func TestClassify_GenuineFailureIsPeeled(t *testing.T) {
	a, b := member(t), member(t)
	cause := errors.New("bad partition key")
	responses := map[cluster.MemberInfo]error{a: nil, b: jobfail.NewUserError(cause)}
	err := classify(responses, planOf(a, b), nil, false)

	// Peel must stop at the classified *UserError, not unwrap through it
	// to the bare cause: Restartable() needs the IsRestartable tag intact.
	var ue *jobfail.UserError
	require.ErrorAs(t, err, &ue)
	require.ErrorIs(t, err, cause)
}

func TestClassify_RestartableUserErrorSurvivesPeel(t *testing.T) {
	a, b := member(t), member(t)
	responses := map[cluster.MemberInfo]error{
		a: nil,
		b: jobfail.NewRestartableUserError(errors.New("transient")),
	}
	err := classify(responses, planOf(a, b), nil, false)

	require.True(t, jobfail.Restartable(err), "a restartable UserError must remain classified as restartable through Peel")
}

func TestClassify_AllTerminatedWithSnapshotDefaultsToCancelled(t *testing.T) {
	a, b := member(t), member(t)
	responses := map[cluster.MemberInfo]error{
		a: &jobfail.TerminatedWithSnapshot{},
		b: &jobfail.TerminatedWithSnapshot{},
	}
	err := classify(responses, planOf(a, b), nil, false)
	require.ErrorIs(t, err, jobfail.Cancelled)
}

func TestClassify_AllTerminatedWithSnapshotUnderRestartMode(t *testing.T) {
	a, b := member(t), member(t)
	responses := map[cluster.MemberInfo]error{
		a: &jobfail.TerminatedWithSnapshot{},
		b: &jobfail.TerminatedWithSnapshot{},
	}
	mode := termmode.RestartGraceful
	err := classify(responses, planOf(a, b), &mode, false)

	var jtr *jobfail.JobTerminateRequested
	require.ErrorAs(t, err, &jtr)
	require.Equal(t, termmode.RestartGraceful, jtr.Mode)
}

func TestClassify_OnlyTopologyFailuresFallsBackToTopologyChanged(t *testing.T) {
	a, b := member(t), member(t)
	responses := map[cluster.MemberInfo]error{
		a: nil,
		b: &jobfail.MemberLeft{Member: b.UUID.String()},
	}
	err := classify(responses, planOf(a, b), nil, false)
	require.ErrorIs(t, err, jobfail.TopologyChanged)
}

func TestClassify_CancelledFailureAloneFallsBackToTopologyChanged(t *testing.T) {
	a, b := member(t), member(t)
	responses := map[cluster.MemberInfo]error{a: nil, b: jobfail.Cancelled}
	err := classify(responses, planOf(a, b), nil, false)
	require.ErrorIs(t, err, jobfail.TopologyChanged)
}
