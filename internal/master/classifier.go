package master

import (
	"github.com/streamforge/jetmaster/internal/cluster"
	"github.com/streamforge/jetmaster/internal/jobfail"
	"github.com/streamforge/jetmaster/internal/planbuilder"
	"github.com/streamforge/jetmaster/internal/termmode"
)

// classify implements the Result Classifier (C5, spec.md §4.5, P6): a
// pure function over one invocation group's responses, so it is fully
// testable without a Job. plan supplies the denominator for "every
// participant succeeded" — a departed participant shows up as a failure
// response in responses, not as a missing key, so len(plan) (not
// len(responses)) is the right count to compare against.
func classify(responses map[cluster.MemberInfo]error, plan map[cluster.MemberInfo]planbuilder.Plan, requestedMode *termmode.Mode, wasForcefulCancel bool) error {
	if wasForcefulCancel {
		return jobfail.Cancelled
	}

	var failures []error
	successes := 0
	for _, err := range responses {
		if err == nil {
			successes++
			continue
		}
		failures = append(failures, err)
	}

	if successes == len(plan) {
		return nil
	}

	if len(failures) > 0 && allTerminatedWithSnapshot(failures) {
		mode := termmode.CancelGraceful
		if requestedMode != nil {
			mode = *requestedMode
		}
		if mode == termmode.CancelGraceful {
			return jobfail.Cancelled
		}
		return &jobfail.JobTerminateRequested{Mode: mode}
	}

	for _, err := range failures {
		if err == jobfail.Cancelled {
			continue
		}
		if _, ok := err.(*jobfail.TerminatedWithSnapshot); ok {
			continue
		}
		if jobfail.IsTopology(err) {
			continue
		}
		return jobfail.Peel(err)
	}

	return jobfail.TopologyChanged
}

func allTerminatedWithSnapshot(failures []error) bool {
	for _, err := range failures {
		if _, ok := err.(*jobfail.TerminatedWithSnapshot); !ok {
			return false
		}
	}
	return true
}
