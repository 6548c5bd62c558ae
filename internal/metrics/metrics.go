// Package metrics implements the per-member raw metrics model and the
// associative, commutative merge used to build a job-level metrics view
// (spec.md C7, P7).
package metrics

import (
	"fmt"
	"sort"
	"time"

	"github.com/streamforge/jetmaster/internal/cluster"
)

// NamedValue is one (name, value) pair within a RawJobMetrics snapshot.
type NamedValue struct {
	Name  string
	Value float64
}

// RawJobMetrics is the per-member metrics snapshot a participant returns
// from GetLocalJobMetrics / the StartExecution completion tuple.
type RawJobMetrics struct {
	Timestamp time.Time
	Values    []NamedValue
}

// JobMetrics is the merged, member-prefixed job-level view.
type JobMetrics struct {
	Values []NamedValue
}

// Prefix returns name prefixed with the member's identity, matching the
// spec's "prefix metric names with the member prefix" step.
func Prefix(m cluster.MemberInfo, name string) string {
	return fmt.Sprintf("member=%s.%s", m.UUID.String(), name)
}

// Merge combines per-member raw metrics into a job-level view. responses
// is keyed by member; a nil entry is treated as "no metrics available for
// this member yet" and simply contributes nothing. Merge is associative
// and commutative: iteration order of responses never affects the
// output multiset, because every (member, name, value) tuple is carried
// through independently and only sorted by name for presentation. Each
// RawJobMetrics' Timestamp is not carried into the merged view.
func Merge(responses map[cluster.MemberInfo]*RawJobMetrics) JobMetrics {
	var out []NamedValue
	for member, raw := range responses {
		if raw == nil {
			continue
		}
		for _, v := range raw.Values {
			out = append(out, NamedValue{Name: Prefix(member, v.Name), Value: v.Value})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return JobMetrics{Values: out}
}

// MergePartial implements the spec's merge(responses, partial) used by
// the metrics aggregator (C7): completed is the set of members whose
// GetLocalJobMetrics reply was the EXECUTION_COMPLETED sentinel, to be
// answered from partial instead. If any completed member lacks a partial
// entry, MergePartial returns (JobMetrics{}, false) and the caller must
// retry rather than complete the client's future (P8).
func MergePartial(fresh map[cluster.MemberInfo]*RawJobMetrics, completed map[cluster.MemberInfo]bool, partial map[cluster.MemberInfo]*RawJobMetrics) (JobMetrics, bool) {
	combined := make(map[cluster.MemberInfo]*RawJobMetrics, len(fresh))
	for m, r := range fresh {
		combined[m] = r
	}
	for m, isCompleted := range completed {
		if !isCompleted {
			continue
		}
		p, ok := partial[m]
		if !ok {
			return JobMetrics{}, false
		}
		combined[m] = p
	}
	return Merge(combined), true
}
