package master

import (
	"context"
	"errors"
	"time"

	"github.com/streamforge/jetmaster/internal/cluster"
	"github.com/streamforge/jetmaster/internal/metrics"
	"github.com/streamforge/jetmaster/internal/rpc"
)

const metricsRetryDelay = 100 * time.Millisecond

// CollectMetrics implements the Metrics Aggregator (C7, spec.md §4.7).
// onComplete runs exactly once: immediately with the cached view if the
// job isn't RUNNING, or after fanning GetLocalJobMetrics out to every
// participant and resolving the race against in-flight StartExecution
// completions (P7/P8).
func (j *Job) CollectMetrics(ctx context.Context, onComplete func(metrics.JobMetrics, error)) {
	j.mu.Lock()
	status := j.status
	cached := j.jobMetricsValue
	j.mu.Unlock()

	if status != StatusRunning {
		onComplete(cached, nil)
		return
	}

	j.collectMetricsOnce(ctx, onComplete)
}

func (j *Job) collectMetricsOnce(ctx context.Context, onComplete func(metrics.JobMetrics, error)) {
	j.mu.Lock()
	jobID := j.jobID
	executionID := j.executionID
	participants := j.participantList()
	j.mu.Unlock()

	responses := j.deps.Invoker.GetLocalJobMetrics(ctx, jobID, executionID, participants)

	fresh := make(map[cluster.MemberInfo]*metrics.RawJobMetrics, len(responses))
	completed := make(map[cluster.MemberInfo]bool, len(responses))
	for member, result := range responses {
		if result.Err != nil {
			var notFound *rpc.ExecutionNotFound
			if errors.As(result.Err, &notFound) {
				j.deps.Exec.Schedule(metricsRetryDelay, func(ctx context.Context) {
					j.collectMetricsOnce(ctx, onComplete)
				})
				return
			}
			onComplete(metrics.JobMetrics{}, result.Err)
			return
		}
		if result.Completed {
			completed[member] = true
			continue
		}
		fresh[member] = result.Metrics
	}

	j.mu.Lock()
	partial := cloneRawMetricsMap(j.partialMetrics)
	j.mu.Unlock()

	merged, ok := metrics.MergePartial(fresh, completed, partial)
	if !ok {
		// A member reported EXECUTION_COMPLETED but the completion
		// callback hasn't recorded its partial metrics yet (P8): retry
		// instead of answering with a view missing that member.
		j.deps.Exec.Schedule(metricsRetryDelay, func(ctx context.Context) {
			j.collectMetricsOnce(ctx, onComplete)
		})
		return
	}

	onComplete(merged, nil)
}

func cloneRawMetricsMap(m map[cluster.MemberInfo]*metrics.RawJobMetrics) map[cluster.MemberInfo]*metrics.RawJobMetrics {
	out := make(map[cluster.MemberInfo]*metrics.RawJobMetrics, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
