package rpc

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/streamforge/jetmaster/internal/cluster"
	"github.com/streamforge/jetmaster/internal/planbuilder"
	"github.com/streamforge/jetmaster/internal/termmode"
)

// ConnPool resolves a cluster member to a live gRPC connection, dialing
// and caching lazily. Production callers wire this to the same
// connection pool the cluster membership service already maintains.
type ConnPool interface {
	Conn(ctx context.Context, member cluster.MemberInfo) (*grpc.ClientConn, error)
}

// grpcInvoker fans every operation out to all participants concurrently
// via golang.org/x/sync/errgroup, using gob-encoded requests over the
// codec registered in codec.go.
type grpcInvoker struct {
	pool ConnPool
}

// NewGRPCInvoker builds an Invoker backed by real gRPC connections.
func NewGRPCInvoker(pool ConnPool) Invoker {
	return &grpcInvoker{pool: pool}
}

func (g *grpcInvoker) invoke(ctx context.Context, member cluster.MemberInfo, method string, req, resp any) error {
	conn, err := g.pool.Conn(ctx, member)
	if err != nil {
		return fmt.Errorf("rpc: dial %s: %w", member.Address, err)
	}
	return conn.Invoke(ctx, "/"+serviceName+"/"+method, req, resp, grpc.CallContentSubtype(codecName))
}

func (g *grpcInvoker) InitExecution(ctx context.Context, jobID string, executionID uint64, membersViewVersion uint64, plans map[cluster.MemberInfo]planbuilder.Plan) map[cluster.MemberInfo]error {
	results := make(map[cluster.MemberInfo]error, len(plans))
	var mu sync.Mutex
	grp, gctx := errgroup.WithContext(ctx)
	for member, plan := range plans {
		member, plan := member, plan
		grp.Go(func() error {
			req := &initExecutionRequest{
				JobID:              jobID,
				ExecutionID:        executionID,
				MembersViewVersion: membersViewVersion,
				SerializedPlan:     plan.SerializedOp,
			}
			resp := new(initExecutionResponse)
			var callErr error
			if err := g.invoke(gctx, member, "InitExecution", req, resp); err != nil {
				callErr = err
			} else {
				callErr = resp.Failure.toError()
			}
			mu.Lock()
			results[member] = callErr
			mu.Unlock()
			return nil // per-member failures are data, not fatal to the fan-out
		})
	}
	_ = grp.Wait()
	return results
}

func (g *grpcInvoker) StartExecution(ctx context.Context, jobID string, executionID uint64, participants []cluster.MemberInfo, onResponse func(cluster.MemberInfo, StartExecutionResult)) map[cluster.MemberInfo]StartExecutionResult {
	results := make(map[cluster.MemberInfo]StartExecutionResult, len(participants))
	var mu sync.Mutex
	grp, gctx := errgroup.WithContext(ctx)
	for _, member := range participants {
		member := member
		grp.Go(func() error {
			req := &startExecutionRequest{JobID: jobID, ExecutionID: executionID}
			resp := new(startExecutionResponse)
			var result StartExecutionResult
			if err := g.invoke(gctx, member, "StartExecution", req, resp); err != nil {
				result = StartExecutionResult{Err: err}
			} else {
				result = StartExecutionResult{Metrics: resp.Metrics.toMetrics(), Err: resp.Failure.toError()}
			}
			mu.Lock()
			results[member] = result
			mu.Unlock()
			if onResponse != nil {
				onResponse(member, result)
			}
			return nil
		})
	}
	_ = grp.Wait()
	return results
}

func (g *grpcInvoker) TerminateExecution(ctx context.Context, jobID string, executionID uint64, mode termmode.Mode, participants []cluster.MemberInfo) map[cluster.MemberInfo]error {
	results := make(map[cluster.MemberInfo]error, len(participants))
	var mu sync.Mutex
	grp, gctx := errgroup.WithContext(ctx)
	for _, member := range participants {
		member := member
		grp.Go(func() error {
			req := &terminateExecutionRequest{JobID: jobID, ExecutionID: executionID, Mode: mode}
			resp := new(terminateExecutionResponse)
			var callErr error
			if err := g.invoke(gctx, member, "TerminateExecution", req, resp); err != nil {
				callErr = err
			} else {
				callErr = resp.Failure.toError()
			}
			mu.Lock()
			results[member] = callErr
			mu.Unlock()
			return nil
		})
	}
	_ = grp.Wait()
	return results
}

func (g *grpcInvoker) GetLocalJobMetrics(ctx context.Context, jobID string, executionID uint64, participants []cluster.MemberInfo) map[cluster.MemberInfo]MetricsResult {
	results := make(map[cluster.MemberInfo]MetricsResult, len(participants))
	var mu sync.Mutex
	grp, gctx := errgroup.WithContext(ctx)
	for _, member := range participants {
		member := member
		grp.Go(func() error {
			req := &getLocalJobMetricsRequest{JobID: jobID, ExecutionID: executionID}
			resp := new(getLocalJobMetricsResponse)
			var result MetricsResult
			if err := g.invoke(gctx, member, "GetLocalJobMetrics", req, resp); err != nil {
				result = MetricsResult{Err: err}
			} else {
				result = MetricsResult{Metrics: resp.Metrics.toMetrics(), Completed: resp.Completed, Err: resp.Failure.toError()}
			}
			mu.Lock()
			results[member] = result
			mu.Unlock()
			return nil
		})
	}
	_ = grp.Wait()
	return results
}
