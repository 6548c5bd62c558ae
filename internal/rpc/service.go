package rpc

import (
	"context"

	"google.golang.org/grpc"

	"github.com/streamforge/jetmaster/internal/metrics"
)

// ParticipantServer is the contract a cluster member's per-node execution
// engine implements to receive the four operations in spec.md §6. The
// engine itself is out of scope here; this interface is the seam between
// this repository and that (unimplemented) engine. It is expressed in
// terms of internal/metrics' public RawJobMetrics rather than this
// package's private wire types, so implementations can live in any
// package.
type ParticipantServer interface {
	InitExecution(ctx context.Context, jobID string, executionID uint64, membersViewVersion uint64, serializedPlan []byte) error
	StartExecution(ctx context.Context, jobID string, executionID uint64) (*metrics.RawJobMetrics, error)
	TerminateExecution(ctx context.Context, jobID string, executionID uint64, modeName string) error
	GetLocalJobMetrics(ctx context.Context, jobID string, executionID uint64) (*metrics.RawJobMetrics, bool, error)
}

const serviceName = "jetmaster.rpc.Participant"

// RegisterParticipantServer wires srv into s the way a protoc-generated
// _grpc.pb.go would, but by hand: spec.md treats the RPC invocation
// primitive as an external collaborator, and no protoc toolchain runs in
// this exercise (see DESIGN.md), so the ServiceDesc below is authored
// directly against grpc-go's low-level registration API.
func RegisterParticipantServer(s *grpc.Server, srv ParticipantServer) {
	s.RegisterService(&serviceDesc, srv)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*ParticipantServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "InitExecution", Handler: initExecutionHandler},
		{MethodName: "StartExecution", Handler: startExecutionHandler},
		{MethodName: "TerminateExecution", Handler: terminateExecutionHandler},
		{MethodName: "GetLocalJobMetrics", Handler: getLocalJobMetricsHandler},
	},
}

func initExecutionHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	req := new(initExecutionRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	handler := func(ctx context.Context, req any) (any, error) {
		r := req.(*initExecutionRequest)
		s := srv.(ParticipantServer)
		err := s.InitExecution(ctx, r.JobID, r.ExecutionID, r.MembersViewVersion, r.SerializedPlan)
		return &initExecutionResponse{Failure: toWireFailure(err)}, nil
	}
	if interceptor == nil {
		return handler(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/InitExecution"}
	return interceptor(ctx, req, info, handler)
}

func startExecutionHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	req := new(startExecutionRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	handler := func(ctx context.Context, req any) (any, error) {
		r := req.(*startExecutionRequest)
		s := srv.(ParticipantServer)
		m, err := s.StartExecution(ctx, r.JobID, r.ExecutionID)
		return &startExecutionResponse{Metrics: toWireMetrics(m), Failure: toWireFailure(err)}, nil
	}
	if interceptor == nil {
		return handler(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/StartExecution"}
	return interceptor(ctx, req, info, handler)
}

func terminateExecutionHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	req := new(terminateExecutionRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	handler := func(ctx context.Context, req any) (any, error) {
		r := req.(*terminateExecutionRequest)
		s := srv.(ParticipantServer)
		err := s.TerminateExecution(ctx, r.JobID, r.ExecutionID, r.Mode.Name())
		return &terminateExecutionResponse{Failure: toWireFailure(err)}, nil
	}
	if interceptor == nil {
		return handler(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/TerminateExecution"}
	return interceptor(ctx, req, info, handler)
}

func getLocalJobMetricsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	req := new(getLocalJobMetricsRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	handler := func(ctx context.Context, req any) (any, error) {
		r := req.(*getLocalJobMetricsRequest)
		s := srv.(ParticipantServer)
		m, completed, err := s.GetLocalJobMetrics(ctx, r.JobID, r.ExecutionID)
		return &getLocalJobMetricsResponse{Metrics: toWireMetrics(m), Completed: completed, Failure: toWireFailure(err)}, nil
	}
	if interceptor == nil {
		return handler(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/GetLocalJobMetrics"}
	return interceptor(ctx, req, info, handler)
}
