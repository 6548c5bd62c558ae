package main

import (
	"context"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"github.com/streamforge/jetmaster/internal/cluster"
	"github.com/streamforge/jetmaster/internal/config"
	"github.com/streamforge/jetmaster/internal/coordination"
	"github.com/streamforge/jetmaster/internal/events"
	"github.com/streamforge/jetmaster/internal/execsvc"
	"github.com/streamforge/jetmaster/internal/jobstore"
	"github.com/streamforge/jetmaster/internal/master"
	"github.com/streamforge/jetmaster/internal/planbuilder"
	"github.com/streamforge/jetmaster/internal/rpc"
	"github.com/streamforge/jetmaster/internal/snapshot"

	tea "github.com/charmbracelet/bubbletea"
)

// newRunCmd builds the `masterd run` subcommand: it boots the full
// dependency stack (jobstore, cluster membership, snapshot context,
// coordination, execution service, gRPC participant transport), submits a
// small demo pipeline through TryStartJob, and renders a status TUI until
// the job reaches a terminal state.
func (a *app) newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "boot the coordinator and run a demo job to completion",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd.Context())
		},
	}
}

func (a *app) run(ctx context.Context) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	logger := a.logger()

	if err := cfg.EnsureDataDir(); err != nil {
		return err
	}

	store, err := jobstore.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("masterd: open jobstore: %w", err)
	}
	defer store.Close()

	lis, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("masterd: listen %s: %w", cfg.ListenAddr, err)
	}
	local := cluster.MemberInfo{UUID: uuid.New(), Address: lis.Addr().String()}
	clusterSvc := cluster.NewStatic(local, []cluster.MemberInfo{local})

	grpcServer := grpc.NewServer()
	rpc.RegisterParticipantServer(grpcServer, newLocalParticipant())
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("grpc server stopped", "error", err)
		}
	}()
	defer grpcServer.GracefulStop()

	pool := newStaticConnPool()
	defer pool.Close()
	invoker := rpc.NewGRPCInvoker(pool)

	exec := execsvc.New(cfg.MaxConcurrentExecutions)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = exec.Shutdown(shutdownCtx)
	}()

	restartBackoff, err := time.ParseDuration(cfg.RestartBackoff)
	if err != nil {
		return fmt.Errorf("masterd: parse restart_backoff: %w", err)
	}
	coord := coordination.NewDefault(exec, restartBackoff)
	coord.OnComplete(func(jobID string, failure error) {
		logger.Info("job completed", "job_id", jobID, "failure", failure)
	})

	snap := snapshot.NewInMemory()

	bus := events.NewBus()
	bus.Subscribe(events.LogHandler(events.LogConfig{Logger: logger}))

	snapshotInterval, err := time.ParseDuration(cfg.SnapshotInterval)
	if err != nil {
		return fmt.Errorf("masterd: parse snapshot_interval: %w", err)
	}

	serializedDAG, err := encodeDAG(demoDAG())
	if err != nil {
		return fmt.Errorf("masterd: encode demo dag: %w", err)
	}

	deps := master.Deps{
		Cluster:      clusterSvc,
		Invoker:      invoker,
		Store:        store,
		Snapshot:     snap,
		Validator:    snap,
		Coordination: coord,
		Exec:         exec,
		PlanBuilder:  planbuilder.RoundRobin{},
		Bus:          bus,
		DecodeDAG:    decodeDAG,
	}

	jobID := ulid.Make().String()
	job, err := master.New(jobID, serializedDAG, guaranteeFromConfig(cfg.DefaultProcessingGuarantee), cfg.QuorumSize, cfg.AutoscalingEnabled, snapshotInterval, deps)
	if err != nil {
		return fmt.Errorf("masterd: create job: %w", err)
	}

	var nextExecutionID atomic.Uint64
	idGen := func() uint64 { return nextExecutionID.Add(1) }

	go func() {
		if err := job.TryStartJob(ctx, idGen); err != nil {
			logger.Error("job start attempt failed", "job_id", jobID, "error", err)
		}
	}()

	program := tea.NewProgram(newStatusModel(job))
	_, err = program.Run()
	return err
}

func guaranteeFromConfig(g config.ProcessingGuarantee) master.ProcessingGuarantee {
	switch g {
	case config.GuaranteeAtLeastOnce:
		return master.GuaranteeAtLeastOnce
	case config.GuaranteeExactlyOnce:
		return master.GuaranteeExactlyOnce
	default:
		return master.GuaranteeNone
	}
}
