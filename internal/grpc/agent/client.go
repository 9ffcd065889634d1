//go:build grpcgen

// Package agent is the worker-side gRPC client: it registers with the
// controller, streams the operations placed on its worker, runs them through
// the local runner, and reports results. Build with -tags=grpcgen after
// generating the pb package from api/proto/v1.
package agent

import (
	"context"
	"log"
	"time"

	"google.golang.org/grpc"

	harvexpb "github.com/HarvexIO/harvex/api/proto/v1"
)

// Runner executes one operation locally and returns the yield (zero for
// depress and amplify).
type Runner interface {
	Run(ctx context.Context, op *harvexpb.Operation) (yield float64, err error)
}

// Run connects to the controller and processes operations until the stream or
// context ends. Dial options default to insecure for local development; pass
// grpc.WithTransportCredentials for the mTLS link.
func Run(ctx context.Context, addr, agentID, hostname string, capacity float64, runner Runner, dialOpts ...grpc.DialOption) error {
	if len(dialOpts) == 0 {
		dialOpts = []grpc.DialOption{grpc.WithInsecure()}
	}
	conn, err := grpc.DialContext(ctx, addr, append(dialOpts, grpc.WithBlock())...)
	if err != nil {
		return err
	}
	defer conn.Close()
	cli := harvexpb.NewAgentServiceClient(conn)

	reg := &harvexpb.RegisterRequest{AgentId: agentID, Hostname: hostname, TotalCapacity: capacity}
	if _, err := cli.Register(ctx, reg); err != nil {
		return err
	}
	log.Printf("agent registered id=%s host=%s", agentID, hostname)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stream, err := cli.WatchOperations(ctx, reg)
	if err != nil {
		return err
	}
	for {
		op, err := stream.Recv()
		if err != nil {
			return err
		}
		go execute(ctx, cli, op, runner)
	}
}

func execute(ctx context.Context, cli harvexpb.AgentServiceClient, op *harvexpb.Operation, runner Runner) {
	log.Printf("agent: op %s %s x%d target=%s delay=%dms",
		op.Id, op.Kind, op.Threads, op.TargetId, op.StartDelayMs)
	if op.StartDelayMs > 0 {
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Duration(op.StartDelayMs) * time.Millisecond):
		}
	}
	_, _ = cli.ReportOperationResult(ctx, &harvexpb.OperationResult{Id: op.Id, Status: "running"})
	yield, err := runner.Run(ctx, op)
	if err != nil {
		_, _ = cli.ReportOperationResult(ctx, &harvexpb.OperationResult{Id: op.Id, Status: "failed", Error: err.Error()})
		return
	}
	_, _ = cli.ReportOperationResult(ctx, &harvexpb.OperationResult{Id: op.Id, Status: "succeeded", Yield: yield})
}
