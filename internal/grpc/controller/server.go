//go:build grpcgen

package controller

import (
	"context"
	"log"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"

	harvexpb "github.com/HarvexIO/harvex/api/proto/v1"
	"github.com/HarvexIO/harvex/internal/substrate"
)

// AgentServiceServer is the wire-facing half of the agent link. It translates
// between the pb types and the AgentSubstrate that owns all state.
type AgentServiceServer struct {
	harvexpb.UnimplementedAgentServiceServer
	sub *AgentSubstrate
}

func NewAgentServiceServer(sub *AgentSubstrate) *AgentServiceServer {
	return &AgentServiceServer{sub: sub}
}

func (s *AgentServiceServer) Register(ctx context.Context, req *harvexpb.RegisterRequest) (*harvexpb.RegisterResponse, error) {
	assigned := req.AgentId
	if assigned == "" {
		assigned = req.Hostname
	}
	s.sub.RegisterWorker(assigned, req.TotalCapacity)
	log.Printf("grpc: agent registered id=%s host=%s capacity=%.1f", assigned, req.Hostname, req.TotalCapacity)
	return &harvexpb.RegisterResponse{AssignedId: assigned}, nil
}

func (s *AgentServiceServer) WatchOperations(req *harvexpb.RegisterRequest, stream harvexpb.AgentService_WatchOperationsServer) error {
	workerID := req.AgentId
	if workerID == "" {
		workerID = req.Hostname
	}
	ch, backlog, unsubscribe := s.sub.hub.Subscribe(workerID)
	defer unsubscribe()
	for _, op := range backlog {
		if err := stream.Send(toProto(op)); err != nil {
			return err
		}
	}
	for {
		select {
		case <-stream.Context().Done():
			return stream.Context().Err()
		case op, ok := <-ch:
			if !ok {
				return nil
			}
			if err := stream.Send(toProto(op)); err != nil {
				return err
			}
		}
	}
}

func (s *AgentServiceServer) ReportOperationResult(ctx context.Context, result *harvexpb.OperationResult) (*harvexpb.OperationAck, error) {
	switch result.Status {
	case "running":
		log.Printf("grpc: op %s running", result.Id)
	case "succeeded":
		s.sub.OperationDone(result.Id, false)
		log.Printf("grpc: op %s succeeded yield=%.2f", result.Id, result.Yield)
	case "failed":
		msg := result.Error
		if msg == "" {
			msg = "unknown error"
		}
		s.sub.OperationDone(result.Id, true)
		log.Printf("grpc: op %s failed: %s", result.Id, msg)
	default:
		log.Printf("grpc: op %s unknown status %q", result.Id, result.Status)
	}
	return &harvexpb.OperationAck{Id: result.Id}, nil
}

func toProto(op Operation) *harvexpb.Operation {
	return &harvexpb.Operation{
		Id:           op.Ref,
		WorkerId:     op.Submission.Worker,
		Kind:         toProtoKind(op.Submission.Kind),
		TargetId:     op.Submission.Target,
		Threads:      int32(op.Submission.Threads),
		StartDelayMs: op.Submission.StartDelay.Milliseconds(),
	}
}

func toProtoKind(k substrate.OpKind) harvexpb.OperationKind {
	switch k {
	case substrate.OpDepress:
		return harvexpb.OperationKind_OPERATION_KIND_DEPRESS
	case substrate.OpAmplify:
		return harvexpb.OperationKind_OPERATION_KIND_AMPLIFY
	case substrate.OpExtract:
		return harvexpb.OperationKind_OPERATION_KIND_EXTRACT
	}
	return harvexpb.OperationKind_OPERATION_KIND_UNSPECIFIED
}

// RunTLS serves the agent link with mTLS credentials.
func RunTLS(addr string, svc *AgentServiceServer, creds credentials.TransportCredentials) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv := grpc.NewServer(grpc.Creds(creds))
	harvexpb.RegisterAgentServiceServer(srv, svc)
	log.Printf("grpc: controller (mTLS) listening on %s", addr)
	return srv.Serve(lis)
}

// Run serves the agent link without transport security, for local development.
func Run(addr string, svc *AgentServiceServer) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv := grpc.NewServer()
	harvexpb.RegisterAgentServiceServer(srv, svc)
	log.Printf("grpc: controller listening on %s", addr)
	return srv.Serve(lis)
}
