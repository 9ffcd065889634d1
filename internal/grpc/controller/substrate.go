package controller

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/HarvexIO/harvex/internal/inventory"
	"github.com/HarvexIO/harvex/internal/substrate"
)

// AgentSubstrate is the live execution substrate: Submit hands placed
// operations to the Hub for streaming to the owning agent, and the gRPC
// service feeds registrations and operation results back in. Worker inventory
// comes from agent registration; target inventory is operator-supplied, since
// discovery is out of scope, and is advanced with the shared operation model
// as results arrive.
type AgentSubstrate struct {
	hub           *Hub
	costPerThread float64

	mu      sync.Mutex
	workers map[string]*inventory.WorkerNode
	order   []string
	targets map[string]*inventory.TargetResource
	torder  []string
	jobs    map[string]agentJob
	nextRef int
	now     func() time.Time
}

type agentJob struct {
	sub       substrate.Submission
	startedAt time.Time
}

func NewAgentSubstrate(hub *Hub, targets []inventory.TargetResource, costPerThread float64) *AgentSubstrate {
	if costPerThread <= 0 {
		costPerThread = 1.75
	}
	s := &AgentSubstrate{
		hub:           hub,
		costPerThread: costPerThread,
		workers:       make(map[string]*inventory.WorkerNode),
		targets:       make(map[string]*inventory.TargetResource),
		jobs:          make(map[string]agentJob),
		now:           time.Now,
	}
	for i := range targets {
		t := targets[i]
		s.targets[t.ID] = &t
		s.torder = append(s.torder, t.ID)
	}
	return s
}

// RegisterWorker records (or re-records) a worker that joined the fleet. A
// re-registration resets capacity to what the agent reports.
func (s *AgentSubstrate) RegisterWorker(id string, capacity float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w, ok := s.workers[id]; ok {
		w.TotalCapacity = capacity
		return
	}
	s.workers[id] = &inventory.WorkerNode{ID: id, TotalCapacity: capacity}
	s.order = append(s.order, id)
}

func (s *AgentSubstrate) Snapshot(ctx context.Context) (inventory.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := inventory.Snapshot{}
	for _, id := range s.order {
		snap.Workers = append(snap.Workers, *s.workers[id])
	}
	for _, id := range s.torder {
		snap.Targets = append(snap.Targets, *s.targets[id])
	}
	return snap, nil
}

func (s *AgentSubstrate) SizeOperation(kind substrate.OpKind, t inventory.TargetResource, desiredEffect float64) float64 {
	return substrate.ModelSize(kind, t, desiredEffect)
}

func (s *AgentSubstrate) DefenseDelta(kind substrate.OpKind, threads int, t inventory.TargetResource) float64 {
	return substrate.ModelDefenseDelta(kind, threads)
}

// Submit accounts the operation against the worker's capacity and enqueues it
// for the agent's stream. Capacity is held until the agent reports the
// operation done.
func (s *AgentSubstrate) Submit(ctx context.Context, sub substrate.Submission) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.workers[sub.Worker]
	if !ok {
		return "", false, fmt.Errorf("agent link: unknown worker %q", sub.Worker)
	}
	if _, ok := s.targets[sub.Target]; !ok {
		return "", false, fmt.Errorf("agent link: unknown target %q", sub.Target)
	}
	if sub.Threads <= 0 {
		return "", false, nil
	}
	cost := float64(sub.Threads) * s.costPerThread
	if w.FreeCapacity() < cost {
		return "", false, nil
	}
	w.UsedCapacity += cost

	s.nextRef++
	ref := fmt.Sprintf("op-%d", s.nextRef)
	s.jobs[ref] = agentJob{sub: sub, startedAt: s.now()}
	s.hub.Enqueue(Operation{Ref: ref, Submission: sub})
	return ref, true, nil
}

func (s *AgentSubstrate) PollRunning(ctx context.Context) ([]substrate.RunningJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []substrate.RunningJob
	for ref, j := range s.jobs {
		out = append(out, substrate.RunningJob{
			Ref:     ref,
			Worker:  j.sub.Worker,
			Kind:    j.sub.Kind,
			Target:  j.sub.Target,
			Threads: j.sub.Threads,
		})
	}
	return out, nil
}

// Cancel drops the controller's tracking of the job and releases its
// capacity. The agent link carries no cancel RPC, so the agent may still run
// the operation to completion; a late result for a dropped ref is ignored.
func (s *AgentSubstrate) Cancel(ctx context.Context, ref string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[ref]
	if !ok {
		return false
	}
	s.releaseLocked(j)
	delete(s.jobs, ref)
	return true
}

// OperationDone settles a result reported by the agent: capacity is released
// and, on success, the target view advances by the operation model.
func (s *AgentSubstrate) OperationDone(ref string, failed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[ref]
	if !ok {
		return
	}
	s.releaseLocked(j)
	delete(s.jobs, ref)
	if failed {
		log.Printf("agent link: op %s failed on %s", ref, j.sub.Worker)
		return
	}
	if t, ok := s.targets[j.sub.Target]; ok {
		substrate.ApplyModelEffect(t, j.sub.Kind, j.sub.Threads)
	}
}

func (s *AgentSubstrate) releaseLocked(j agentJob) {
	if w, ok := s.workers[j.sub.Worker]; ok {
		w.UsedCapacity -= float64(j.sub.Threads) * s.costPerThread
		if w.UsedCapacity < 0 {
			w.UsedCapacity = 0
		}
	}
}
