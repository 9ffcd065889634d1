package substrate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/HarvexIO/harvex/internal/inventory"
)

// Sim is a deterministic in-memory substrate used by tests and by the
// controller's --sim mode. Operations consume worker capacity on submit,
// complete by wall clock, and apply simplified effects to target state.
type Sim struct {
	mu      sync.Mutex
	workers map[string]*inventory.WorkerNode
	order   []string
	targets map[string]*inventory.TargetResource
	torder  []string
	jobs    map[string]*simJob
	nextRef int
	now     func() time.Time

	// CostPerThread is the capacity one thread consumes while running.
	CostPerThread float64
}

type simJob struct {
	sub     Submission
	startAt time.Time
	doneAt  time.Time
	cost    float64
}

func NewSim(workers []inventory.WorkerNode, targets []inventory.TargetResource) *Sim {
	s := &Sim{
		workers:       make(map[string]*inventory.WorkerNode),
		targets:       make(map[string]*inventory.TargetResource),
		jobs:          make(map[string]*simJob),
		now:           time.Now,
		CostPerThread: 1.75,
	}
	for i := range workers {
		w := workers[i]
		s.workers[w.ID] = &w
		s.order = append(s.order, w.ID)
	}
	for i := range targets {
		t := targets[i]
		s.targets[t.ID] = &t
		s.torder = append(s.torder, t.ID)
	}
	return s
}

// SetClock replaces the wall clock, letting tests drive completion.
func (s *Sim) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Sim) Snapshot(ctx context.Context) (inventory.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reapLocked()
	snap := inventory.Snapshot{}
	for _, id := range s.order {
		snap.Workers = append(snap.Workers, *s.workers[id])
	}
	for _, id := range s.torder {
		snap.Targets = append(snap.Targets, *s.targets[id])
	}
	return snap, nil
}

func (s *Sim) SizeOperation(kind OpKind, t inventory.TargetResource, desiredEffect float64) float64 {
	return ModelSize(kind, t, desiredEffect)
}

func (s *Sim) DefenseDelta(kind OpKind, threads int, t inventory.TargetResource) float64 {
	return ModelDefenseDelta(kind, threads)
}

func (s *Sim) Submit(ctx context.Context, sub Submission) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reapLocked()

	w, ok := s.workers[sub.Worker]
	if !ok {
		return "", false, fmt.Errorf("sim: unknown worker %q", sub.Worker)
	}
	if _, ok := s.targets[sub.Target]; !ok {
		return "", false, fmt.Errorf("sim: unknown target %q", sub.Target)
	}
	if sub.Threads <= 0 {
		return "", false, nil
	}
	cost := float64(sub.Threads) * s.CostPerThread
	if w.FreeCapacity() < cost {
		return "", false, nil
	}
	w.UsedCapacity += cost

	now := s.now()
	s.nextRef++
	ref := fmt.Sprintf("sim-%d", s.nextRef)
	s.jobs[ref] = &simJob{
		sub:     sub,
		startAt: now.Add(sub.StartDelay),
		doneAt:  now.Add(sub.StartDelay + s.duration(sub)),
		cost:    cost,
	}
	return ref, true, nil
}

func (s *Sim) PollRunning(ctx context.Context) ([]RunningJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reapLocked()
	now := s.now()
	var out []RunningJob
	for ref, j := range s.jobs {
		out = append(out, RunningJob{
			Ref:       ref,
			Worker:    j.sub.Worker,
			Kind:      j.sub.Kind,
			Target:    j.sub.Target,
			Threads:   j.sub.Threads,
			Remaining: j.doneAt.Sub(now),
		})
	}
	return out, nil
}

func (s *Sim) Cancel(ctx context.Context, ref string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[ref]
	if !ok {
		return false
	}
	s.release(j)
	delete(s.jobs, ref)
	return true
}

func (s *Sim) duration(sub Submission) time.Duration {
	t := s.targets[sub.Target]
	switch sub.Kind {
	case OpDepress:
		return t.DepressDuration
	case OpAmplify:
		return t.AmplifyDuration
	default:
		return t.ExtractDuration
	}
}

// reapLocked completes finished jobs: releases capacity and applies the
// operation's effect to the target.
func (s *Sim) reapLocked() {
	now := s.now()
	for ref, j := range s.jobs {
		if j.doneAt.After(now) {
			continue
		}
		s.release(j)
		s.apply(j)
		delete(s.jobs, ref)
	}
}

func (s *Sim) release(j *simJob) {
	if w, ok := s.workers[j.sub.Worker]; ok {
		w.UsedCapacity -= j.cost
		if w.UsedCapacity < 0 {
			w.UsedCapacity = 0
		}
	}
}

func (s *Sim) apply(j *simJob) {
	t, ok := s.targets[j.sub.Target]
	if !ok {
		return
	}
	ApplyModelEffect(t, j.sub.Kind, j.sub.Threads)
}
