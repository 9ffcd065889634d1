package substrate

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/HarvexIO/harvex/internal/inventory"
)

func simFixture() *Sim {
	workers := []inventory.WorkerNode{
		{ID: "w1", TotalCapacity: 64, Reserved: 4},
		{ID: "w2", TotalCapacity: 32},
	}
	targets := []inventory.TargetResource{
		{
			ID: "t1", CurrentValue: 1000, MaxValue: 1000,
			CurrentDefense: 5, MinDefense: 5, EligibilityLevel: 1, Controlled: true,
			DepressDuration: 8 * time.Second, AmplifyDuration: 4 * time.Second, ExtractDuration: 2 * time.Second,
		},
	}
	return NewSim(workers, targets)
}

func TestSimSubmitConsumesAndReleasesCapacity(t *testing.T) {
	s := simFixture()
	now := time.Unix(0, 0)
	s.SetClock(func() time.Time { return now })
	ctx := context.Background()

	ref, accepted, err := s.Submit(ctx, Submission{Worker: "w1", Kind: OpExtract, Target: "t1", Threads: 10})
	if err != nil || !accepted {
		t.Fatalf("submit: accepted=%v err=%v", accepted, err)
	}
	if ref == "" {
		t.Fatal("expected job ref")
	}

	snap, _ := s.Snapshot(ctx)
	if got := snap.Workers[0].UsedCapacity; got != 17.5 {
		t.Fatalf("expected 10*1.75 capacity used, got %v", got)
	}
	running, _ := s.PollRunning(ctx)
	if len(running) != 1 || running[0].Ref != ref {
		t.Fatalf("unexpected running jobs: %+v", running)
	}

	// Advance past completion: capacity released, job gone.
	now = now.Add(10 * time.Second)
	running, _ = s.PollRunning(ctx)
	if len(running) != 0 {
		t.Fatalf("expected no running jobs, got %+v", running)
	}
	snap, _ = s.Snapshot(ctx)
	if got := snap.Workers[0].UsedCapacity; got != 0 {
		t.Fatalf("expected capacity released, got %v", got)
	}
	if snap.Targets[0].CurrentValue >= 1000 {
		t.Fatalf("expected extract to remove value, got %v", snap.Targets[0].CurrentValue)
	}
	if snap.Targets[0].CurrentDefense <= 5 {
		t.Fatalf("expected extract to raise defense, got %v", snap.Targets[0].CurrentDefense)
	}
}

func TestSimRejectsWhenFull(t *testing.T) {
	s := simFixture()
	ctx := context.Background()
	// w2 has 32 free; 19 threads at 1.75 = 33.25 exceeds it.
	_, accepted, err := s.Submit(ctx, Submission{Worker: "w2", Kind: OpDepress, Target: "t1", Threads: 19})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if accepted {
		t.Fatal("expected rejection on insufficient capacity")
	}
}

func TestSimCancelReleasesCapacity(t *testing.T) {
	s := simFixture()
	now := time.Unix(0, 0)
	s.SetClock(func() time.Time { return now })
	ctx := context.Background()

	ref, accepted, _ := s.Submit(ctx, Submission{Worker: "w1", Kind: OpDepress, Target: "t1", Threads: 4})
	if !accepted {
		t.Fatal("expected accept")
	}
	if !s.Cancel(ctx, ref) {
		t.Fatal("expected cancel to succeed")
	}
	if s.Cancel(ctx, ref) {
		t.Fatal("expected second cancel to report unknown ref")
	}
	snap, _ := s.Snapshot(ctx)
	if got := snap.Workers[0].UsedCapacity; got != 0 {
		t.Fatalf("expected capacity released after cancel, got %v", got)
	}
}

func TestSimSizingDegenerateInputs(t *testing.T) {
	s := simFixture()
	drained := inventory.TargetResource{ID: "x", CurrentValue: 0, MaxValue: 100}
	if got := s.SizeOperation(OpExtract, drained, 0.5); !math.IsInf(got, 1) {
		t.Fatalf("expected +Inf sizing extract from zero value, got %v", got)
	}
	if got := s.SizeOperation(OpAmplify, drained, 0.9); got != 0 {
		t.Fatalf("expected 0 threads for multiplier <= 1, got %v", got)
	}
}
