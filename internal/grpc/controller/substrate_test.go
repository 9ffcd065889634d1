package controller

import (
	"context"
	"testing"
	"time"

	"github.com/HarvexIO/harvex/internal/inventory"
	"github.com/HarvexIO/harvex/internal/substrate"
)

func linkFixture() (*Hub, *AgentSubstrate) {
	hub := NewHub()
	sub := NewAgentSubstrate(hub, []inventory.TargetResource{{
		ID: "t1", Controlled: true, CurrentValue: 1000, MaxValue: 1000,
		CurrentDefense: 5, MinDefense: 5,
		DepressDuration: time.Second, AmplifyDuration: time.Second, ExtractDuration: time.Second,
	}}, 1.75)
	sub.RegisterWorker("w1", 64)
	return hub, sub
}

func TestSubmitEnqueuesToAgentStream(t *testing.T) {
	hub, sub := linkFixture()
	ch, backlog, unsubscribe := hub.Subscribe("w1")
	defer unsubscribe()
	if len(backlog) != 0 {
		t.Fatalf("unexpected backlog: %+v", backlog)
	}

	ref, accepted, err := sub.Submit(context.Background(), substrate.Submission{
		Worker: "w1", Kind: substrate.OpDepress, Target: "t1", Threads: 4, StartDelay: 250 * time.Millisecond,
	})
	if err != nil || !accepted {
		t.Fatalf("submit: accepted=%v err=%v", accepted, err)
	}

	select {
	case op := <-ch:
		if op.Ref != ref || op.Submission.Worker != "w1" || op.Submission.Threads != 4 {
			t.Fatalf("streamed op = %+v, want ref %s on w1 x4", op, ref)
		}
	default:
		t.Fatal("submitted operation never reached the agent stream")
	}

	running, err := sub.PollRunning(context.Background())
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	if len(running) != 1 || running[0].Ref != ref {
		t.Fatalf("running = %+v, want the submitted op", running)
	}
}

func TestSubmitParksUntilAgentConnects(t *testing.T) {
	hub, sub := linkFixture()

	ref, accepted, err := sub.Submit(context.Background(), substrate.Submission{
		Worker: "w1", Kind: substrate.OpExtract, Target: "t1", Threads: 2,
	})
	if err != nil || !accepted {
		t.Fatalf("submit: accepted=%v err=%v", accepted, err)
	}

	_, backlog, unsubscribe := hub.Subscribe("w1")
	defer unsubscribe()
	if len(backlog) != 1 || backlog[0].Ref != ref {
		t.Fatalf("backlog = %+v, want the parked op", backlog)
	}
}

func TestSubmitHoldsCapacityUntilResult(t *testing.T) {
	_, sub := linkFixture()
	ctx := context.Background()

	// 64 capacity at 1.75/thread funds 36 threads; 20 + 20 must not both fit.
	ref, accepted, err := sub.Submit(ctx, substrate.Submission{Worker: "w1", Kind: substrate.OpDepress, Target: "t1", Threads: 20})
	if err != nil || !accepted {
		t.Fatalf("first submit: accepted=%v err=%v", accepted, err)
	}
	if _, accepted, _ := sub.Submit(ctx, substrate.Submission{Worker: "w1", Kind: substrate.OpDepress, Target: "t1", Threads: 20}); accepted {
		t.Fatal("second submit must be rejected while capacity is held")
	}

	sub.OperationDone(ref, false)
	if _, accepted, _ := sub.Submit(ctx, substrate.Submission{Worker: "w1", Kind: substrate.OpDepress, Target: "t1", Threads: 20}); !accepted {
		t.Fatal("capacity not released after reported result")
	}
}

func TestOperationDoneAdvancesTargetView(t *testing.T) {
	_, sub := linkFixture()
	ctx := context.Background()

	ref, accepted, err := sub.Submit(ctx, substrate.Submission{Worker: "w1", Kind: substrate.OpExtract, Target: "t1", Threads: 10})
	if err != nil || !accepted {
		t.Fatalf("submit: accepted=%v err=%v", accepted, err)
	}
	sub.OperationDone(ref, false)

	snap, err := sub.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	// 10 extract threads remove 2% of the 1000 value and raise defense.
	if got := snap.Targets[0].CurrentValue; got != 980 {
		t.Fatalf("value after extract = %v, want 980", got)
	}
	if snap.Targets[0].CurrentDefense <= 5 {
		t.Fatal("defense must rise after extract")
	}

	running, _ := sub.PollRunning(ctx)
	if len(running) != 0 {
		t.Fatalf("settled op still reported running: %+v", running)
	}
}

func TestFailedResultReleasesWithoutEffect(t *testing.T) {
	_, sub := linkFixture()
	ctx := context.Background()

	ref, _, _ := sub.Submit(ctx, substrate.Submission{Worker: "w1", Kind: substrate.OpExtract, Target: "t1", Threads: 10})
	sub.OperationDone(ref, true)

	snap, _ := sub.Snapshot(ctx)
	if snap.Targets[0].CurrentValue != 1000 {
		t.Fatalf("failed op must not change the target, value = %v", snap.Targets[0].CurrentValue)
	}
	if snap.Workers[0].UsedCapacity != 0 {
		t.Fatalf("failed op must release capacity, used = %v", snap.Workers[0].UsedCapacity)
	}
}

func TestCancelDropsTrackingAndIgnoresLateResult(t *testing.T) {
	_, sub := linkFixture()
	ctx := context.Background()

	ref, _, _ := sub.Submit(ctx, substrate.Submission{Worker: "w1", Kind: substrate.OpAmplify, Target: "t1", Threads: 8})
	if !sub.Cancel(ctx, ref) {
		t.Fatal("cancel of tracked op must succeed")
	}
	if sub.Cancel(ctx, ref) {
		t.Fatal("second cancel must report unknown ref")
	}

	before, _ := sub.Snapshot(ctx)
	sub.OperationDone(ref, false) // late arrival from the agent
	after, _ := sub.Snapshot(ctx)
	if before.Targets[0].CurrentDefense != after.Targets[0].CurrentDefense {
		t.Fatal("late result for a canceled ref must be ignored")
	}
}

func TestSubmitRejectsUnknownWorkerAndTarget(t *testing.T) {
	_, sub := linkFixture()
	ctx := context.Background()

	if _, _, err := sub.Submit(ctx, substrate.Submission{Worker: "ghost", Kind: substrate.OpDepress, Target: "t1", Threads: 1}); err == nil {
		t.Fatal("expected error for unknown worker")
	}
	if _, _, err := sub.Submit(ctx, substrate.Submission{Worker: "w1", Kind: substrate.OpDepress, Target: "ghost", Threads: 1}); err == nil {
		t.Fatal("expected error for unknown target")
	}
}

func TestReRegistrationResetsCapacity(t *testing.T) {
	_, sub := linkFixture()
	sub.RegisterWorker("w1", 128)
	snap, _ := sub.Snapshot(context.Background())
	if len(snap.Workers) != 1 || snap.Workers[0].TotalCapacity != 128 {
		t.Fatalf("workers = %+v, want single w1 at 128", snap.Workers)
	}
}
