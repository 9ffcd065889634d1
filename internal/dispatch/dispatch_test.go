package dispatch

import (
	"context"
	"testing"
	"time"

	"github.com/HarvexIO/harvex/internal/inventory"
	"github.com/HarvexIO/harvex/internal/substrate"
)

func fixture() *substrate.Sim {
	return substrate.NewSim(
		[]inventory.WorkerNode{{ID: "w1", TotalCapacity: 64}},
		[]inventory.TargetResource{{
			ID: "t1", CurrentValue: 1000, MaxValue: 1000, MinDefense: 5, CurrentDefense: 5,
			DepressDuration: time.Second, AmplifyDuration: time.Second, ExtractDuration: time.Second,
		}},
	)
}

func TestSubmitCountsAndRegisters(t *testing.T) {
	sim := fixture()
	m := NewManager(sim, time.Second)

	c := m.Submit(context.Background(), []substrate.Submission{
		{Worker: "w1", Kind: substrate.OpDepress, Target: "t1", Threads: 4},
		{Worker: "w1", Kind: substrate.OpExtract, Target: "t1", Threads: 8},
		// Over capacity: 64 total, 21 already held, 30*1.75 does not fit.
		{Worker: "w1", Kind: substrate.OpAmplify, Target: "t1", Threads: 30},
	})

	if c.Submitted != 3 || c.Accepted != 2 || c.Rejected != 1 {
		t.Fatalf("counters = %+v, want 3/2/1", c)
	}
	jobs := m.Jobs()
	if len(jobs) != 2 {
		t.Fatalf("expected 2 registered jobs, got %d", len(jobs))
	}
	for _, j := range jobs {
		if j.ID == "" || j.Ref == "" {
			t.Fatalf("job missing identity: %+v", j)
		}
	}
	if tot := m.Totals(); tot != c {
		t.Fatalf("totals = %+v, want %+v", tot, c)
	}
}

// stalledSubstrate never answers a Submit until the per-submission deadline
// kills it.
type stalledSubstrate struct{}

func (stalledSubstrate) Snapshot(ctx context.Context) (inventory.Snapshot, error) {
	return inventory.Snapshot{}, nil
}

func (stalledSubstrate) SizeOperation(kind substrate.OpKind, t inventory.TargetResource, desiredEffect float64) float64 {
	return 0
}

func (stalledSubstrate) DefenseDelta(kind substrate.OpKind, threads int, t inventory.TargetResource) float64 {
	return 0
}

func (stalledSubstrate) Submit(ctx context.Context, s substrate.Submission) (string, bool, error) {
	<-ctx.Done()
	return "", false, ctx.Err()
}

func (stalledSubstrate) PollRunning(ctx context.Context) ([]substrate.RunningJob, error) {
	return nil, nil
}

func (stalledSubstrate) Cancel(ctx context.Context, ref string) bool { return false }

func TestSubmitTimeoutCountsAsRejected(t *testing.T) {
	m := NewManager(stalledSubstrate{}, 25*time.Millisecond)

	start := time.Now()
	c := m.Submit(context.Background(), []substrate.Submission{
		{Worker: "w1", Kind: substrate.OpDepress, Target: "t1", Threads: 1},
		{Worker: "w1", Kind: substrate.OpExtract, Target: "t1", Threads: 1},
	})
	elapsed := time.Since(start)

	if c.Submitted != 2 || c.Accepted != 0 || c.Rejected != 2 {
		t.Fatalf("counters = %+v, want both submissions rejected on timeout", c)
	}
	if len(m.Jobs()) != 0 {
		t.Fatal("timed-out submission must not be registered")
	}
	// Each submission gets its own deadline; a stuck substrate costs
	// timeout-per-submission, never a hang.
	if elapsed > 2*time.Second {
		t.Fatalf("submit took %v, deadline not enforced", elapsed)
	}
}

func TestSubmitErrorCountsRejected(t *testing.T) {
	sim := fixture()
	m := NewManager(sim, time.Second)

	c := m.Submit(context.Background(), []substrate.Submission{
		{Worker: "nope", Kind: substrate.OpDepress, Target: "t1", Threads: 1},
	})
	if c.Rejected != 1 || c.Accepted != 0 {
		t.Fatalf("counters = %+v, want rejection on unknown worker", c)
	}
	if len(m.Jobs()) != 0 {
		t.Fatal("rejected submission must not be registered")
	}
}

func TestReconcileDropsFinishedJobs(t *testing.T) {
	sim := fixture()
	now := time.Unix(0, 0)
	sim.SetClock(func() time.Time { return now })
	m := NewManager(sim, time.Second)

	m.Submit(context.Background(), []substrate.Submission{
		{Worker: "w1", Kind: substrate.OpDepress, Target: "t1", Threads: 2},
	})
	if len(m.Jobs()) != 1 {
		t.Fatal("expected one registered job")
	}

	now = now.Add(5 * time.Second)
	running, err := sim.PollRunning(context.Background())
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	m.Reconcile(running)
	if len(m.Jobs()) != 0 {
		t.Fatalf("expected registry emptied after completion, got %+v", m.Jobs())
	}
}

func TestCancelAll(t *testing.T) {
	sim := fixture()
	m := NewManager(sim, time.Second)

	m.Submit(context.Background(), []substrate.Submission{
		{Worker: "w1", Kind: substrate.OpDepress, Target: "t1", Threads: 2},
		{Worker: "w1", Kind: substrate.OpAmplify, Target: "t1", Threads: 2},
	})
	if n := m.CancelAll(context.Background()); n != 2 {
		t.Fatalf("canceled %d, want 2", n)
	}
	if len(m.Jobs()) != 0 {
		t.Fatal("registry not cleared after CancelAll")
	}
	running, _ := sim.PollRunning(context.Background())
	if len(running) != 0 {
		t.Fatalf("substrate still running jobs: %+v", running)
	}
}
