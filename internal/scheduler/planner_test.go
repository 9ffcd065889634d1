package scheduler

import (
	"math"
	"testing"
	"time"

	"github.com/HarvexIO/harvex/internal/inventory"
	"github.com/HarvexIO/harvex/internal/substrate"
)

func plannerFixture() (*Planner, inventory.TargetResource) {
	target := inventory.TargetResource{
		ID: "t1", CurrentValue: 1000, MaxValue: 1000,
		CurrentDefense: 5, MinDefense: 5, EligibilityLevel: 1, Controlled: true,
		DepressDuration: 8 * time.Second, AmplifyDuration: 4 * time.Second, ExtractDuration: 2 * time.Second,
	}
	sim := substrate.NewSim(nil, []inventory.TargetResource{target})
	return NewPlanner(sim, 0.5, 200*time.Millisecond, 500*time.Millisecond), target
}

func TestPlanBatchSizesAllFourStages(t *testing.T) {
	p, target := plannerFixture()
	now := time.Unix(0, 0)

	b := p.PlanBatch(target, now)
	if b.Prep {
		t.Fatal("full batch marked prep")
	}
	// Half of current value at the sim's 0.002/thread extraction rate.
	if b.Threads.Extract != 250 {
		t.Fatalf("extract = %d, want 250", b.Threads.Extract)
	}
	// Depress1 cancels the extract's defense raise (250*0.002 over 0.05/thread).
	if b.Threads.Depress1 != 10 {
		t.Fatalf("depress1 = %d, want 10", b.Threads.Depress1)
	}
	if b.Threads.Amplify == 0 {
		t.Fatal("expected amplify threads to restore the extracted half")
	}
	if b.Threads.Depress2 == 0 {
		t.Fatal("expected depress2 threads to cancel the amplify's defense raise")
	}
	if !b.Timings.Deadline.Equal(now.Add(8*time.Second + 500*time.Millisecond)) {
		t.Fatalf("unexpected deadline %v", b.Timings.Deadline)
	}
}

func TestPlanBatchClampsDegenerateSizing(t *testing.T) {
	p, target := plannerFixture()
	target.CurrentValue = 0 // sim sizes extraction from zero value as +Inf

	b := p.PlanBatch(target, time.Unix(0, 0))
	if b.Threads.Extract != 1 {
		t.Fatalf("extract = %d, want clamp to 1", b.Threads.Extract)
	}
}

func TestPlanPrepClosesBothGaps(t *testing.T) {
	p, target := plannerFixture()
	target.CurrentDefense = 10 // 5 above floor
	target.CurrentValue = 400

	b := p.PlanPrep(target, time.Unix(0, 0))
	if !b.Prep {
		t.Fatal("prep batch not marked prep")
	}
	// 5 defense over 0.05/thread.
	if b.Threads.Depress1 != 100 {
		t.Fatalf("depress1 = %d, want 100", b.Threads.Depress1)
	}
	if b.Threads.Amplify == 0 {
		t.Fatal("expected amplify threads for the value gap")
	}
	if b.Threads.Extract != 0 || b.Threads.Depress2 != 0 {
		t.Fatalf("prep batch must not extract: %+v", b.Threads)
	}
}

func TestPlanPrepNoWorkNeeded(t *testing.T) {
	p, target := plannerFixture()
	// Already at floor defense and full value: nothing to do.
	b := p.PlanPrep(target, time.Unix(0, 0))
	if b.Threads.Total() != 0 {
		t.Fatalf("expected empty prep plan, got %+v", b.Threads)
	}
}

func TestClampThreads(t *testing.T) {
	cases := []struct {
		v        float64
		fallback int
		want     int
	}{
		{2.1, 1, 3},
		{0, 1, 0},
		{-4, 1, 0},
		{math.Inf(1), 1, 1},
		{math.Inf(1), 0, 0},
		{math.NaN(), 1, 1},
	}
	for _, c := range cases {
		if got := clampThreads(c.v, c.fallback); got != c.want {
			t.Fatalf("clampThreads(%v, %d) = %d, want %d", c.v, c.fallback, got, c.want)
		}
	}
}
