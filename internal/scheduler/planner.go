package scheduler

import (
	"math"
	"time"

	"github.com/HarvexIO/harvex/internal/inventory"
	"github.com/HarvexIO/harvex/internal/substrate"
)

// Sizer is the slice of the substrate the planner needs: opaque sizing and
// defense-effect math. Everything here is a pure function of target state.
type Sizer interface {
	SizeOperation(kind substrate.OpKind, t inventory.TargetResource, desiredEffect float64) float64
	DefenseDelta(kind substrate.OpKind, threads int, t inventory.TargetResource) float64
}

// ThreadCounts are the four operation sizes of one batch. Prep batches carry
// zero Extract and Depress2.
type ThreadCounts struct {
	Depress1 int `json:"depress1"`
	Amplify  int `json:"amplify"`
	Depress2 int `json:"depress2"`
	Extract  int `json:"extract"`
}

func (tc ThreadCounts) Total() int {
	return tc.Depress1 + tc.Amplify + tc.Depress2 + tc.Extract
}

// Assignment is one placed operation: produced by allocation, consumed by
// the dispatcher.
type Assignment struct {
	Worker     string           `json:"worker"`
	Kind       substrate.OpKind `json:"kind"`
	Threads    int              `json:"threads"`
	StartDelay time.Duration    `json:"startDelay"`
}

// Batch is one planned unit of work against one target. Batches are
// recomputed from observed state every cycle; they carry no identity across
// cycles.
type Batch struct {
	Target      inventory.TargetResource `json:"target"`
	Threads     ThreadCounts             `json:"threads"`
	Timings     Timings                  `json:"timings"`
	Prep        bool                     `json:"prep"`
	Assignments []Assignment             `json:"assignments,omitempty"`
}

// Planner turns one target's observed state into the four thread counts and
// the timing plan of a batch. It never executes anything.
type Planner struct {
	sizer           Sizer
	extractFraction float64
	gap             time.Duration
	buffer          time.Duration
}

func NewPlanner(sizer Sizer, extractFraction float64, gap, buffer time.Duration) *Planner {
	if extractFraction <= 0 || extractFraction >= 1 {
		extractFraction = 0.5
	}
	return &Planner{sizer: sizer, extractFraction: extractFraction, gap: gap, buffer: buffer}
}

// PlanBatch sizes a full 4-stage batch for a ready target:
// extract removes extractFraction of current value, depress1 cancels the
// defense raised by the extract, amplify restores value toward max, and
// depress2 cancels the defense raised by the amplify.
func (p *Planner) PlanBatch(t inventory.TargetResource, now time.Time) Batch {
	extract := clampThreads(p.sizer.SizeOperation(substrate.OpExtract, t, p.extractFraction), 1)
	perDepress := p.sizer.DefenseDelta(substrate.OpDepress, 1, t)
	depress1 := threadsForDelta(p.sizer.DefenseDelta(substrate.OpExtract, extract, t), perDepress)

	// Amplify is sized for the post-extraction deficit. A target whose
	// remaining value rounds to zero amplifies from 1 unit, keeping the
	// multiplier finite.
	post := t.CurrentValue * (1 - p.extractFraction)
	if post < 1 {
		post = 1
	}
	amplify := clampThreads(p.sizer.SizeOperation(substrate.OpAmplify, t, t.MaxValue/post), 1)
	depress2 := threadsForDelta(p.sizer.DefenseDelta(substrate.OpAmplify, amplify, t), perDepress)

	return Batch{
		Target: t,
		Threads: ThreadCounts{
			Depress1: depress1,
			Amplify:  amplify,
			Depress2: depress2,
			Extract:  extract,
		},
		Timings: Schedule(durationsOf(t), now, p.gap, p.buffer),
	}
}

// PlanPrep sizes a 2-stage prep batch: depress1 closes the current defense
// gap and amplify closes the current value gap. No extraction, so no second
// depress.
func (p *Planner) PlanPrep(t inventory.TargetResource, now time.Time) Batch {
	perDepress := p.sizer.DefenseDelta(substrate.OpDepress, 1, t)
	depress1 := threadsForDelta(t.CurrentDefense-t.MinDefense, perDepress)

	cur := t.CurrentValue
	if cur < 1 {
		cur = 1
	}
	var amplify int
	if t.CurrentValue < readyFraction*t.MaxValue {
		amplify = clampThreads(p.sizer.SizeOperation(substrate.OpAmplify, t, t.MaxValue/cur), 1)
	}

	return Batch{
		Target:  t,
		Threads: ThreadCounts{Depress1: depress1, Amplify: amplify},
		Timings: Schedule(durationsOf(t), now, p.gap, p.buffer),
		Prep:    true,
	}
}

const readyFraction = 0.95

func durationsOf(t inventory.TargetResource) Durations {
	return Durations{
		Depress: t.DepressDuration,
		Amplify: t.AmplifyDuration,
		Extract: t.ExtractDuration,
	}
}

// clampThreads turns a sizing result into a usable count. Non-finite values
// (the sizer's "no finite answer" for degenerate targets) clamp to fallback:
// 0 when no work is needed, 1 when at least one unit must make progress.
func clampThreads(v float64, fallback int) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	if v <= 0 {
		return 0
	}
	return int(math.Ceil(v))
}

// threadsForDelta sizes a depress to cancel delta given the per-thread
// reduction.
func threadsForDelta(delta, perThread float64) int {
	if delta <= 0 {
		return 0
	}
	if perThread <= 0 || math.IsNaN(perThread) {
		return 1
	}
	return clampThreads(delta/perThread, 1)
}
