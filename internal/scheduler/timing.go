package scheduler

import (
	"time"
)

// Durations are the per-operation wall-clock durations for one target. The
// depress kind is the slowest of the three; the convergence window is sized
// off it.
type Durations struct {
	Depress time.Duration
	Amplify time.Duration
	Extract time.Duration
}

// Timings holds the convergence deadline for one batch and the start delay
// for each of its four operations. Ordering within a batch is enforced purely
// by these delays: all four operations are submitted together and elapsed
// wall-clock time does the sequencing.
type Timings struct {
	Deadline time.Time `json:"deadline"`

	ExtractDelay  time.Duration `json:"extractDelay"`
	Depress1Delay time.Duration `json:"depress1Delay"`
	AmplifyDelay  time.Duration `json:"amplifyDelay"`
	Depress2Delay time.Duration `json:"depress2Delay"`
}

// Schedule back-solves start delays so the four operations complete in the
// mandated order, each gap apart, counting back from the deadline:
//
//	extract  finishes at deadline - 3*gap
//	depress1 finishes at deadline - 2*gap
//	amplify  finishes at deadline - 1*gap
//	depress2 finishes at deadline
//
// Extract raises defense, so depress1 must land after it; amplify raises
// defense again, so depress2 lands last. If any back-solved delay is
// negative (an operation's natural duration exceeds its slot), the whole
// train is pushed forward by the worst shortfall: every delay and the
// deadline shift together, preserving order and gaps.
func Schedule(d Durations, now time.Time, gap, buffer time.Duration) Timings {
	window := d.Depress + buffer

	tm := Timings{
		Deadline:      now.Add(window),
		ExtractDelay:  window - 3*gap - d.Extract,
		Depress1Delay: window - 2*gap - d.Depress,
		AmplifyDelay:  window - gap - d.Amplify,
		Depress2Delay: window - d.Depress,
	}

	shortfall := minDelay(tm)
	if shortfall < 0 {
		tm = tm.Shift(-shortfall)
	}
	return tm
}

// Shift moves the entire batch later by d: deadline and every start delay.
// Used both for negative-delay normalization and for striding repeated
// batches against the same target.
func (tm Timings) Shift(d time.Duration) Timings {
	tm.Deadline = tm.Deadline.Add(d)
	tm.ExtractDelay += d
	tm.Depress1Delay += d
	tm.AmplifyDelay += d
	tm.Depress2Delay += d
	return tm
}

func minDelay(tm Timings) time.Duration {
	min := tm.ExtractDelay
	for _, d := range []time.Duration{tm.Depress1Delay, tm.AmplifyDelay, tm.Depress2Delay} {
		if d < min {
			min = d
		}
	}
	return min
}
