package scheduler

import (
	"testing"
	"time"
)

func completions(tm Timings, d Durations, now time.Time) (extract, depress1, amplify, depress2 time.Time) {
	extract = now.Add(tm.ExtractDelay + d.Extract)
	depress1 = now.Add(tm.Depress1Delay + d.Depress)
	amplify = now.Add(tm.AmplifyDelay + d.Amplify)
	depress2 = now.Add(tm.Depress2Delay + d.Depress)
	return
}

func TestScheduleOrderedCompletions(t *testing.T) {
	now := time.Unix(100, 0)
	gap := 200 * time.Millisecond
	buffer := 500 * time.Millisecond
	d := Durations{
		Depress: 8 * time.Second,
		Amplify: 4 * time.Second,
		Extract: 2 * time.Second,
	}

	tm := Schedule(d, now, gap, buffer)

	if want := now.Add(d.Depress + buffer); !tm.Deadline.Equal(want) {
		t.Fatalf("deadline = %v, want %v", tm.Deadline, want)
	}
	// Per the backward solve, depress2 starts exactly buffer after now.
	if tm.Depress2Delay != buffer {
		t.Fatalf("depress2 delay = %v, want %v", tm.Depress2Delay, buffer)
	}

	ce, c1, ca, c2 := completions(tm, d, now)
	if !ce.Before(c1) || !c1.Before(ca) || !ca.Before(c2) {
		t.Fatalf("completions out of order: extract=%v depress1=%v amplify=%v depress2=%v", ce, c1, ca, c2)
	}
	for i, pair := range [][2]time.Time{{ce, c1}, {c1, ca}, {ca, c2}} {
		if got := pair[1].Sub(pair[0]); got != gap {
			t.Fatalf("completion gap %d = %v, want %v", i, got, gap)
		}
	}
	if !c2.Equal(tm.Deadline) {
		t.Fatalf("depress2 completes at %v, want deadline %v", c2, tm.Deadline)
	}
}

func TestScheduleNegativeDelayPushesDeadline(t *testing.T) {
	now := time.Unix(0, 0)
	gap := 200 * time.Millisecond
	buffer := 500 * time.Millisecond
	// Amplify longer than the window it would naturally get.
	d := Durations{
		Depress: 8 * time.Second,
		Amplify: 9 * time.Second,
		Extract: 2 * time.Second,
	}

	tm := Schedule(d, now, gap, buffer)

	if min := minDelay(tm); min != 0 {
		t.Fatalf("expected worst delay clamped to exactly zero, got %v", min)
	}
	// The deadline moved forward by the shortfall: amplify's raw delay was
	// (8s+500ms) - 200ms - 9s = -700ms.
	want := now.Add(8*time.Second + 500*time.Millisecond + 700*time.Millisecond)
	if !tm.Deadline.Equal(want) {
		t.Fatalf("deadline = %v, want %v", tm.Deadline, want)
	}

	// Ordering and spacing survive the shift intact.
	ce, c1, ca, c2 := completions(tm, d, now)
	if !ce.Before(c1) || !c1.Before(ca) || !ca.Before(c2) {
		t.Fatal("completions out of order after shift")
	}
	if got := c2.Sub(ca); got != gap {
		t.Fatalf("gap after shift = %v, want %v", got, gap)
	}
	if !c2.Equal(tm.Deadline) {
		t.Fatalf("depress2 completes at %v, want shifted deadline %v", c2, tm.Deadline)
	}
}

func TestShiftStridesWholeBatch(t *testing.T) {
	now := time.Unix(0, 0)
	d := Durations{Depress: time.Second, Amplify: 500 * time.Millisecond, Extract: 250 * time.Millisecond}
	tm := Schedule(d, now, 50*time.Millisecond, 100*time.Millisecond)

	stride := 3 * time.Second
	shifted := tm.Shift(stride)
	if got := shifted.Deadline.Sub(tm.Deadline); got != stride {
		t.Fatalf("deadline moved %v, want %v", got, stride)
	}
	if got := shifted.ExtractDelay - tm.ExtractDelay; got != stride {
		t.Fatalf("extract delay moved %v, want %v", got, stride)
	}
	if got := shifted.Depress2Delay - tm.Depress2Delay; got != stride {
		t.Fatalf("depress2 delay moved %v, want %v", got, stride)
	}
}
