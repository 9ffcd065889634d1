package inventory

import (
	"time"
)

// WorkerNode is one computing resource in the fleet. Capacity is measured in
// abstract capacity units; Reserved is withheld permanently (host overhead)
// and never planned against.
type WorkerNode struct {
	ID            string  `json:"id"`
	TotalCapacity float64 `json:"totalCapacity"`
	UsedCapacity  float64 `json:"usedCapacity"`
	Reserved      float64 `json:"reserved"`
}

// FreeCapacity is what the allocator may plan against. Never negative even if
// an external actor overcommitted the node between snapshots.
func (w WorkerNode) FreeCapacity() float64 {
	free := w.TotalCapacity - w.UsedCapacity - w.Reserved
	if free < 0 {
		return 0
	}
	return free
}

// TargetResource is one attackable entity with its current observed state and
// the per-operation wall-clock durations the substrate reports for it.
type TargetResource struct {
	ID               string  `json:"id"`
	CurrentValue     float64 `json:"currentValue"`
	MaxValue         float64 `json:"maxValue"`
	CurrentDefense   float64 `json:"currentDefense"`
	MinDefense       float64 `json:"minDefense"`
	EligibilityLevel int     `json:"eligibilityLevel"`
	Controlled       bool    `json:"controlled"`

	DepressDuration time.Duration `json:"depressDuration"`
	AmplifyDuration time.Duration `json:"amplifyDuration"`
	ExtractDuration time.Duration `json:"extractDuration"`
}

// readyValueFraction is the value level at which a target no longer needs an
// amplify-heavy prep pass before extraction is worthwhile.
const readyValueFraction = 0.95

// Ready reports whether the target is in pure-extract shape: value near max
// and defense within tolerance of its floor. Anything else needs prep.
func (t TargetResource) Ready(defenseTolerance float64) bool {
	return t.CurrentValue >= readyValueFraction*t.MaxValue &&
		t.CurrentDefense <= t.MinDefense+defenseTolerance
}

// Snapshot is a point-in-time view of the whole fleet and target set. It is
// immutable for the duration of one planning cycle; the loop takes a fresh one
// every cycle rather than trusting its own bookkeeping across cycles.
type Snapshot struct {
	Workers []WorkerNode     `json:"workers"`
	Targets []TargetResource `json:"targets"`
	TakenAt time.Time        `json:"takenAt"`
}

// TotalFree sums planable capacity across the fleet.
func (s Snapshot) TotalFree() float64 {
	var free float64
	for _, w := range s.Workers {
		free += w.FreeCapacity()
	}
	return free
}

// TotalUsed sums consumed capacity across the fleet.
func (s Snapshot) TotalUsed() float64 {
	var used float64
	for _, w := range s.Workers {
		used += w.UsedCapacity
	}
	return used
}

// TotalCapacity sums raw capacity across the fleet.
func (s Snapshot) TotalCapacity() float64 {
	var total float64
	for _, w := range s.Workers {
		total += w.TotalCapacity
	}
	return total
}
