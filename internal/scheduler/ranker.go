package scheduler

import (
	"math"
	"sort"

	"github.com/HarvexIO/harvex/internal/inventory"
)

// Rank filters the target inventory down to eligible, worthwhile candidates
// and splits them into ready targets (full 4-stage batches) and needs-prep
// targets (depress/amplify only). Ready targets are ordered by extractable
// value per unit of the bottleneck depress duration, best first; ties break
// on id so identical snapshots rank identically every cycle.
func Rank(targets []inventory.TargetResource, eligibility int, defenseTolerance float64) (ready, needsPrep []inventory.TargetResource) {
	for _, t := range targets {
		if !t.Controlled || t.MaxValue <= 0 || t.EligibilityLevel > eligibility {
			continue
		}
		if t.Ready(defenseTolerance) {
			ready = append(ready, t)
		} else {
			needsPrep = append(needsPrep, t)
		}
	}
	sortByScore(ready)
	sortByScore(needsPrep)
	return ready, needsPrep
}

// score is a throughput heuristic: value obtainable per second of the
// slowest operation.
func score(t inventory.TargetResource) float64 {
	secs := t.DepressDuration.Seconds()
	if secs <= 0 {
		return math.Inf(1)
	}
	return t.MaxValue / secs
}

func sortByScore(ts []inventory.TargetResource) {
	sort.SliceStable(ts, func(i, j int) bool {
		si, sj := score(ts[i]), score(ts[j])
		if si != sj {
			return si > sj
		}
		return ts[i].ID < ts[j].ID
	})
}
