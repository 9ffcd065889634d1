package substrate

import (
	"math"

	"github.com/HarvexIO/harvex/internal/inventory"
)

// Per-thread effect constants of the operation model. Shared by the simulator
// and by the controller-side bookkeeping of the live agent link, so both sides
// size and account operations identically.
const (
	modelDepressPerThread = 0.05
	modelExtractDefense   = 0.002
	modelAmplifyDefense   = 0.004
	modelExtractFraction  = 0.002 // fraction of current value one extract thread removes
	modelAmplifyBase      = 0.003 // multiplicative growth per amplify thread
)

// ModelSize returns the thread count needed for kind to achieve desiredEffect
// against the target. May be non-finite for degenerate inputs; callers clamp.
func ModelSize(kind OpKind, t inventory.TargetResource, desiredEffect float64) float64 {
	switch kind {
	case OpExtract:
		if t.CurrentValue <= 0 {
			return math.Inf(1)
		}
		return desiredEffect / modelExtractFraction
	case OpAmplify:
		if desiredEffect <= 1 {
			return 0
		}
		return math.Log(desiredEffect) / math.Log(1+modelAmplifyBase)
	case OpDepress:
		return desiredEffect / modelDepressPerThread
	}
	return 0
}

// ModelDefenseDelta returns the defense change magnitude of running threads of
// kind: raised by extract/amplify, shed by depress.
func ModelDefenseDelta(kind OpKind, threads int) float64 {
	switch kind {
	case OpDepress:
		return float64(threads) * modelDepressPerThread
	case OpExtract:
		return float64(threads) * modelExtractDefense
	case OpAmplify:
		return float64(threads) * modelAmplifyDefense
	}
	return 0
}

// ApplyModelEffect mutates the target as if threads of kind just completed
// against it. Value is clamped to [0, MaxValue] and defense to MinDefense.
func ApplyModelEffect(t *inventory.TargetResource, kind OpKind, threads int) {
	n := float64(threads)
	switch kind {
	case OpDepress:
		t.CurrentDefense -= n * modelDepressPerThread
		if t.CurrentDefense < t.MinDefense {
			t.CurrentDefense = t.MinDefense
		}
	case OpAmplify:
		t.CurrentValue = math.Min(t.MaxValue, math.Max(t.CurrentValue, 1)*math.Pow(1+modelAmplifyBase, n))
		t.CurrentDefense += n * modelAmplifyDefense
	case OpExtract:
		removed := t.CurrentValue * math.Min(1, n*modelExtractFraction)
		t.CurrentValue -= removed
		if t.CurrentValue < 0 {
			t.CurrentValue = 0
		}
		t.CurrentDefense += n * modelExtractDefense
	}
}
