package scheduler

import (
	"sort"

	"github.com/HarvexIO/harvex/internal/inventory"
)

// Placement records how many threads of one operation landed on one worker.
type Placement struct {
	Worker  string `json:"worker"`
	Threads int    `json:"threads"`
}

// Ledger is the per-cycle working copy of free capacity. It is built from a
// snapshot at the start of a planning pass, decremented as operations are
// packed, and thrown away when the pass ends; real capacity is re-observed
// next cycle. Only one planning pass holds a ledger at a time.
type Ledger struct {
	free  map[string]float64
	order []string
}

// NewLedger seeds the ledger with each worker's planable capacity
// (total - used - reserved). Iteration order is fixed for the life of the
// ledger: most free capacity first, id ascending on ties, so identical
// snapshots always pack identically.
func NewLedger(workers []inventory.WorkerNode) *Ledger {
	l := &Ledger{free: make(map[string]float64, len(workers))}
	for _, w := range workers {
		l.free[w.ID] = w.FreeCapacity()
		l.order = append(l.order, w.ID)
	}
	sort.SliceStable(l.order, func(i, j int) bool {
		fi, fj := l.free[l.order[i]], l.free[l.order[j]]
		if fi != fj {
			return fi > fj
		}
		return l.order[i] < l.order[j]
	})
	return l
}

// Clone copies the ledger so a batch can be packed tentatively and thrown
// away if any of its operations comes up short.
func (l *Ledger) Clone() *Ledger {
	c := &Ledger{free: make(map[string]float64, len(l.free)), order: make([]string, len(l.order))}
	for id, f := range l.free {
		c.free[id] = f
	}
	copy(c.order, l.order)
	return c
}

// Allocate packs need threads of one operation across workers, splitting as
// necessary, decrementing the ledger in place. It returns the placements and
// how many threads were actually placed; placed < need is a partial
// allocation, reported and never silently dropped.
func (l *Ledger) Allocate(need int, costPerThread float64) ([]Placement, int) {
	if need <= 0 || costPerThread <= 0 {
		return nil, 0
	}
	var placements []Placement
	placed := 0
	for _, id := range l.order {
		if placed == need {
			break
		}
		take := int(l.free[id] / costPerThread)
		if take > need-placed {
			take = need - placed
		}
		if take <= 0 {
			continue
		}
		l.free[id] -= float64(take) * costPerThread
		placements = append(placements, Placement{Worker: id, Threads: take})
		placed += take
	}
	return placements, placed
}

// Free returns the remaining planable capacity of one worker.
func (l *Ledger) Free(worker string) float64 {
	return l.free[worker]
}

// TotalFree returns the remaining planable capacity across the fleet.
func (l *Ledger) TotalFree() float64 {
	var total float64
	for _, f := range l.free {
		total += f
	}
	return total
}
