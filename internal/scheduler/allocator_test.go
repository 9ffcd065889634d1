package scheduler

import (
	"reflect"
	"testing"

	"github.com/HarvexIO/harvex/internal/inventory"
)

func TestAllocateSplitsAcrossWorkers(t *testing.T) {
	l := NewLedger([]inventory.WorkerNode{
		{ID: "A", TotalCapacity: 10},
		{ID: "B", TotalCapacity: 4},
	})

	placements, placed := l.Allocate(12, 1)
	if placed != 12 {
		t.Fatalf("placed = %d, want 12", placed)
	}
	want := []Placement{{Worker: "A", Threads: 10}, {Worker: "B", Threads: 2}}
	if !reflect.DeepEqual(placements, want) {
		t.Fatalf("placements = %+v, want %+v", placements, want)
	}
	if l.Free("A") != 0 || l.Free("B") != 2 {
		t.Fatalf("ledger after = {A:%v B:%v}, want {A:0 B:2}", l.Free("A"), l.Free("B"))
	}
}

func TestAllocatePartialReported(t *testing.T) {
	l := NewLedger([]inventory.WorkerNode{
		{ID: "A", TotalCapacity: 10},
		{ID: "B", TotalCapacity: 4},
	})

	placements, placed := l.Allocate(30, 1)
	if placed != 14 {
		t.Fatalf("placed = %d, want 14 (partial)", placed)
	}
	total := 0
	for _, p := range placements {
		total += p.Threads
	}
	if total != placed {
		t.Fatalf("placements sum %d != placed %d", total, placed)
	}
	if l.Free("A") < 0 || l.Free("B") < 0 {
		t.Fatal("ledger entry went negative")
	}
	if l.TotalFree() != 0 {
		t.Fatalf("expected exhausted ledger, %v free", l.TotalFree())
	}
}

func TestAllocateHonorsReservedAndUsed(t *testing.T) {
	l := NewLedger([]inventory.WorkerNode{
		{ID: "A", TotalCapacity: 16, UsedCapacity: 6, Reserved: 2},
	})
	// 8 planable units at cost 1.75 fits 4 threads.
	_, placed := l.Allocate(10, 1.75)
	if placed != 4 {
		t.Fatalf("placed = %d, want 4", placed)
	}
	if l.Free("A") != 1 {
		t.Fatalf("free = %v, want 1 left over", l.Free("A"))
	}
}

func TestAllocateDeterministicOrder(t *testing.T) {
	workers := []inventory.WorkerNode{
		{ID: "c", TotalCapacity: 8},
		{ID: "a", TotalCapacity: 8},
		{ID: "b", TotalCapacity: 12},
	}
	first, firstPlaced := NewLedger(workers).Allocate(20, 1)
	second, secondPlaced := NewLedger(workers).Allocate(20, 1)
	if firstPlaced != secondPlaced || !reflect.DeepEqual(first, second) {
		t.Fatalf("allocation not deterministic: %+v vs %+v", first, second)
	}
	// Most free first, then id ascending on the tie between a and c.
	if first[0].Worker != "b" || first[1].Worker != "a" {
		t.Fatalf("unexpected order: %+v", first)
	}
}

func TestAllocateDegenerateInputs(t *testing.T) {
	l := NewLedger([]inventory.WorkerNode{{ID: "A", TotalCapacity: 10}})
	if _, placed := l.Allocate(0, 1); placed != 0 {
		t.Fatalf("zero need placed %d", placed)
	}
	if _, placed := l.Allocate(5, 0); placed != 0 {
		t.Fatalf("zero cost placed %d", placed)
	}
	if l.Free("A") != 10 {
		t.Fatal("degenerate allocate mutated ledger")
	}
}

func TestCloneIsolation(t *testing.T) {
	l := NewLedger([]inventory.WorkerNode{{ID: "A", TotalCapacity: 10}})
	c := l.Clone()
	c.Allocate(5, 1)
	if l.Free("A") != 10 {
		t.Fatalf("clone allocation leaked into parent: %v", l.Free("A"))
	}
	if c.Free("A") != 5 {
		t.Fatalf("clone free = %v, want 5", c.Free("A"))
	}
}
