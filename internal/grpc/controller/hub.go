// Package controller is the controller side of the agent link: a Substrate
// implementation that routes placed operations to connected worker agents and
// accounts for their reported results. The wire-facing gRPC service is built
// with -tags=grpcgen after generating the pb package from api/proto/v1.
package controller

import (
	"sync"

	"github.com/HarvexIO/harvex/internal/substrate"
)

// Operation is one placed operation in flight to an agent, identified by the
// ref the substrate handed back on Submit.
type Operation struct {
	Ref        string
	Submission substrate.Submission
}

// Hub fans placed operations out to connected agents. AgentSubstrate.Submit
// enqueues by worker id; the per-agent stream drains.
type Hub struct {
	mu      sync.Mutex
	streams map[string]chan Operation
	pending map[string][]Operation
}

func NewHub() *Hub {
	return &Hub{
		streams: make(map[string]chan Operation),
		pending: make(map[string][]Operation),
	}
}

// Enqueue routes an operation to the agent's live stream, or parks it until
// the agent connects.
func (h *Hub) Enqueue(op Operation) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.streams[op.Submission.Worker]; ok {
		select {
		case ch <- op:
			return
		default:
		}
	}
	h.pending[op.Submission.Worker] = append(h.pending[op.Submission.Worker], op)
}

// Subscribe registers a live stream for the worker and returns any operations
// parked while it was disconnected. The returned func tears the stream down.
func (h *Hub) Subscribe(workerID string) (<-chan Operation, []Operation, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	ch := make(chan Operation, 64)
	h.streams[workerID] = ch
	backlog := h.pending[workerID]
	delete(h.pending, workerID)
	return ch, backlog, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if h.streams[workerID] == ch {
			delete(h.streams, workerID)
		}
		close(ch)
	}
}
