// Package dispatch hands placed operations to the execution substrate and
// keeps the registry of jobs the controller believes are running, so the
// loop can reconcile against polls and cancel everything on shutdown.
package dispatch

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/HarvexIO/harvex/internal/substrate"
)

// Counters are coarse submission outcomes for one dispatch call or for the
// manager's lifetime. Accepted means the substrate took the job, not that the
// operation eventually succeeded; outcomes arrive asynchronously.
type Counters struct {
	Submitted int `json:"submitted"`
	Accepted  int `json:"accepted"`
	Rejected  int `json:"rejected"`
}

func (c *Counters) add(o Counters) {
	c.Submitted += o.Submitted
	c.Accepted += o.Accepted
	c.Rejected += o.Rejected
}

// Job is one accepted submission tracked for cancellation.
type Job struct {
	ID          string           `json:"id"`
	Ref         string           `json:"ref"`
	Worker      string           `json:"worker"`
	Kind        substrate.OpKind `json:"kind"`
	Target      string           `json:"target"`
	Threads     int              `json:"threads"`
	SubmittedAt time.Time        `json:"submittedAt"`
}

type Manager struct {
	mu      sync.Mutex
	sub     substrate.Substrate
	timeout time.Duration
	jobs    map[string]Job
	totals  Counters
	now     func() time.Time
}

// NewManager wraps the substrate with a per-submission timeout. A submission
// that exceeds the timeout counts as rejected for this cycle; planning is
// stateless, so the work is naturally retried on the next cycle.
func NewManager(sub substrate.Substrate, timeout time.Duration) *Manager {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Manager{sub: sub, timeout: timeout, jobs: make(map[string]Job), now: time.Now}
}

// Submit hands each submission to the substrate, never retrying within the
// call. Accepted jobs are registered under a fresh id.
func (m *Manager) Submit(ctx context.Context, subs []substrate.Submission) Counters {
	var c Counters
	for _, s := range subs {
		c.Submitted++
		sctx, cancel := context.WithTimeout(ctx, m.timeout)
		ref, accepted, err := m.sub.Submit(sctx, s)
		cancel()
		if err != nil {
			log.Printf("dispatch: submit %s x%d on %s: %v", s.Kind, s.Threads, s.Worker, err)
			c.Rejected++
			continue
		}
		if !accepted {
			c.Rejected++
			continue
		}
		c.Accepted++
		m.register(Job{
			ID:          uuid.NewString(),
			Ref:         ref,
			Worker:      s.Worker,
			Kind:        s.Kind,
			Target:      s.Target,
			Threads:     s.Threads,
			SubmittedAt: m.now(),
		})
	}
	m.mu.Lock()
	m.totals.add(c)
	m.mu.Unlock()
	return c
}

func (m *Manager) register(j Job) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[j.ID] = j
}

// Jobs lists the registered in-flight jobs in a stable order.
func (m *Manager) Jobs() []Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Job, 0, len(m.jobs))
	for _, j := range m.jobs {
		out = append(out, j)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return out[i].SubmittedAt.Before(out[j].SubmittedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Reconcile drops registered jobs the substrate no longer reports as
// running. The substrate's poll is authoritative.
func (m *Manager) Reconcile(running []substrate.RunningJob) {
	alive := make(map[string]struct{}, len(running))
	for _, r := range running {
		alive[r.Ref] = struct{}{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, j := range m.jobs {
		if _, ok := alive[j.Ref]; !ok {
			delete(m.jobs, id)
		}
	}
}

// CancelAll best-effort terminates every registered job and clears the
// registry. Returns how many cancellations the substrate confirmed.
func (m *Manager) CancelAll(ctx context.Context) int {
	m.mu.Lock()
	jobs := make([]Job, 0, len(m.jobs))
	for _, j := range m.jobs {
		jobs = append(jobs, j)
	}
	m.jobs = make(map[string]Job)
	m.mu.Unlock()

	canceled := 0
	for _, j := range jobs {
		if m.sub.Cancel(ctx, j.Ref) {
			canceled++
		}
	}
	return canceled
}

// Totals returns lifetime submission counters.
func (m *Manager) Totals() Counters {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.totals
}
