package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/HarvexIO/harvex/internal/dispatch"
	"github.com/HarvexIO/harvex/internal/inventory"
	"github.com/HarvexIO/harvex/internal/substrate"
)

// State is the loop's current phase.
type State string

const (
	StatePlanning   State = "planning"
	StateDispatched State = "dispatched"
	StateDraining   State = "draining"
)

// Config tunes the continuous scheduling loop.
type Config struct {
	// Tick is the pause before retrying when no planning is possible
	// (snapshot failure, empty plan).
	Tick time.Duration
	// PollInterval is how often Draining polls running jobs.
	PollInterval time.Duration
	// Gap is the mandated spacing between consecutive operation completions
	// within a batch.
	Gap time.Duration
	// Buffer pads the convergence deadline past the slowest operation.
	Buffer time.Duration
	// SubmitTimeout bounds each substrate submission.
	SubmitTimeout time.Duration
	// CacheTTL bounds staleness of inventory served to observers.
	CacheTTL time.Duration

	// ExtractFraction of current value one batch extracts.
	ExtractFraction float64
	// ThreadCost is the capacity one thread consumes.
	ThreadCost float64
	// DefenseTolerance above the floor within which a target counts as ready.
	DefenseTolerance float64
	// ReplanFraction: in repeat mode, Draining returns to Planning once free
	// capacity exceeds in-use capacity by this fraction of the fleet total.
	ReplanFraction float64
	// RepeatStride offsets each repeated batch against the same target.
	RepeatStride time.Duration
	// MaxBatchesPerCycle caps full batches planned in one cycle.
	MaxBatchesPerCycle int

	// Eligibility is the caller's current eligibility level.
	Eligibility int
	// Repeat keeps the loop running; false means one cycle then drain and exit.
	Repeat bool
	// PrepOnly skips extract-bearing batches entirely.
	PrepOnly bool
	// TargetOverride restricts planning to a single target id.
	TargetOverride string
	// Debug enables verbose per-batch tracing.
	Debug bool
}

func (c *Config) applyDefaults() {
	if c.Tick <= 0 {
		c.Tick = 4 * time.Second
	}
	if c.PollInterval <= 0 {
		c.PollInterval = time.Second
	}
	if c.Gap <= 0 {
		c.Gap = 200 * time.Millisecond
	}
	if c.Buffer <= 0 {
		c.Buffer = 500 * time.Millisecond
	}
	if c.SubmitTimeout <= 0 {
		c.SubmitTimeout = 2 * time.Second
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = 2 * time.Second
	}
	if c.ExtractFraction <= 0 || c.ExtractFraction >= 1 {
		c.ExtractFraction = 0.5
	}
	if c.ThreadCost <= 0 {
		c.ThreadCost = 1.75
	}
	if c.DefenseTolerance <= 0 {
		c.DefenseTolerance = 1
	}
	if c.ReplanFraction <= 0 {
		c.ReplanFraction = 0.2
	}
	if c.RepeatStride <= 0 {
		c.RepeatStride = time.Second
	}
	if c.MaxBatchesPerCycle <= 0 {
		c.MaxBatchesPerCycle = 200
	}
}

// CycleStats summarizes one planning cycle for observability.
type CycleStats struct {
	Cycle            int       `json:"cycle"`
	Planned          int       `json:"planned"`
	DiscardedPartial int       `json:"discardedPartial"`
	PrepBatches      int       `json:"prepBatches"`
	Submitted        int       `json:"submitted"`
	Accepted         int       `json:"accepted"`
	Rejected         int       `json:"rejected"`
	FreeBefore       float64   `json:"freeBefore"`
	FreeAfter        float64   `json:"freeAfter"`
	At               time.Time `json:"at"`
}

// Status is the loop's externally visible state.
type Status struct {
	State           State             `json:"state"`
	LastCycle       CycleStats        `json:"lastCycle"`
	History         []CycleStats      `json:"history"`
	RunningJobs     int               `json:"runningJobs"`
	LastRefreshedAt time.Time         `json:"lastRefreshedAt"`
	Totals          dispatch.Counters `json:"totals"`
}

const historyLen = 32

// Loop is the continuous scheduling loop: snapshot, rank, plan, allocate,
// dispatch, drain, repeat. It is the single writer of the per-cycle ledger;
// real capacity is re-observed every cycle rather than carried over.
type Loop struct {
	cfg     Config
	sub     substrate.Substrate
	cache   *inventory.Cache
	disp    *dispatch.Manager
	planner *Planner
	now     func() time.Time

	mu      sync.Mutex
	state   State
	last    CycleStats
	history []CycleStats
	running int
	cycle   int
}

func NewLoop(cfg Config, sub substrate.Substrate) *Loop {
	cfg.applyDefaults()
	l := &Loop{
		cfg:   cfg,
		sub:   sub,
		cache: inventory.NewCache(sub.Snapshot, cfg.CacheTTL),
		disp:  dispatch.NewManager(sub, cfg.SubmitTimeout),
		now:   time.Now,
		state: StatePlanning,
	}
	l.planner = NewPlanner(sub, cfg.ExtractFraction, cfg.Gap, cfg.Buffer)
	return l
}

// Dispatcher exposes the job registry to the HTTP surface.
func (l *Loop) Dispatcher() *dispatch.Manager { return l.disp }

// Cache exposes the inventory cache to the HTTP surface.
func (l *Loop) Cache() *inventory.Cache { return l.cache }

// Status returns a copy of the loop's observable state.
func (l *Loop) Status() Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	hist := make([]CycleStats, len(l.history))
	copy(hist, l.history)
	return Status{
		State:           l.state,
		LastCycle:       l.last,
		History:         hist,
		RunningJobs:     l.running,
		LastRefreshedAt: l.cache.LastRefreshedAt(),
		Totals:          l.disp.Totals(),
	}
}

// Run drives the loop until ctx is canceled. On cancellation it best-effort
// cancels every job it still believes is running before returning. In
// single-pass mode (Repeat false) it returns nil once the one cycle's jobs
// have drained.
func (l *Loop) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			l.shutdown()
			return err
		}

		l.setState(StatePlanning)
		snap, err := l.cache.Refresh(ctx)
		if err != nil {
			// No planning is possible without inventory: pause and retry.
			log.Printf("loop: inventory snapshot failed, pausing: %v", err)
			if !l.sleep(ctx, l.cfg.Tick) {
				l.shutdown()
				return ctx.Err()
			}
			continue
		}

		batches, stats := l.planCycle(snap)

		l.setState(StateDispatched)
		for _, b := range batches {
			c := l.disp.Submit(ctx, submissions(b))
			stats.Submitted += c.Submitted
			stats.Accepted += c.Accepted
			stats.Rejected += c.Rejected
		}
		l.recordCycle(stats)
		if l.cfg.Debug {
			log.Printf("loop: cycle %d planned=%d discarded=%d prep=%d accepted=%d rejected=%d free %.1f -> %.1f",
				stats.Cycle, stats.Planned, stats.DiscardedPartial, stats.PrepBatches,
				stats.Accepted, stats.Rejected, stats.FreeBefore, stats.FreeAfter)
		}

		if err := l.drain(ctx); err != nil {
			l.shutdown()
			return err
		}
		if !l.cfg.Repeat {
			return nil
		}
	}
}

// planCycle runs one Planning phase against an immutable snapshot. Full
// batches must be fully resourced or they are discarded; leftover capacity
// is spent on prep batches, where partial allocation degrades gracefully.
func (l *Loop) planCycle(snap inventory.Snapshot) ([]Batch, CycleStats) {
	l.mu.Lock()
	l.cycle++
	cycle := l.cycle
	l.mu.Unlock()

	stats := CycleStats{Cycle: cycle, At: l.now(), FreeBefore: snap.TotalFree()}
	ledger := NewLedger(snap.Workers)
	now := l.now()

	targets := snap.Targets
	if l.cfg.TargetOverride != "" {
		targets = nil
		for _, t := range snap.Targets {
			if t.ID == l.cfg.TargetOverride {
				targets = append(targets, t)
			}
		}
	}
	ready, needsPrep := Rank(targets, l.cfg.Eligibility, l.cfg.DefenseTolerance)

	var batches []Batch

	if !l.cfg.PrepOnly {
		// Keep pulling ready targets, wrapping back to the top with a
		// deadline stride per repeat, until nothing more can be fully funded.
		candidates := ready
		for wrap := 0; len(candidates) > 0 && len(batches) < l.cfg.MaxBatchesPerCycle; wrap++ {
			var still []inventory.TargetResource
			for _, t := range candidates {
				if len(batches) >= l.cfg.MaxBatchesPerCycle {
					break
				}
				b := l.planner.PlanBatch(t, now)
				b.Timings = b.Timings.Shift(time.Duration(wrap) * l.cfg.RepeatStride)
				if b.Threads.Total() == 0 {
					continue
				}
				if next, ok := allocateFull(ledger, &b, l.cfg.ThreadCost); ok {
					ledger = next
					batches = append(batches, b)
					stats.Planned++
					still = append(still, t)
					if l.cfg.Debug {
						log.Printf("loop: batch %s threads=%+v deadline=%s", t.ID, b.Threads, b.Timings.Deadline.Format(time.RFC3339Nano))
					}
				} else {
					// A half-formed 4-stage batch cannot converge; drop it.
					stats.DiscardedPartial++
				}
			}
			if len(still) == 0 {
				break
			}
			candidates = still
		}
	}

	for _, t := range needsPrep {
		if ledger.TotalFree() < l.cfg.ThreadCost {
			break
		}
		b := l.planner.PlanPrep(t, now)
		if b.Threads.Total() == 0 {
			continue
		}
		if allocatePartial(ledger, &b, l.cfg.ThreadCost) {
			batches = append(batches, b)
			stats.PrepBatches++
		}
	}

	stats.FreeAfter = ledger.TotalFree()
	return batches, stats
}

// allocateFull packs all four operations of a batch against a clone of the
// ledger. On success it fills the batch's assignments and returns the clone
// for adoption; any shortfall leaves the original ledger untouched.
func allocateFull(ledger *Ledger, b *Batch, costPerThread float64) (*Ledger, bool) {
	clone := ledger.Clone()
	for _, op := range batchOps(b) {
		if op.threads == 0 {
			continue
		}
		placements, placed := clone.Allocate(op.threads, costPerThread)
		if placed < op.threads {
			return nil, false
		}
		appendAssignments(b, op, placements)
	}
	return clone, true
}

// allocatePartial packs what it can of a prep batch directly into the
// ledger. Partial depress/amplify still makes progress, so whatever lands
// is kept. Returns false if nothing placed at all.
func allocatePartial(ledger *Ledger, b *Batch, costPerThread float64) bool {
	any := false
	for _, op := range batchOps(b) {
		if op.threads == 0 {
			continue
		}
		placements, placed := ledger.Allocate(op.threads, costPerThread)
		if placed > 0 {
			appendAssignments(b, op, placements)
			any = true
		}
	}
	return any
}

type batchOp struct {
	kind    substrate.OpKind
	threads int
	delay   time.Duration
}

func batchOps(b *Batch) []batchOp {
	return []batchOp{
		{substrate.OpExtract, b.Threads.Extract, b.Timings.ExtractDelay},
		{substrate.OpDepress, b.Threads.Depress1, b.Timings.Depress1Delay},
		{substrate.OpAmplify, b.Threads.Amplify, b.Timings.AmplifyDelay},
		{substrate.OpDepress, b.Threads.Depress2, b.Timings.Depress2Delay},
	}
}

func appendAssignments(b *Batch, op batchOp, placements []Placement) {
	for _, p := range placements {
		b.Assignments = append(b.Assignments, Assignment{
			Worker:     p.Worker,
			Kind:       op.kind,
			Threads:    p.Threads,
			StartDelay: op.delay,
		})
	}
}

func submissions(b Batch) []substrate.Submission {
	subs := make([]substrate.Submission, 0, len(b.Assignments))
	for _, a := range b.Assignments {
		subs = append(subs, substrate.Submission{
			Worker:     a.Worker,
			Kind:       a.Kind,
			Target:     b.Target.ID,
			Threads:    a.Threads,
			StartDelay: a.StartDelay,
		})
	}
	return subs
}

// drain polls running jobs until the cycle's work is done, or, in repeat
// mode, until enough capacity has freed up to be worth re-planning.
func (l *Loop) drain(ctx context.Context) error {
	l.setState(StateDraining)
	ticker := time.NewTicker(l.cfg.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		running, err := l.sub.PollRunning(ctx)
		if err != nil {
			// Treated like a substrate timeout: skip this poll, retry.
			log.Printf("loop: poll running jobs: %v", err)
			continue
		}
		l.disp.Reconcile(running)
		l.setRunning(len(running))
		if len(running) == 0 {
			return nil
		}

		if l.cfg.Repeat {
			snap, err := l.cache.Refresh(ctx)
			if err != nil {
				continue
			}
			free, used := snap.TotalFree(), snap.TotalUsed()
			if free-used >= l.cfg.ReplanFraction*snap.TotalCapacity() {
				return nil
			}
		}
	}
}

// shutdown best-effort cancels everything still registered. Run's ctx is
// already dead, so cancellation gets its own short deadline.
func (l *Loop) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if n := l.disp.CancelAll(ctx); n > 0 {
		log.Printf("loop: canceled %d in-flight jobs on shutdown", n)
	}
}

func (l *Loop) sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (l *Loop) setState(s State) {
	l.mu.Lock()
	l.state = s
	l.mu.Unlock()
}

func (l *Loop) setRunning(n int) {
	l.mu.Lock()
	l.running = n
	l.mu.Unlock()
}

func (l *Loop) recordCycle(s CycleStats) {
	l.mu.Lock()
	l.last = s
	l.history = append(l.history, s)
	if len(l.history) > historyLen {
		l.history = l.history[len(l.history)-historyLen:]
	}
	l.mu.Unlock()
}
