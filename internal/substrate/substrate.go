// Package substrate defines the contract between the scheduling core and the
// execution layer that actually runs operations on worker nodes. The core
// treats everything behind this interface as opaque: durations, sizing math,
// and the defense effects of each operation kind belong to the substrate.
package substrate

import (
	"context"
	"time"

	"github.com/HarvexIO/harvex/internal/inventory"
)

// OpKind is one of the three pipeline operation kinds. A full batch runs
// depress twice (once to clean up after extract, once after amplify).
type OpKind string

const (
	OpDepress OpKind = "depress"
	OpAmplify OpKind = "amplify"
	OpExtract OpKind = "extract"
)

// Submission asks the substrate to run one operation on one worker. The
// substrate starts the operation after StartDelay of wall-clock time; the
// core relies on that delay for intra-batch ordering.
type Submission struct {
	Worker     string
	Kind       OpKind
	Target     string
	Threads    int
	StartDelay time.Duration
}

// RunningJob is the substrate's view of one in-flight operation.
type RunningJob struct {
	Ref       string
	Worker    string
	Kind      OpKind
	Target    string
	Threads   int
	Remaining time.Duration
}

// Substrate is the execution collaborator. Implementations must be safe for
// use from a single scheduling loop; Submit and PollRunning respect ctx
// deadlines so a stuck substrate degrades to a rejected cycle, not a hang.
type Substrate interface {
	// Snapshot returns the current worker fleet and target inventory.
	Snapshot(ctx context.Context) (inventory.Snapshot, error)

	// SizeOperation returns the thread count needed for kind to achieve
	// desiredEffect against the target: for extract, the fraction of current
	// value to remove; for amplify, the value multiplier to reach; for
	// depress, the absolute defense amount to shed. The result may be
	// non-finite for degenerate inputs (e.g. extracting from zero value);
	// callers must clamp.
	SizeOperation(kind OpKind, t inventory.TargetResource, desiredEffect float64) float64

	// DefenseDelta returns the defense change magnitude caused by running
	// threads of kind: the increase inflicted by extract/amplify, or the
	// reduction achieved by depress.
	DefenseDelta(kind OpKind, threads int, t inventory.TargetResource) float64

	// Submit hands one operation to the substrate. accepted reports whether
	// it was taken for execution; ref identifies the job for Cancel when it
	// was.
	Submit(ctx context.Context, s Submission) (ref string, accepted bool, err error)

	// PollRunning lists operations the substrate is still executing.
	PollRunning(ctx context.Context) ([]RunningJob, error)

	// Cancel best-effort terminates a previously submitted job.
	Cancel(ctx context.Context, ref string) bool
}
