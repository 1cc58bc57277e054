package jobqueue

import "context"

// Filter narrows Find/Count to a single optional state equality, per
// spec §4.2 ("Filter is a single optional state equality").
type Filter struct {
	State *State
}

// Repository is the abstraction boundary over the durable store (spec
// §6.1). Every operation is atomic with respect to other callers; the
// atomicity of ClaimNextPending is the central correctness requirement of
// the whole system.
type Repository interface {
	Insert(ctx context.Context, job Job) (Job, error)
	Update(ctx context.Context, id string, patch Patch) (int, error)
	Find(ctx context.Context, filter Filter) ([]Job, error)
	Count(ctx context.Context, filter Filter) (int64, error)

	// ClaimNextPending atomically transitions the oldest pending job to
	// processing, returns (Job{}, false, nil) when none exists.
	ClaimNextPending(ctx context.Context, workerID int) (Job, bool, error)

	// ResetProcessing transitions matching processing rows to target
	// ("pending" on graceful stop, "failed" on crash). When workerID > 0
	// only that worker's rows are affected; 0 means all processing rows.
	ResetProcessing(ctx context.Context, workerID int, target State) (int64, error)

	// MoveToDLQ is idempotent: inserts into dlq only if id isn't already
	// there, then deletes the jobs row.
	MoveToDLQ(ctx context.Context, job Job) error

	DLQList(ctx context.Context) ([]Job, error)
	DLQFind(ctx context.Context, id string) (Job, bool, error)
	DLQDelete(ctx context.Context, id string) error

	// BulkSet propagates a patch to every row of a collection, used by the
	// Config Registry when max_retries changes.
	BulkSet(ctx context.Context, collection Collection, patch Patch) (int64, error)
}

// Collection names the two logical tables per spec §3.2.
type Collection string

const (
	CollectionJobs Collection = "jobs"
	CollectionDLQ  Collection = "dlq"
)
