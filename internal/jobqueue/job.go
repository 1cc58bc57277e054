// Package jobqueue implements the durable job store: the Job record, its
// state machine, and the Repository abstraction workers and the HTTP API
// mutate and observe it through.
package jobqueue

// State is the lifecycle state of a Job.
type State string

const (
	StatePending    State = "pending"
	StateProcessing State = "processing"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
	StateDead       State = "dead"
)

// DefaultTimeoutSeconds is the fallback per-execution wall-clock limit for
// fixtures and tests that build a Job directly; the HTTP API stamps
// config.Config.DefaultJobTimeout instead when a job is enqueued without one.
const DefaultTimeoutSeconds = 30

// Job is a single shell-command unit of work.
//
// id is the client-supplied primary key, unique within jobs and within dlq.
// created_at/updated_at are stored as RFC-3339 UTC strings (not time.Time)
// so the wire representation never drifts from what Clock produced.
type Job struct {
	ID             string `gorm:"column:id;primaryKey;size:255" json:"id"`
	Command        string `gorm:"column:command;not null" json:"command"`
	State          State  `gorm:"column:state;index;size:16;not null" json:"state"`
	Attempts       int    `gorm:"column:attempts;not null" json:"attempts"`
	MaxRetries     int    `gorm:"column:max_retries;not null" json:"max_retries"`
	Timeout        int    `gorm:"column:timeout;not null" json:"timeout"`
	CreatedAt      string `gorm:"column:created_at;index;not null" json:"created_at"`
	UpdatedAt      string `gorm:"column:updated_at;not null" json:"updated_at"`
	WorkerAssigned int    `gorm:"column:worker_assigned;not null" json:"worker_assigned"`
}

// TableName pins the jobs table name regardless of gorm's pluralization.
func (Job) TableName() string { return "jobs" }

// DeadJob is the DLQ row shape. It is schema-identical to Job, kept as a
// distinct type/table so DLQ membership (not a state flag) is the single
// source of truth for "dead", per the Open Question decision in SPEC_FULL.md.
type DeadJob Job

func (DeadJob) TableName() string { return "dlq" }

func toDeadJob(j Job) DeadJob { return DeadJob(j) }
func toJob(d DeadJob) Job     { return Job(d) }

// Patch is a partial field set for Update. Nil pointers are left untouched.
type Patch struct {
	Command        *string
	State          *State
	Attempts       *int
	MaxRetries     *int
	Timeout        *int
	CreatedAt      *string
	UpdatedAt      *string
	WorkerAssigned *int
}

// IsZero reports whether the patch would modify nothing.
func (p Patch) IsZero() bool {
	return p.Command == nil && p.State == nil && p.Attempts == nil &&
		p.MaxRetries == nil && p.Timeout == nil && p.CreatedAt == nil &&
		p.UpdatedAt == nil && p.WorkerAssigned == nil
}

func (p Patch) apply(j *Job) {
	if p.Command != nil {
		j.Command = *p.Command
	}
	if p.State != nil {
		j.State = *p.State
	}
	if p.Attempts != nil {
		j.Attempts = *p.Attempts
	}
	if p.MaxRetries != nil {
		j.MaxRetries = *p.MaxRetries
	}
	if p.Timeout != nil {
		j.Timeout = *p.Timeout
	}
	if p.CreatedAt != nil {
		j.CreatedAt = *p.CreatedAt
	}
	if p.WorkerAssigned != nil {
		j.WorkerAssigned = *p.WorkerAssigned
	}
}
