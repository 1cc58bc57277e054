// Package worker implements the execution loop (C4) and its pool lifecycle
// (C5): claim a pending job, run it under a timeout, retry with exponential
// backoff, and quarantine it in the DLQ once retries are exhausted.
package worker

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"os/exec"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/nullforge/queuectl/internal/jobqueue"
	"github.com/nullforge/queuectl/internal/registry"
)

// errDead is the sentinel wrapped in backoff.Permanent once a job has
// exhausted its retry budget; by the time it surfaces the job has already
// been moved to the DLQ, so the caller only needs to recognise "stop, this
// one's done" rather than treat it as an unexpected failure.
var errDead = errors.New("worker: job exhausted retries")

// EventPublisher is the optional lifecycle event sink (internal/worker/events.go).
type EventPublisher interface {
	Publish(ctx context.Context, jobID string, state jobqueue.State, attempts int)
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, string, jobqueue.State, int) {}

// Worker runs a single claim/execute/settle loop until its context is
// cancelled. Its id is fixed for its lifetime; the pool assigns it.
type Worker struct {
	ID       int
	repo     jobqueue.Repository
	registry *registry.Registry
	events   EventPublisher
	idlePoll time.Duration
	runCmd   func(ctx context.Context, command string) error
}

// newWorker builds a Worker. events may be nil (defaults to a no-op sink).
// idlePoll <= 0 falls back to one second. Unexported: the Pool is the only
// production caller, per spec §4.5; tests in this package call it directly.
func newWorker(id int, repo jobqueue.Repository, reg *registry.Registry, events EventPublisher, idlePoll time.Duration) *Worker {
	if events == nil {
		events = noopPublisher{}
	}
	if idlePoll <= 0 {
		idlePoll = time.Second
	}
	return &Worker{
		ID:       id,
		repo:     repo,
		registry: reg,
		events:   events,
		idlePoll: idlePoll,
		runCmd:   runShellCommand,
	}
}

// Run blocks, repeatedly claiming and executing jobs, until ctx is done.
func (w *Worker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		job, ok, err := w.repo.ClaimNextPending(ctx, w.ID)
		if err != nil {
			log.Printf("worker=%d claim error: %v", w.ID, err)
			if !sleepCancellable(ctx, w.idlePoll) {
				return
			}
			continue
		}
		if !ok {
			if !sleepCancellable(ctx, w.idlePoll) {
				return
			}
			continue
		}

		log.Printf("worker=%d claimed job=%s command=%q", w.ID, job.ID, job.Command)
		w.runWithRetry(ctx, job)
	}
}

// runWithRetry drives the execute/retry/DLQ state machine for a single
// claimed job (spec §4.4 steps 2-5). The job stays owned by this worker for
// its entire attempt sequence; it is never released back to pending between
// attempts.
func (w *Worker) runWithRetry(ctx context.Context, job jobqueue.Job) {
	attempts := job.Attempts
	base := w.registry.BaseDelay()
	maxRetries := job.MaxRetries

	bo := &specBackOff{base: base, attempt: attempts}

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		cmdCtx, cancel := context.WithTimeout(context.Background(), time.Duration(job.Timeout)*time.Second)
		defer cancel()

		runErr := w.runCmd(cmdCtx, job.Command)
		if runErr == nil {
			w.settle(ctx, job.ID, jobqueue.StateCompleted, attempts)
			return struct{}{}, nil
		}

		log.Printf("worker=%d job=%s attempt failed: %v", w.ID, job.ID, runErr)
		attempts++
		w.persistAttempts(ctx, job.ID, attempts)

		if attempts > maxRetries {
			w.moveToDead(ctx, job, attempts)
			return struct{}{}, backoff.Permanent(errDead)
		}
		return struct{}{}, runErr
	}, backoff.WithBackOff(bo), backoff.WithMaxElapsedTime(0))

	switch {
	case err == nil:
		// settled completed inside the operation.
	case errors.Is(err, errDead):
		// settled dead (moved to DLQ) inside the operation.
	default:
		// context cancelled mid-retry (stop signal): leave the job in
		// processing; the pool's graceful reset returns it to pending.
		log.Printf("worker=%d job=%s interrupted: %v", w.ID, job.ID, err)
	}
}

func (w *Worker) settle(ctx context.Context, id string, state jobqueue.State, attempts int) {
	patch := jobqueue.Patch{State: &state, Attempts: &attempts}
	if _, err := w.repo.Update(ctx, id, patch); err != nil && !errors.Is(err, jobqueue.ErrNoChange) {
		log.Printf("worker settle job=%s error: %v", id, err)
	}
	w.events.Publish(ctx, id, state, attempts)
}

func (w *Worker) persistAttempts(ctx context.Context, id string, attempts int) {
	patch := jobqueue.Patch{Attempts: &attempts}
	if _, err := w.repo.Update(ctx, id, patch); err != nil && !errors.Is(err, jobqueue.ErrNoChange) {
		log.Printf("worker persist attempts job=%s error: %v", id, err)
	}
}

func (w *Worker) moveToDead(ctx context.Context, job jobqueue.Job, attempts int) {
	job.State = jobqueue.StateDead
	job.Attempts = attempts
	if err := w.repo.MoveToDLQ(ctx, job); err != nil {
		log.Printf("worker=%d job=%s move-to-dlq error: %v", w.ID, job.ID, err)
		return
	}
	log.Printf("worker=%d job=%s moved to dlq after %d attempts", w.ID, job.ID, attempts)
	w.events.Publish(ctx, job.ID, jobqueue.StateDead, attempts)
}

// specBackOff implements backoff.BackOff with the exact formula from spec
// §4.4: delay = min(base^attempt + jitter(0,1), 60s), where attempt is the
// number of failed attempts so far (incremented on every call).
type specBackOff struct {
	base    float64
	attempt int
}

func (b *specBackOff) NextBackOff() time.Duration {
	b.attempt++
	base := b.base
	if base < 1 {
		base = 1
	}
	seconds := pow(base, b.attempt) + rand.Float64()
	if seconds > 60 {
		seconds = 60
	}
	return time.Duration(seconds * float64(time.Second))
}

// Reset is a no-op: the attempt count is seeded from the job and only grows.
func (b *specBackOff) Reset() {}

func pow(base float64, exp int) float64 {
	result := 1.0
	for i := 0; i < exp; i++ {
		result *= base
	}
	return result
}

// sleepCancellable sleeps for d unless ctx is cancelled first; returns
// false when the sleep was cut short by cancellation.
func sleepCancellable(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// runShellCommand is the default Worker.runCmd: invoke the command through
// the host shell, bounded by ctx's deadline.
func runShellCommand(ctx context.Context, command string) error {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	return cmd.Run()
}
