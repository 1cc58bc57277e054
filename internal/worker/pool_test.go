package worker

import (
	"context"
	"testing"
	"time"

	"github.com/nullforge/queuectl/internal/jobqueue"
	"github.com/nullforge/queuectl/internal/registry"
)

// TestPool_StopReturnsProcessingToPending covers P5 + scenario 4 of
// spec.md §8: after Stop returns, no row is left processing and the
// long-running job is visible again as pending.
func TestPool_StopReturnsProcessingToPending(t *testing.T) {
	repo := newTestRepo(t)
	reg := registry.New(repo, 3, 1.0)
	enqueue(t, repo, jobqueue.Job{ID: "d", Command: "sleep 30", State: jobqueue.StatePending, MaxRetries: 3, Timeout: 60})

	pool := New(repo, reg, nil, 50*time.Millisecond)
	if err := pool.Start(1); err != nil {
		t.Fatalf("start: %v", err)
	}

	waitUntil(t, 2*time.Second, func() bool {
		jobs, err := repo.Find(context.Background(), jobqueue.Filter{State: statePtr(jobqueue.StateProcessing)})
		return err == nil && len(jobs) == 1
	})

	if err := pool.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}

	processing, err := repo.Find(context.Background(), jobqueue.Filter{State: statePtr(jobqueue.StateProcessing)})
	if err != nil {
		t.Fatalf("find processing: %v", err)
	}
	if len(processing) != 0 {
		t.Fatalf("expected no processing rows after stop, got %d", len(processing))
	}

	pending, err := repo.Find(context.Background(), jobqueue.Filter{State: statePtr(jobqueue.StatePending)})
	if err != nil {
		t.Fatalf("find pending: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != "d" {
		t.Fatalf("expected job d back in pending, got %+v", pending)
	}
}

func TestPool_StartRejectsZeroWorkers(t *testing.T) {
	repo := newTestRepo(t)
	reg := registry.New(repo, 3, 1.0)
	pool := New(repo, reg, nil, 50*time.Millisecond)
	if err := pool.Start(0); err == nil {
		t.Fatalf("expected error starting 0 workers")
	}
}

func TestPool_StartTwiceFails(t *testing.T) {
	repo := newTestRepo(t)
	reg := registry.New(repo, 3, 1.0)
	pool := New(repo, reg, nil, 50*time.Millisecond)
	if err := pool.Start(1); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer pool.Stop(context.Background())

	if err := pool.Start(1); err == nil {
		t.Fatalf("expected error starting an already-running pool")
	}
}
