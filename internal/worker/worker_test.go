package worker

import (
	"context"
	"fmt"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"github.com/nullforge/queuectl/internal/clock"
	"github.com/nullforge/queuectl/internal/jobqueue"
	"github.com/nullforge/queuectl/internal/registry"
	"gorm.io/gorm"
)

func newTestRepo(t *testing.T) *jobqueue.GormRepository {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	repo := jobqueue.NewGormRepository(db, clock.New(), nil)
	if err := repo.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return repo
}

func enqueue(t *testing.T, repo *jobqueue.GormRepository, j jobqueue.Job) {
	t.Helper()
	if j.CreatedAt == "" {
		j.CreatedAt = clock.Format(time.Now())
	}
	if j.UpdatedAt == "" {
		j.UpdatedAt = j.CreatedAt
	}
	if j.Timeout == 0 {
		j.Timeout = jobqueue.DefaultTimeoutSeconds
	}
	if _, err := repo.Insert(context.Background(), j); err != nil {
		t.Fatalf("insert %s: %v", j.ID, err)
	}
}

func waitUntil(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("condition not met within %s", timeout)
}

func TestWorker_SuccessSettlesCompleted(t *testing.T) {
	repo := newTestRepo(t)
	reg := registry.New(repo, 1, 1.0)
	enqueue(t, repo, jobqueue.Job{ID: "a", Command: "exit 0", State: jobqueue.StatePending, MaxRetries: 1, Timeout: 2})

	w := newWorker(1, repo, reg, nil, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	waitUntil(t, 3*time.Second, func() bool {
		jobs, err := repo.Find(context.Background(), jobqueue.Filter{State: statePtr(jobqueue.StateCompleted)})
		return err == nil && len(jobs) == 1 && jobs[0].ID == "a" && jobs[0].Attempts == 0
	})
}

func TestWorker_PermanentFailureReachesDLQ(t *testing.T) {
	repo := newTestRepo(t)
	reg := registry.New(repo, 2, 1.0)
	enqueue(t, repo, jobqueue.Job{ID: "b", Command: "exit 1", State: jobqueue.StatePending, MaxRetries: 2, Timeout: 2})

	w := newWorker(1, repo, reg, nil, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	waitUntil(t, 12*time.Second, func() bool {
		dead, ok, err := repo.DLQFind(context.Background(), "b")
		return err == nil && ok && dead.State == jobqueue.StateDead && dead.Attempts == 3
	})

	jobs, err := repo.Find(context.Background(), jobqueue.Filter{})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(jobs) != 0 {
		t.Fatalf("expected job removed from jobs after dlq move, got %d", len(jobs))
	}
}

func TestWorker_TimeoutCountsAsFailure(t *testing.T) {
	repo := newTestRepo(t)
	reg := registry.New(repo, 0, 1.0)
	enqueue(t, repo, jobqueue.Job{ID: "c", Command: "sleep 10", State: jobqueue.StatePending, MaxRetries: 0, Timeout: 1})

	w := newWorker(1, repo, reg, nil, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	waitUntil(t, 5*time.Second, func() bool {
		dead, ok, err := repo.DLQFind(context.Background(), "c")
		return err == nil && ok && dead.State == jobqueue.StateDead
	})
}

func statePtr(s jobqueue.State) *jobqueue.State { return &s }
