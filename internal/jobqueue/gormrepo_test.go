package jobqueue

import (
	"context"
	"fmt"
	"sync"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"github.com/nullforge/queuectl/internal/clock"
	"gorm.io/gorm"
)

func openTestRepo(t *testing.T) *GormRepository {
	t.Helper()
	// Each test gets its own named in-memory database so state never
	// leaks between tests that share the "cache=shared" DSN form.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	repo := NewGormRepository(db, clock.New(), nil)
	if err := repo.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return repo
}

func seedJob(t *testing.T, repo *GormRepository, id, createdAt string) {
	t.Helper()
	_, err := repo.Insert(context.Background(), Job{
		ID:         id,
		Command:    "exit 0",
		State:      StatePending,
		MaxRetries: 3,
		Timeout:    DefaultTimeoutSeconds,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	})
	if err != nil {
		t.Fatalf("seed job %s: %v", id, err)
	}
}

func TestInsert_DuplicateID(t *testing.T) {
	repo := openTestRepo(t)
	seedJob(t, repo, "a", "2026-01-01T00:00:00Z")
	_, err := repo.Insert(context.Background(), Job{ID: "a", Command: "exit 0", State: StatePending, CreatedAt: "2026-01-01T00:00:01Z", UpdatedAt: "2026-01-01T00:00:01Z"})
	if err != ErrDuplicateID {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	repo := openTestRepo(t)
	cmd := "exit 1"
	_, err := repo.Update(context.Background(), "missing", Patch{Command: &cmd})
	if err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdate_NoChange(t *testing.T) {
	repo := openTestRepo(t)
	seedJob(t, repo, "a", "2026-01-01T00:00:00Z")
	_, err := repo.Update(context.Background(), "a", Patch{})
	if err != ErrNoChange {
		t.Fatalf("expected ErrNoChange, got %v", err)
	}
}

// TestClaimNextPending_FIFO covers P2: claims occur in non-decreasing
// created_at order.
func TestClaimNextPending_FIFO(t *testing.T) {
	repo := openTestRepo(t)
	seedJob(t, repo, "b", "2026-01-01T00:00:02Z")
	seedJob(t, repo, "a", "2026-01-01T00:00:01Z")
	seedJob(t, repo, "c", "2026-01-01T00:00:03Z")

	first, ok, err := repo.ClaimNextPending(context.Background(), 1)
	if err != nil || !ok {
		t.Fatalf("claim 1: ok=%v err=%v", ok, err)
	}
	if first.ID != "a" {
		t.Fatalf("expected FIFO claim of a, got %s", first.ID)
	}

	second, ok, err := repo.ClaimNextPending(context.Background(), 1)
	if err != nil || !ok {
		t.Fatalf("claim 2: ok=%v err=%v", ok, err)
	}
	if second.ID != "b" {
		t.Fatalf("expected FIFO claim of b, got %s", second.ID)
	}
}

func TestClaimNextPending_Empty(t *testing.T) {
	repo := openTestRepo(t)
	_, ok, err := repo.ClaimNextPending(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("expected no job to claim")
	}
}

// TestClaimNextPending_UniqueUnderConcurrency covers P1: with K workers
// racing on N pending jobs, each job is claimed by exactly one worker.
func TestClaimNextPending_UniqueUnderConcurrency(t *testing.T) {
	repo := openTestRepo(t)
	const n = 20
	for i := 0; i < n; i++ {
		seedJob(t, repo, fmt.Sprintf("job-%02d", i), "2026-01-01T00:00:00Z")
	}

	const workers = 8
	seen := make(chan string, n)
	var wg sync.WaitGroup
	for w := 1; w <= workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for {
				job, ok, err := repo.ClaimNextPending(context.Background(), workerID)
				if err != nil {
					t.Errorf("claim error: %v", err)
					return
				}
				if !ok {
					return
				}
				seen <- job.ID
			}
		}(w)
	}
	wg.Wait()
	close(seen)

	claimed := map[string]int{}
	for id := range seen {
		claimed[id]++
	}
	if len(claimed) != n {
		t.Fatalf("expected %d distinct jobs claimed, got %d", n, len(claimed))
	}
	for id, count := range claimed {
		if count != 1 {
			t.Fatalf("job %s claimed %d times", id, count)
		}
	}
}

func TestMoveToDLQ_Idempotent(t *testing.T) {
	repo := openTestRepo(t)
	seedJob(t, repo, "a", "2026-01-01T00:00:00Z")
	job, ok, err := repo.ClaimNextPending(context.Background(), 1)
	if err != nil || !ok {
		t.Fatalf("claim: ok=%v err=%v", ok, err)
	}
	job.State = StateDead
	job.Attempts = 4

	if err := repo.MoveToDLQ(context.Background(), job); err != nil {
		t.Fatalf("move to dlq: %v", err)
	}
	// idempotent: calling again must not duplicate or error.
	if err := repo.MoveToDLQ(context.Background(), job); err != nil {
		t.Fatalf("move to dlq again: %v", err)
	}

	dead, ok, err := repo.DLQFind(context.Background(), "a")
	if err != nil || !ok {
		t.Fatalf("dlq find: ok=%v err=%v", ok, err)
	}
	if dead.State != StateDead {
		t.Fatalf("expected state dead, got %s", dead.State)
	}

	jobs, err := repo.Find(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(jobs) != 0 {
		t.Fatalf("expected job removed from jobs, got %d rows", len(jobs))
	}
}

// TestDLQRetry_SecondCallFails covers P6: dlq/retry applied twice fails the
// second time and leaves exactly one pending copy.
func TestDLQRetry_SecondCallFails(t *testing.T) {
	repo := openTestRepo(t)
	seedJob(t, repo, "a", "2026-01-01T00:00:00Z")
	job, _, _ := repo.ClaimNextPending(context.Background(), 1)
	job.State = StateDead
	job.Attempts = 4
	if err := repo.MoveToDLQ(context.Background(), job); err != nil {
		t.Fatalf("move to dlq: %v", err)
	}

	dead, ok, err := repo.DLQFind(context.Background(), "a")
	if err != nil || !ok {
		t.Fatalf("dlq find: ok=%v err=%v", ok, err)
	}
	dead.State = StatePending
	dead.Attempts = 0
	if _, err := repo.Insert(context.Background(), dead); err != nil {
		t.Fatalf("reinsert: %v", err)
	}
	if err := repo.DLQDelete(context.Background(), "a"); err != nil {
		t.Fatalf("dlq delete: %v", err)
	}

	if err := repo.DLQDelete(context.Background(), "a"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}

	jobs, err := repo.Find(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(jobs) != 1 || jobs[0].State != StatePending {
		t.Fatalf("expected exactly one pending job, got %+v", jobs)
	}
}

func TestBulkSet_MaxRetries(t *testing.T) {
	repo := openTestRepo(t)
	seedJob(t, repo, "a", "2026-01-01T00:00:00Z")
	seedJob(t, repo, "b", "2026-01-01T00:00:01Z")

	newMax := 7
	n, err := repo.BulkSet(context.Background(), CollectionJobs, Patch{MaxRetries: &newMax})
	if err != nil {
		t.Fatalf("bulk set: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 rows updated, got %d", n)
	}

	jobs, err := repo.Find(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	for _, j := range jobs {
		if j.MaxRetries != 7 {
			t.Fatalf("expected max_retries=7, got %d for job %s", j.MaxRetries, j.ID)
		}
	}
}
