package worker

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/hashicorp/go-multierror"
	"github.com/nullforge/queuectl/internal/jobqueue"
	"github.com/nullforge/queuectl/internal/registry"
)

// Pool spawns N workers, tracks their lifetimes, and owns the single
// cooperative stop signal they all observe (spec §4.5). It replaces the
// source's module-level stop_event/threads globals with one value owned by
// the process entry point (Design Notes §9).
type Pool struct {
	repo     jobqueue.Repository
	registry *registry.Registry
	events   EventPublisher
	idlePoll time.Duration

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
	size    int
}

// New builds an idle Pool. Call Start to spawn workers. idlePoll is how long
// an idle worker waits between ClaimNextPending attempts (WORKER_POLL_INTERVAL,
// SPEC_FULL.md §2.3); <= 0 falls back to one second.
func New(repo jobqueue.Repository, reg *registry.Registry, events EventPublisher, idlePoll time.Duration) *Pool {
	return &Pool{repo: repo, registry: reg, events: events, idlePoll: idlePoll}
}

// Running reports whether the pool currently has workers active.
func (p *Pool) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Size returns the number of workers started (0 when idle).
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.size
}

// Start spawns n workers with ids 1..n and returns once they are running;
// it does not block on their completion. A small random stagger (0-200ms)
// smooths initial contention on ClaimNextPending, per spec §4.5.
func (p *Pool) Start(n int) error {
	if n < 1 {
		return fmt.Errorf("worker pool: num_workers must be >= 1, got %d", n)
	}

	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("worker pool: already running with %d worker(s)", p.size)
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.running = true
	p.size = n
	p.mu.Unlock()

	for i := 1; i <= n; i++ {
		p.wg.Add(1)
		go p.runWorker(ctx, i)
	}
	return nil
}

// runWorker wraps a single Worker.Run with the crash-reset behaviour of
// spec §4.5: an abnormal exit (panic) marks that worker's own processing
// rows failed, distinguishing a crash from a cooperative stop (which marks
// them pending instead, in Stop).
func (p *Pool) runWorker(ctx context.Context, id int) {
	defer p.wg.Done()

	stagger := time.Duration(rand.Int63n(int64(200 * time.Millisecond)))
	select {
	case <-ctx.Done():
		return
	case <-time.After(stagger):
	}
	log.Printf("worker=%d started", id)

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("worker=%d panic: %v", id, r)
			log.Printf("%v", err)
			sentry.CaptureException(err)
			if _, resetErr := p.repo.ResetProcessing(context.Background(), id, jobqueue.StateFailed); resetErr != nil {
				log.Printf("worker=%d crash-reset error: %v", id, resetErr)
			}
		}
	}()

	w := newWorker(id, p.repo, p.registry, p.events, p.idlePoll)
	w.Run(ctx)
}

// Stop raises the stop signal, waits (bounded) for workers to exit, then
// performs the graceful reset: every row still processing becomes pending
// so a future pool picks it up. Returns once the reset has run.
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	cancel := p.cancel
	p.mu.Unlock()

	cancel()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		log.Printf("worker pool: stop timed out waiting for workers to exit")
	case <-ctx.Done():
	}

	p.mu.Lock()
	p.running = false
	p.size = 0
	p.mu.Unlock()

	n, err := p.repo.ResetProcessing(ctx, 0, jobqueue.StatePending)
	if err != nil {
		var merr *multierror.Error
		merr = multierror.Append(merr, fmt.Errorf("worker pool: graceful reset: %w", err))
		return merr.ErrorOrNil()
	}
	if n > 0 {
		log.Printf("worker pool: reset %d processing job(s) to pending", n)
	}
	return nil
}
