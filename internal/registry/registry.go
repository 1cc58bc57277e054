// Package registry implements the process-wide Config Registry (spec §4.3):
// a small set of named tunables workers read and the HTTP API mutates.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/nullforge/queuectl/internal/jobqueue"
)

// ErrUnknownKey is returned by Get/Set for anything outside the known key
// set (max_retries, base_delay).
var ErrUnknownKey = errors.New("registry: unknown config key")

const (
	KeyMaxRetries = "max_retries"
	KeyBaseDelay  = "base_delay"
)

// Registry holds the tunables shared by every worker and the HTTP API,
// protected by a single mutex around reads and writes per spec §5.
type Registry struct {
	mu         sync.RWMutex
	maxRetries int
	baseDelay  float64
	repo       jobqueue.Repository
}

// New builds a Registry seeded with maxRetries/baseDelay, wired to repo so
// Set(max_retries, ...) can propagate to already-enqueued jobs.
func New(repo jobqueue.Repository, maxRetries int, baseDelay float64) *Registry {
	return &Registry{repo: repo, maxRetries: maxRetries, baseDelay: baseDelay}
}

// Get returns the current value of key as an any (int for max_retries,
// float64 for base_delay).
func (r *Registry) Get(key string) (any, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	switch key {
	case KeyMaxRetries:
		return r.maxRetries, nil
	case KeyBaseDelay:
		return r.baseDelay, nil
	default:
		return nil, ErrUnknownKey
	}
}

// MaxRetries returns the current ceiling, used by enqueue to stamp new jobs.
func (r *Registry) MaxRetries() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.maxRetries
}

// BaseDelay returns the current backoff base.
func (r *Registry) BaseDelay() float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.baseDelay
}

// Set updates key to value. Setting max_retries additionally bulk-applies
// the new ceiling to every already-enqueued row in jobs and dlq, per spec
// §4.3, so existing jobs adopt the new ceiling.
func (r *Registry) Set(ctx context.Context, key string, value float64) error {
	switch key {
	case KeyMaxRetries:
		n := int(value)
		if n < 0 {
			return fmt.Errorf("registry: max_retries must be >= 0")
		}
		r.mu.Lock()
		r.maxRetries = n
		r.mu.Unlock()

		if r.repo != nil {
			patch := jobqueue.Patch{MaxRetries: &n}
			if _, err := r.repo.BulkSet(ctx, jobqueue.CollectionJobs, patch); err != nil {
				return err
			}
			if _, err := r.repo.BulkSet(ctx, jobqueue.CollectionDLQ, patch); err != nil {
				return err
			}
		}
		return nil

	case KeyBaseDelay:
		if value < 1 {
			return fmt.Errorf("registry: base_delay must be >= 1")
		}
		r.mu.Lock()
		r.baseDelay = value
		r.mu.Unlock()
		return nil

	default:
		return ErrUnknownKey
	}
}
