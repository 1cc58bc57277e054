package jobqueue

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisLock serialises ClaimNextPending across multiple API/worker
// processes sharing a single store, using a SET NX PX token the way a
// minimal redsync would — the store itself (sqlite/mysql via gorm) has no
// native find-and-modify, so spec §4.2 requires the repository to serialise
// claims through its own lock; this is that lock for the multi-process case.
type RedisLock struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisLock builds a lock keyed under key (e.g. "queuectl:claim-lock").
func NewRedisLock(client *redis.Client, key string) *RedisLock {
	return &RedisLock{client: client, key: key, ttl: 5 * time.Second}
}

func (l *RedisLock) Lock(ctx context.Context) (func(), error) {
	token := uuid.NewString()

	deadline := time.Now().Add(10 * time.Second)
	for {
		ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("jobqueue: redis lock: %w", err)
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("jobqueue: redis lock: timed out waiting for %s", l.key)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(20 * time.Millisecond):
		}
	}

	unlock := func() {
		// best-effort: only clear the key if we still own it.
		script := redis.NewScript(`
			if redis.call("get", KEYS[1]) == ARGV[1] then
				return redis.call("del", KEYS[1])
			end
			return 0
		`)
		_ = script.Run(context.Background(), l.client, []string{l.key}, token).Err()
	}
	return unlock, nil
}
