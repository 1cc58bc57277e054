package jobqueue

import (
	"context"
	"errors"
	"sync"

	"github.com/nullforge/queuectl/internal/clock"
	"gorm.io/gorm"
)

// claimLock is satisfied by both the in-process mutex and the Redis-backed
// distributed lock (rediscoord.go); it serialises ClaimNextPending the way
// spec §4.2 requires when the store offers no native find-and-modify.
type claimLock interface {
	Lock(ctx context.Context) (unlock func(), err error)
}

type localLock struct{ mu sync.Mutex }

func (l *localLock) Lock(ctx context.Context) (func(), error) {
	l.mu.Lock()
	return l.mu.Unlock, nil
}

// GormRepository implements Repository on top of any gorm-supported engine
// (sqlite for dev/tests, mysql in production — matching the teacher's
// db.Connect(cfg.DBDSN) split). Two tables, jobs and dlq, stand in for the
// two Mongo collections of the source implementation.
type GormRepository struct {
	db    *gorm.DB
	clock clock.Clock
	lock  claimLock
}

// NewGormRepository wires a Repository against an already-open *gorm.DB.
// lock may be nil, in which case claims are serialised by an in-process
// mutex (single API process); pass a Redis-backed lock for multi-process
// deployments sharing one store.
func NewGormRepository(db *gorm.DB, c clock.Clock, lock claimLock) *GormRepository {
	if lock == nil {
		lock = &localLock{}
	}
	return &GormRepository{db: db, clock: c, lock: lock}
}

// Migrate creates/updates the jobs and dlq tables.
func (r *GormRepository) Migrate() error {
	return r.db.AutoMigrate(&Job{}, &DeadJob{})
}

func (r *GormRepository) now() string { return clock.Format(r.clock.Now()) }

func (r *GormRepository) Insert(ctx context.Context, job Job) (Job, error) {
	var existing Job
	err := r.db.WithContext(ctx).Where("id = ?", job.ID).First(&existing).Error
	if err == nil {
		return Job{}, ErrDuplicateID
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return Job{}, err
	}
	if err := r.db.WithContext(ctx).Create(&job).Error; err != nil {
		return Job{}, err
	}
	return job, nil
}

func (r *GormRepository) Update(ctx context.Context, id string, patch Patch) (int, error) {
	var job Job
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrNotFound
		}
		return 0, err
	}

	if patch.IsZero() {
		return 0, ErrNoChange
	}

	before := job
	patch.apply(&job)
	if job == before {
		return 0, ErrNoChange
	}
	job.UpdatedAt = r.now()

	res := r.db.WithContext(ctx).Model(&Job{}).Where("id = ?", id).Save(&job)
	if res.Error != nil {
		return 0, res.Error
	}
	return int(res.RowsAffected), nil
}

func (r *GormRepository) Find(ctx context.Context, filter Filter) ([]Job, error) {
	q := r.db.WithContext(ctx).Order("created_at ASC, id ASC")
	if filter.State != nil {
		q = q.Where("state = ?", *filter.State)
	}
	var jobs []Job
	if err := q.Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *GormRepository) Count(ctx context.Context, filter Filter) (int64, error) {
	q := r.db.WithContext(ctx).Model(&Job{})
	if filter.State != nil {
		q = q.Where("state = ?", *filter.State)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *GormRepository) ClaimNextPending(ctx context.Context, workerID int) (Job, bool, error) {
	unlock, err := r.lock.Lock(ctx)
	if err != nil {
		return Job{}, false, err
	}
	defer unlock()

	var claimed Job
	found := false

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var job Job
		err := tx.Where("state = ?", StatePending).
			Order("created_at ASC, id ASC").
			Limit(1).
			First(&job).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		job.State = StateProcessing
		job.WorkerAssigned = workerID
		job.UpdatedAt = r.now()
		if err := tx.Save(&job).Error; err != nil {
			return err
		}
		claimed = job
		found = true
		return nil
	})
	if err != nil {
		return Job{}, false, err
	}
	return claimed, found, nil
}

func (r *GormRepository) ResetProcessing(ctx context.Context, workerID int, target State) (int64, error) {
	q := r.db.WithContext(ctx).Model(&Job{}).Where("state = ?", StateProcessing)
	if workerID > 0 {
		q = q.Where("worker_assigned = ?", workerID)
	}
	res := q.Updates(map[string]any{
		"state":      target,
		"updated_at": r.now(),
	})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *GormRepository) MoveToDLQ(ctx context.Context, job Job) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing DeadJob
		err := tx.Where("id = ?", job.ID).First(&existing).Error
		if err == nil {
			return tx.Where("id = ?", job.ID).Delete(&Job{}).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		dead := toDeadJob(job)
		if err := tx.Create(&dead).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", job.ID).Delete(&Job{}).Error
	})
}

func (r *GormRepository) DLQList(ctx context.Context) ([]Job, error) {
	var rows []DeadJob
	if err := r.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	jobs := make([]Job, 0, len(rows))
	for _, d := range rows {
		jobs = append(jobs, toJob(d))
	}
	return jobs, nil
}

func (r *GormRepository) DLQFind(ctx context.Context, id string) (Job, bool, error) {
	var d DeadJob
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Job{}, false, nil
	}
	if err != nil {
		return Job{}, false, err
	}
	return toJob(d), true, nil
}

func (r *GormRepository) DLQDelete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&DeadJob{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepository) BulkSet(ctx context.Context, collection Collection, patch Patch) (int64, error) {
	updates := map[string]any{"updated_at": r.now()}
	if patch.MaxRetries != nil {
		updates["max_retries"] = *patch.MaxRetries
	}
	if patch.State != nil {
		updates["state"] = *patch.State
	}
	if len(updates) == 1 {
		return 0, nil
	}

	var res *gorm.DB
	switch collection {
	case CollectionJobs:
		res = r.db.WithContext(ctx).Model(&Job{}).Where("1 = 1").Updates(updates)
	case CollectionDLQ:
		res = r.db.WithContext(ctx).Model(&DeadJob{}).Where("1 = 1").Updates(updates)
	default:
		return 0, errors.New("jobqueue: unknown collection")
	}
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
