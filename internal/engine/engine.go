// Package engine wires together the Clock, Job Repository, Config Registry,
// Worker Pool, and optional event publisher into one value constructed once
// at process start, replacing the source's module-level globals (config
// dict, stop_event/threads) with a single injected dependency set (Design
// Notes §9).
package engine

import (
	"log"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/nullforge/queuectl/internal/clock"
	"github.com/nullforge/queuectl/internal/config"
	"github.com/nullforge/queuectl/internal/db"
	"github.com/nullforge/queuectl/internal/jobqueue"
	"github.com/nullforge/queuectl/internal/registry"
	"github.com/nullforge/queuectl/internal/worker"
	"github.com/redis/go-redis/v9"
)

// Engine bundles the dependencies every HTTP handler and the standalone
// worker process act through.
type Engine struct {
	Clock    clock.Clock
	Repo     jobqueue.Repository
	Registry *registry.Registry
	Pool     *worker.Pool
	Events   worker.EventPublisher

	cfg config.Config
}

// New builds an Engine from cfg: opens the store, migrates it, wires an
// optional Redis claim lock and an optional Rabbit event publisher, and
// constructs the registry and pool around them.
func New(cfg config.Config) *Engine {
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.SentryDSN}); err != nil {
			log.Printf("engine: sentry init failed: %v", err)
		} else {
			log.Printf("engine: reporting panics and crashes to sentry")
		}
	}

	c := clock.New()
	gdb := db.Connect(cfg.DBDriver, cfg.DBDSN)

	var lock *jobqueue.RedisLock
	if cfg.RedisAddr != "" {
		rc := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		lock = jobqueue.NewRedisLock(rc, "queuectl:claim-lock")
		log.Printf("engine: using redis claim lock at %s", cfg.RedisAddr)
	}

	var repo *jobqueue.GormRepository
	if lock != nil {
		repo = jobqueue.NewGormRepository(gdb, c, lock)
	} else {
		repo = jobqueue.NewGormRepository(gdb, c, nil)
	}
	if err := repo.Migrate(); err != nil {
		log.Fatalf("engine: migrate: %v", err)
	}

	reg := registry.New(repo, cfg.DefaultMaxRetries, cfg.DefaultBaseDelay)

	var events worker.EventPublisher
	if cfg.RabbitURL != "" {
		pub, err := worker.NewRabbitEventPublisher(cfg.RabbitURL, cfg.RabbitExchange)
		if err != nil {
			log.Printf("engine: rabbit event publisher unavailable: %v", err)
		} else {
			events = pub
			log.Printf("engine: publishing job lifecycle events to %s", cfg.RabbitExchange)
		}
	}

	pool := worker.New(repo, reg, events, time.Duration(cfg.WorkerPollInterval)*time.Second)

	return &Engine{
		Clock:    c,
		Repo:     repo,
		Registry: reg,
		Pool:     pool,
		Events:   events,
		cfg:      cfg,
	}
}

// Config returns the settings the Engine was built from.
func (e *Engine) Config() config.Config { return e.cfg }
