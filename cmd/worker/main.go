// Command worker runs the pool standalone, without the HTTP API, for
// deployments that split API and execution into separate processes sharing
// one store. Graceful shutdown mirrors the teacher's consumer entrypoint:
// signal.NotifyContext plus a bounded wait for in-flight work to drain.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/nullforge/queuectl/internal/config"
	"github.com/nullforge/queuectl/internal/engine"
)

func workerCount() int {
	v := os.Getenv("WORKER_COUNT")
	if v == "" {
		return 2
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 2
	}
	return n
}

func main() {
	cfg := config.Load()
	eng := engine.New(cfg)

	n := workerCount()
	if err := eng.Pool.Start(n); err != nil {
		log.Fatalf("worker: start: %v", err)
	}
	log.Printf("worker: started %d worker(s) against %s", n, cfg.DBDriver)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Printf("worker: shutting down")
	if err := eng.Pool.Stop(context.Background()); err != nil {
		log.Fatalf("worker: stop: %v", err)
	}
}
