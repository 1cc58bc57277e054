// Command server runs the HTTP API (C6) over a freshly-built Engine.
package main

import (
	"log"

	"github.com/nullforge/queuectl/internal/config"
	"github.com/nullforge/queuectl/internal/engine"
	"github.com/nullforge/queuectl/internal/httpapi"
)

func main() {
	cfg := config.Load()
	eng := engine.New(cfg)

	r := httpapi.NewRouter(eng)
	log.Printf("server: listening on %s", cfg.HTTPAddr)
	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatalf("server: %v", err)
	}
}
