// Package handlers implements the HTTP API (C6) of spec §4.6 against the
// Engine's Repository, Registry, and Pool.
package handlers

import (
	"github.com/nullforge/queuectl/internal/engine"
)

// Handler holds the Engine every endpoint acts through, mirroring the
// teacher's single-struct-of-dependencies handler shape.
type Handler struct {
	Engine *engine.Engine
}

// NewHandler builds a Handler wired to eng.
func NewHandler(eng *engine.Engine) *Handler {
	return &Handler{Engine: eng}
}
