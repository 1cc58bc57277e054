package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/nullforge/queuectl/internal/common"
)

// WorkerStart handles GET /worker/start?num_workers=N: spawns the pool.
func (h *Handler) WorkerStart(c *gin.Context) {
	n := 1
	if raw := c.Query("num_workers"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			common.Fail(c, http.StatusBadRequest, "num_workers must be a positive integer")
			return
		}
		n = parsed
	}

	if err := h.Engine.Pool.Start(n); err != nil {
		common.Fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"started": n})
}

// WorkerStop handles GET /worker/stop: raises the cooperative stop signal
// and blocks until the graceful reset has run.
func (h *Handler) WorkerStop(c *gin.Context) {
	if err := h.Engine.Pool.Stop(c.Request.Context()); err != nil {
		common.Fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.Status(http.StatusOK)
}
