package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nullforge/queuectl/internal/common"
	"github.com/nullforge/queuectl/internal/jobqueue"
)

// statusSummary is the wire shape for GET /status.
type statusSummary struct {
	Pending       int64 `json:"pending"`
	Processing    int64 `json:"processing"`
	Completed     int64 `json:"completed"`
	Failed        int64 `json:"failed"`
	Dead          int64 `json:"dead"`
	ActiveWorkers int   `json:"active_workers"`
	PoolRunning   bool  `json:"pool_running"`
	PoolSize      int   `json:"pool_size"`
}

// Status handles GET /status: aggregate state counts plus the cardinality
// of distinct non-zero worker_assigned values among processing rows (spec
// §4.6's definition of active_workers).
func (h *Handler) Status(c *gin.Context) {
	ctx := c.Request.Context()
	summary := statusSummary{
		PoolRunning: h.Engine.Pool.Running(),
		PoolSize:    h.Engine.Pool.Size(),
	}

	counts := map[jobqueue.State]*int64{
		jobqueue.StatePending:    &summary.Pending,
		jobqueue.StateProcessing: &summary.Processing,
		jobqueue.StateCompleted:  &summary.Completed,
		jobqueue.StateFailed:     &summary.Failed,
	}
	for state, dest := range counts {
		s := state
		n, err := h.Engine.Repo.Count(ctx, jobqueue.Filter{State: &s})
		if err != nil {
			common.Fail(c, http.StatusInternalServerError, err.Error())
			return
		}
		*dest = n
	}

	dlq, err := h.Engine.Repo.DLQList(ctx)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	summary.Dead = int64(len(dlq))

	processingState := jobqueue.StateProcessing
	processing, err := h.Engine.Repo.Find(ctx, jobqueue.Filter{State: &processingState})
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	active := make(map[int]struct{})
	for _, j := range processing {
		if j.WorkerAssigned != 0 {
			active[j.WorkerAssigned] = struct{}{}
		}
	}
	summary.ActiveWorkers = len(active)

	c.JSON(http.StatusOK, summary)
}
