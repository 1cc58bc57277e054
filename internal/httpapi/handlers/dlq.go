package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nullforge/queuectl/internal/clock"
	"github.com/nullforge/queuectl/internal/common"
	"github.com/nullforge/queuectl/internal/jobqueue"
)

// DLQList handles GET /dlq/list.
func (h *Handler) DLQList(c *gin.Context) {
	jobs, err := h.Engine.Repo.DLQList(c.Request.Context())
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, jobs)
}

// DLQRetry handles POST /dlq/retry?job_id=…: re-enqueues a dead job as
// pending with a reset attempt counter, then removes it from the DLQ.
func (h *Handler) DLQRetry(c *gin.Context) {
	id := c.Query("job_id")
	if id == "" {
		common.Fail(c, http.StatusBadRequest, "job_id is required")
		return
	}

	ctx := c.Request.Context()
	job, ok, err := h.Engine.Repo.DLQFind(ctx, id)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	if !ok {
		common.Fail(c, http.StatusNotFound, jobqueue.ErrNotFound.Error())
		return
	}

	job.State = jobqueue.StatePending
	job.Attempts = 0
	job.WorkerAssigned = 0
	job.UpdatedAt = clock.Format(h.Engine.Clock.Now())

	if _, err := h.Engine.Repo.Insert(ctx, job); err != nil {
		if !errors.Is(err, jobqueue.ErrDuplicateID) {
			common.Fail(c, http.StatusInternalServerError, err.Error())
			return
		}
	}
	if err := h.Engine.Repo.DLQDelete(ctx, id); err != nil && !errors.Is(err, jobqueue.ErrNotFound) {
		common.Fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.Status(http.StatusOK)
}
