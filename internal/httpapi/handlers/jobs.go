package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nullforge/queuectl/internal/clock"
	"github.com/nullforge/queuectl/internal/common"
	"github.com/nullforge/queuectl/internal/jobqueue"
)

// jobBody is the wire shape for enqueue/update per spec §6.2: every field
// but id (and command on enqueue) is optional and honoured only when set.
type jobBody struct {
	ID             string  `json:"id"`
	Command        *string `json:"command"`
	State          *string `json:"state"`
	Attempts       *int    `json:"attempts"`
	MaxRetries     *int    `json:"max_retries"`
	Timeout        *int    `json:"timeout"`
	CreatedAt      *string `json:"created_at"`
	UpdatedAt      *string `json:"updated_at"`
	WorkerAssigned *int    `json:"worker_assigned"`
}

// List handles GET /list: optional ?state= filter, 200 with a job array.
func (h *Handler) List(c *gin.Context) {
	filter := jobqueue.Filter{}
	if s := c.Query("state"); s != "" {
		state := jobqueue.State(s)
		filter.State = &state
	}

	jobs, err := h.Engine.Repo.Find(c.Request.Context(), filter)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, jobs)
}

// Enqueue handles POST /enqueue: stamps server-side defaults (spec §4.6),
// honouring client-supplied values for those fields only when non-null.
// state is never one of those fields — enqueue always produces "pending"
// regardless of the request body, per spec §9 Open Question 2.
func (h *Handler) Enqueue(c *gin.Context) {
	var body jobBody
	if err := c.ShouldBindJSON(&body); err != nil {
		common.Fail(c, http.StatusBadRequest, "malformed job body: "+err.Error())
		return
	}
	if body.ID == "" {
		common.Fail(c, http.StatusBadRequest, "id is required")
		return
	}
	if body.Command == nil || *body.Command == "" {
		common.Fail(c, http.StatusBadRequest, "command is required")
		return
	}

	now := clock.Format(h.Engine.Clock.Now())
	job := jobqueue.Job{
		ID:         body.ID,
		Command:    *body.Command,
		State:      jobqueue.StatePending,
		Attempts:   0,
		MaxRetries: h.Engine.Registry.MaxRetries(),
		Timeout:    h.Engine.Config().DefaultJobTimeout,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if body.Attempts != nil {
		job.Attempts = *body.Attempts
	}
	if body.MaxRetries != nil {
		job.MaxRetries = *body.MaxRetries
	}
	if body.Timeout != nil {
		job.Timeout = *body.Timeout
	}
	if body.CreatedAt != nil {
		job.CreatedAt = *body.CreatedAt
	}
	if body.UpdatedAt != nil {
		job.UpdatedAt = *body.UpdatedAt
	}
	if body.WorkerAssigned != nil {
		job.WorkerAssigned = *body.WorkerAssigned
	}

	inserted, err := h.Engine.Repo.Insert(c.Request.Context(), job)
	if err != nil {
		if errors.Is(err, jobqueue.ErrDuplicateID) {
			common.Fail(c, http.StatusBadRequest, err.Error())
			return
		}
		common.Fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"inserted_id": inserted.ID})
}

// Update handles PUT /update: patches the job named by body.id.
func (h *Handler) Update(c *gin.Context) {
	var body jobBody
	if err := c.ShouldBindJSON(&body); err != nil {
		common.Fail(c, http.StatusBadRequest, "malformed job body: "+err.Error())
		return
	}
	if body.ID == "" {
		common.Fail(c, http.StatusBadRequest, "id is required")
		return
	}

	patch := jobqueue.Patch{
		Command:        body.Command,
		Attempts:       body.Attempts,
		MaxRetries:     body.MaxRetries,
		Timeout:        body.Timeout,
		CreatedAt:      body.CreatedAt,
		UpdatedAt:      body.UpdatedAt,
		WorkerAssigned: body.WorkerAssigned,
	}
	if body.State != nil {
		s := jobqueue.State(*body.State)
		patch.State = &s
	}

	_, err := h.Engine.Repo.Update(c.Request.Context(), body.ID, patch)
	if err != nil {
		switch {
		case errors.Is(err, jobqueue.ErrNotFound):
			common.Fail(c, http.StatusNotFound, err.Error())
		case errors.Is(err, jobqueue.ErrNoChange):
			common.Fail(c, http.StatusBadRequest, err.Error())
		default:
			common.Fail(c, http.StatusInternalServerError, err.Error())
		}
		return
	}
	c.Status(http.StatusOK)
}
