// Package cliclient is the thin HTTP client the CLI (C7) uses to talk to
// the HTTP API (C6), kept separate from cmd/queuectl so it can be unit
// tested against httptest without dragging in cobra.
package cliclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client wraps a base URL and an *http.Client.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New builds a Client against baseURL (e.g. "http://127.0.0.1:8000").
func New(baseURL string) *Client {
	return &Client{BaseURL: baseURL, HTTP: &http.Client{Timeout: 30 * time.Second}}
}

// APIError is returned when the server replies with a non-2xx status; its
// message is the {"detail": ...} body per spec §6.2.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Detail)
}

type detailBody struct {
	Detail string `json:"detail"`
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	u := c.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var d detailBody
		_ = json.Unmarshal(raw, &d)
		return &APIError{Status: resp.StatusCode, Detail: d.Detail}
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return err
		}
	}
	return nil
}

// Job mirrors the wire shape of spec §6.2.
type Job struct {
	ID             string `json:"id"`
	Command        string `json:"command"`
	State          string `json:"state"`
	Attempts       int    `json:"attempts"`
	MaxRetries     int    `json:"max_retries"`
	Timeout        int    `json:"timeout"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
	WorkerAssigned int    `json:"worker_assigned"`
}

// Status mirrors handlers.statusSummary.
type Status struct {
	Pending       int64 `json:"pending"`
	Processing    int64 `json:"processing"`
	Completed     int64 `json:"completed"`
	Failed        int64 `json:"failed"`
	Dead          int64 `json:"dead"`
	ActiveWorkers int   `json:"active_workers"`
	PoolRunning   bool  `json:"pool_running"`
	PoolSize      int   `json:"pool_size"`
}

// List calls GET /list, optionally filtered by state.
func (c *Client) List(ctx context.Context, state string) ([]Job, error) {
	q := url.Values{}
	if state != "" {
		q.Set("state", state)
	}
	var jobs []Job
	if err := c.do(ctx, http.MethodGet, "/list", q, nil, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// EnqueueRequest is the wire body for POST /enqueue. Only ID and Command
// are required; the rest are honoured only when set, per spec §4.6.
type EnqueueRequest struct {
	ID         string `json:"id"`
	Command    string `json:"command"`
	MaxRetries *int   `json:"max_retries,omitempty"`
	Timeout    *int   `json:"timeout,omitempty"`
}

// Enqueue calls POST /enqueue and returns the inserted id.
func (c *Client) Enqueue(ctx context.Context, req EnqueueRequest) (string, error) {
	var out struct {
		InsertedID string `json:"inserted_id"`
	}
	if err := c.do(ctx, http.MethodPost, "/enqueue", nil, req, &out); err != nil {
		return "", err
	}
	return out.InsertedID, nil
}

// UpdatePatch is a partial Job for PUT /update; nil pointer fields are
// omitted from the JSON body so the server leaves them untouched.
type UpdatePatch struct {
	ID             string  `json:"id"`
	Command        *string `json:"command,omitempty"`
	State          *string `json:"state,omitempty"`
	Attempts       *int    `json:"attempts,omitempty"`
	MaxRetries     *int    `json:"max_retries,omitempty"`
	Timeout        *int    `json:"timeout,omitempty"`
	WorkerAssigned *int    `json:"worker_assigned,omitempty"`
}

// Update calls PUT /update.
func (c *Client) Update(ctx context.Context, patch UpdatePatch) error {
	return c.do(ctx, http.MethodPut, "/update", nil, patch, nil)
}

// WorkerStart calls GET /worker/start?num_workers=N.
func (c *Client) WorkerStart(ctx context.Context, n int) error {
	q := url.Values{"num_workers": {fmt.Sprint(n)}}
	return c.do(ctx, http.MethodGet, "/worker/start", q, nil, nil)
}

// WorkerStop calls GET /worker/stop.
func (c *Client) WorkerStop(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/worker/stop", nil, nil, nil)
}

// GetStatus calls GET /status.
func (c *Client) GetStatus(ctx context.Context) (Status, error) {
	var s Status
	err := c.do(ctx, http.MethodGet, "/status", nil, nil, &s)
	return s, err
}

// DLQList calls GET /dlq/list.
func (c *Client) DLQList(ctx context.Context) ([]Job, error) {
	var jobs []Job
	if err := c.do(ctx, http.MethodGet, "/dlq/list", nil, nil, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// DLQRetry calls POST /dlq/retry?job_id=….
func (c *Client) DLQRetry(ctx context.Context, jobID string) error {
	q := url.Values{"job_id": {jobID}}
	return c.do(ctx, http.MethodPost, "/dlq/retry", q, nil, nil)
}

// ConfigGet calls GET /config/get?key=….
func (c *Client) ConfigGet(ctx context.Context, key string) (any, error) {
	q := url.Values{"key": {key}}
	var out struct {
		Key   string `json:"key"`
		Value any    `json:"value"`
	}
	if err := c.do(ctx, http.MethodGet, "/config/get", q, nil, &out); err != nil {
		return nil, err
	}
	return out.Value, nil
}

// ConfigSet calls POST /config/set.
func (c *Client) ConfigSet(ctx context.Context, key string, value float64) error {
	body := map[string]any{"key": key, "value": value}
	return c.do(ctx, http.MethodPost, "/config/set", nil, body, nil)
}
