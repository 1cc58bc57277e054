package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/nullforge/queuectl/internal/clock"
	"github.com/nullforge/queuectl/internal/engine"
	"github.com/nullforge/queuectl/internal/httpapi"
	"github.com/nullforge/queuectl/internal/jobqueue"
	"github.com/nullforge/queuectl/internal/registry"
	"github.com/nullforge/queuectl/internal/worker"
)

// newTestRouter builds a router over an in-memory store, bypassing
// engine.New (which opens real env-driven connections) the way the
// teacher's service tests build their own sqlite handle directly.
func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, err := gorm.Open(gormsqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	repo := jobqueue.NewGormRepository(gdb, clock.New(), nil)
	if err := repo.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	reg := registry.New(repo, 3, 2.0)
	pool := worker.New(repo, reg, nil, time.Second)

	eng := &engine.Engine{
		Clock:    clock.New(),
		Repo:     repo,
		Registry: reg,
		Pool:     pool,
	}
	return httpapi.NewRouter(eng)
}

func doRequest(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestEnqueue_StampsDefaults(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(r, http.MethodPost, "/enqueue", map[string]any{
		"id":      "job-1",
		"command": "echo hi",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	listW := doRequest(r, http.MethodGet, "/list", nil)
	var jobs []jobqueue.Job
	if err := json.Unmarshal(listW.Body.Bytes(), &jobs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected 1 job, got %d", len(jobs))
	}
	if jobs[0].State != jobqueue.StatePending || jobs[0].MaxRetries != 3 {
		t.Fatalf("unexpected stamped job: %+v", jobs[0])
	}
}

func TestEnqueue_DuplicateID_Returns400(t *testing.T) {
	r := newTestRouter(t)
	doRequest(r, http.MethodPost, "/enqueue", map[string]any{"id": "dup", "command": "true"})
	w := doRequest(r, http.MethodPost, "/enqueue", map[string]any{"id": "dup", "command": "true"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestUpdate_MissingID_Returns404(t *testing.T) {
	r := newTestRouter(t)
	w := doRequest(r, http.MethodPut, "/update", map[string]any{"id": "nope", "command": "echo"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", w.Code, w.Body.String())
	}
}

func TestUpdate_NoOpPatch_Returns400(t *testing.T) {
	r := newTestRouter(t)
	doRequest(r, http.MethodPost, "/enqueue", map[string]any{"id": "j1", "command": "echo hi"})
	w := doRequest(r, http.MethodPut, "/update", map[string]any{"id": "j1"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for no-op patch, got %d: %s", w.Code, w.Body.String())
	}
}

func TestConfigSetAndGet_RoundTrip(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(r, http.MethodPost, "/config/set", map[string]any{"key": "max_retries", "value": 7})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	getW := doRequest(r, http.MethodGet, "/config/get?key=max_retries", nil)
	var out struct {
		Value float64 `json:"value"`
	}
	if err := json.Unmarshal(getW.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Value != 7 {
		t.Fatalf("expected 7, got %v", out.Value)
	}
}

func TestConfigGet_UnknownKey_Returns400(t *testing.T) {
	r := newTestRouter(t)
	w := doRequest(r, http.MethodGet, "/config/get?key=bogus", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestStatus_ReflectsCounts(t *testing.T) {
	r := newTestRouter(t)
	doRequest(r, http.MethodPost, "/enqueue", map[string]any{"id": "s1", "command": "true"})
	doRequest(r, http.MethodPost, "/enqueue", map[string]any{"id": "s2", "command": "true"})

	w := doRequest(r, http.MethodGet, "/status", nil)
	var s struct {
		Pending int64 `json:"pending"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &s); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if s.Pending != 2 {
		t.Fatalf("expected 2 pending, got %d", s.Pending)
	}
}

func TestDLQRetry_MissingID_Returns404(t *testing.T) {
	r := newTestRouter(t)
	w := doRequest(r, http.MethodPost, "/dlq/retry?job_id=missing", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
