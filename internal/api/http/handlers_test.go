package http

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/GriffinCanCode/TestBench/backend/internal/domain/project"
	"github.com/GriffinCanCode/TestBench/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/TestBench/backend/internal/sandbox"
	"github.com/GriffinCanCode/TestBench/backend/internal/utils"
	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	requests []sandbox.Request
}

func (f *fakeRunner) Run(ctx context.Context, req sandbox.Request) sandbox.Report {
	f.requests = append(f.requests, req)
	return sandbox.Report{
		Success: true,
		Results: []sandbox.TestOutcome{{Name: "stub", Status: sandbox.StatusPass, Logs: []sandbox.LogEntry{}}},
		Logs:    []sandbox.LogEntry{},
	}
}

func (f *fakeRunner) Stats() map[string]interface{} {
	return map[string]interface{}{"size": 1}
}

type fakeGenerator struct {
	out         string
	err         error
	instruction string
}

func (f *fakeGenerator) Generate(ctx context.Context, source string) (string, error) {
	return f.out, f.err
}

func (f *fakeGenerator) GenerateWithInstruction(ctx context.Context, source, instruction string) (string, error) {
	f.instruction = instruction
	return f.out, f.err
}

func (f *fakeGenerator) Name() string { return "fake" }

type testEnv struct {
	router  *gin.Engine
	runner  *fakeRunner
	store   *project.MemoryStore
	metrics *monitoring.Metrics
}

func newTestEnv(t *testing.T, gen *fakeGenerator) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &testEnv{
		runner:  &fakeRunner{},
		store:   project.NewMemoryStore(),
		metrics: monitoring.NewMetrics(),
	}

	var h *Handlers
	if gen != nil {
		h = NewHandlers(env.runner, env.store, gen, NewHandlerMetrics(env.metrics), nil)
	} else {
		h = NewHandlers(env.runner, env.store, nil, NewHandlerMetrics(env.metrics), nil)
	}

	env.router = gin.New()
	h.Register(env.router)
	return env
}

func (e *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), v))
}

func TestRootAndHealth(t *testing.T) {
	env := newTestEnv(t, &fakeGenerator{})

	w := env.do(http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"service":"TestBench"`)

	w = env.do(http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	var health map[string]interface{}
	decode(t, w, &health)
	assert.Equal(t, "healthy", health["status"])
	assert.Equal(t, map[string]interface{}{"enabled": true, "projects": float64(0)}, health["store"])
	assert.Equal(t, "fake", health["generator"].(map[string]interface{})["provider"])
}

func TestRun(t *testing.T) {
	env := newTestEnv(t, nil)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"valid", `{"code":"var a = 1;","testCode":"it('x', () => {})"}`, http.StatusOK},
		{"empty pair still runs", `{}`, http.StatusOK},
		{"malformed", `{"code":`, http.StatusBadRequest},
		{"no body", ``, http.StatusBadRequest},
		{"oversized code", `{"code":"` + strings.Repeat("a", utils.MaxCodeSize+1) + `"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(http.MethodPost, "/run", tt.body)
			assert.Equal(t, tt.status, w.Code)
			if tt.status != http.StatusOK {
				assert.Contains(t, w.Body.String(), `"error"`)
			}
		})
	}

	require.Len(t, env.runner.requests, 2)
	assert.Equal(t, "var a = 1;", env.runner.requests[0].SourceCode)
	assert.Equal(t, "it('x', () => {})", env.runner.requests[0].TestCode)
}

func TestRunWithRealHost(t *testing.T) {
	gin.SetMode(gin.TestMode)
	host := sandbox.NewHost(sandbox.DefaultConfig(), nil)
	defer host.Close()

	router := gin.New()
	NewHandlers(host, nil, nil, nil, nil).Register(router)

	body := `{"code":"function add(a, b) { return a + b; }","testCode":"it('adds', () => { expect(add(1, 2)).toBe(3); }); it('fails', () => { expect(add(1, 1)).toBe(3); });"}`
	req := httptest.NewRequest(http.MethodPost, "/run", bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var report sandbox.Report
	decode(t, w, &report)
	assert.True(t, report.Success)
	require.Len(t, report.Results, 2)
	assert.Equal(t, sandbox.StatusPass, report.Results[0].Status)
	assert.Equal(t, sandbox.StatusFail, report.Results[1].Status)
	assert.Equal(t, "Expected 3 but got 2", report.Results[1].Error)

	// Without a store the project routes are not mounted
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/projects", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGenerate(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		env := newTestEnv(t, nil)
		w := env.do(http.MethodPost, "/generate", `{"code":"x"}`)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("suite", func(t *testing.T) {
		gen := &fakeGenerator{out: "it('a', () => {});"}
		env := newTestEnv(t, gen)

		w := env.do(http.MethodPost, "/generate", `{"code":"function f() {}"}`)
		require.Equal(t, http.StatusOK, w.Code)

		var resp map[string]string
		decode(t, w, &resp)
		assert.Equal(t, "it('a', () => {});", resp["testCode"])
		assert.Empty(t, gen.instruction)
	})

	t.Run("instruction", func(t *testing.T) {
		gen := &fakeGenerator{out: "it('b', () => {});"}
		env := newTestEnv(t, gen)

		w := env.do(http.MethodPost, "/generate", `{"code":"function f() {}","instruction":"edge cases"}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "edge cases", gen.instruction)
	})

	t.Run("provider failure", func(t *testing.T) {
		env := newTestEnv(t, &fakeGenerator{err: errors.New("quota exceeded")})
		w := env.do(http.MethodPost, "/generate", `{"code":"x"}`)
		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Contains(t, w.Body.String(), "quota exceeded")
	})

	t.Run("invalid input", func(t *testing.T) {
		env := newTestEnv(t, &fakeGenerator{err: &utils.ValidationError{Field: "code", Message: "too big"}})
		w := env.do(http.MethodPost, "/generate", `{"code":"x"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestProjectLifecycle(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(http.MethodPost, "/projects", `{"name":"adder","code":"function add(a, b) { return a + b; }","testCode":"it('adds', () => {})"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var created project.Project
	decode(t, w, &created)
	assert.Equal(t, "adder", created.Name)
	assert.Equal(t, project.LanguageJavaScript, created.Language)
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.Projects))

	w = env.do(http.MethodGet, "/projects", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Projects []project.Project `json:"projects"`
		Count    int               `json:"count"`
	}
	decode(t, w, &list)
	assert.Equal(t, 1, list.Count)

	w = env.do(http.MethodGet, "/projects/"+created.ID, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodPut, "/projects/"+created.ID, `{"testCode":"it('new', () => {})"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var updated project.Project
	decode(t, w, &updated)
	assert.Equal(t, "it('new', () => {})", updated.TestCode)
	assert.Equal(t, created.Code, updated.Code)

	w = env.do(http.MethodPost, "/projects/"+created.ID+"/run", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, env.runner.requests, 1)
	assert.Equal(t, "it('new', () => {})", env.runner.requests[0].TestCode)

	w = env.do(http.MethodDelete, "/projects/"+created.ID, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0.0, testutil.ToFloat64(env.metrics.Projects))

	w = env.do(http.MethodGet, "/projects/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.ServiceCalls.WithLabelValues("project_store", "create", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.ServiceCalls.WithLabelValues("project_store", "get", "error")))
}

func TestProjectErrors(t *testing.T) {
	env := newTestEnv(t, nil)
	missing := "proj_01ARZ3NDEKTSV4RRFFQ69G5FAV"

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"create without name", http.MethodPost, "/projects", `{"code":"x"}`, http.StatusBadRequest},
		{"create bad language", http.MethodPost, "/projects", `{"name":"x","language":"ruby"}`, http.StatusBadRequest},
		{"create malformed", http.MethodPost, "/projects", `{"name":`, http.StatusBadRequest},
		{"get malformed id", http.MethodGet, "/projects/42", "", http.StatusBadRequest},
		{"get missing", http.MethodGet, "/projects/" + missing, "", http.StatusNotFound},
		{"update missing", http.MethodPut, "/projects/" + missing, `{"name":"y"}`, http.StatusNotFound},
		{"delete missing", http.MethodDelete, "/projects/" + missing, "", http.StatusNotFound},
		{"run missing", http.MethodPost, "/projects/" + missing + "/run", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), `"error"`)
		})
	}
}

func TestStats(t *testing.T) {
	env := newTestEnv(t, nil)
	env.metrics.RunFinished(sandbox.OutcomeCompleted, 10*time.Millisecond, sandbox.Report{
		Success: true,
		Results: []sandbox.TestOutcome{{Name: "a", Status: sandbox.StatusPass}},
	})

	w := env.do(http.MethodGet, "/stats", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Runs monitoring.RunSummary `json:"runs"`
	}
	decode(t, w, &resp)
	assert.Equal(t, int64(1), resp.Runs.Runs)
	assert.Equal(t, int64(1), resp.Runs.TestsPassed)
	assert.InDelta(t, 10.0, resp.Runs.MeanMs, 1e-9)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandlers(env.runner, nil, nil, nil, nil).Register(router)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stats", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
