package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaiso/jira-worklog/internal/config"
	"github.com/shaiso/jira-worklog/internal/domain"
	"github.com/shaiso/jira-worklog/internal/jira"
	"github.com/shaiso/jira-worklog/internal/mq"
	"github.com/shaiso/jira-worklog/internal/repo"
	"github.com/shaiso/jira-worklog/internal/steps"
	"github.com/shaiso/jira-worklog/internal/telemetry"
)

// --- fakes ---

type memStore struct {
	mu    sync.Mutex
	items map[uuid.UUID]domain.Invocation
	order []uuid.UUID
}

func newMemStore() *memStore {
	return &memStore{items: make(map[uuid.UUID]domain.Invocation)}
}

func (s *memStore) Create(_ context.Context, inv *domain.Invocation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[inv.ID] = *inv
	s.order = append(s.order, inv.ID)
	return nil
}

func (s *memStore) Update(_ context.Context, inv *domain.Invocation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[inv.ID]; !ok {
		return repo.ErrNotFound
	}
	s.items[inv.ID] = *inv
	return nil
}

func (s *memStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Invocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.items[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &inv, nil
}

func (s *memStore) List(_ context.Context, filter repo.InvocationFilter) ([]domain.Invocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Invocation
	for _, id := range s.order {
		inv := s.items[id]
		if filter.Status != "" && inv.Status != filter.Status {
			continue
		}
		out = append(out, inv)
	}
	return out, nil
}

type recordingPublisher struct {
	invokes []mq.InvokePayload
}

func (p *recordingPublisher) PublishInvoke(_ context.Context, payload mq.InvokePayload) error {
	p.invokes = append(p.invokes, payload)
	return nil
}

// --- helpers ---

func jiraEnv(t *testing.T, status int, body string) config.MapEnv {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	return config.MapEnv{
		jira.EnvProtocol: u.Scheme,
		jira.EnvHost:     u.Hostname(),
		jira.EnvPort:     u.Port(),
		jira.EnvUser:     "bob",
		jira.EnvPassword: "secret",
	}
}

func newServer(t *testing.T, cfg Config) *httptest.Server {
	t.Helper()
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	if cfg.Registry == nil {
		cfg.Registry = steps.DefaultRegistry()
	}

	mux := http.NewServeMux()
	NewHandler(cfg).RegisterRoutes(mux)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, srv *httptest.Server, path string, body any) (*http.Response, InvocationResponse) {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(srv.URL+path, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out struct {
		Data InvocationResponse `json:"data"`
	}
	if resp.StatusCode < 300 {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp, out.Data
}

const invokePath = "/api/v1/steps/jira.worklog.update/invocations"

// --- tests ---

func TestCreateInvocation_Succeeded(t *testing.T) {
	store := newMemStore()
	srv := newServer(t, Config{
		Env:   jiraEnv(t, http.StatusOK, `{"id":"100","self":"http://x","author":{"name":"bob"},"timeSpent":"1h"}`),
		Store: store,
	})

	resp, inv := post(t, srv, invokePath, CreateInvocationRequest{
		Inputs: map[string]any{"issue": "PRJ-1", "worklogId": []any{"100"}},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, "SUCCEEDED", inv.Status)
	assert.Equal(t, map[string]any{"id": "100", "self": "http://x", "author": "bob", "timeSpent": "1h"}, inv.Result)
	assert.Equal(t, []any{"PRJ-1"}, inv.Inputs["issue"])

	stored, err := store.GetByID(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvocationStatusSucceeded, stored.Status)
}

func TestCreateInvocation_Forbidden(t *testing.T) {
	srv := newServer(t, Config{Env: jiraEnv(t, http.StatusForbidden, `{}`)})

	resp, inv := post(t, srv, invokePath, CreateInvocationRequest{
		Inputs: map[string]any{"issue": "PRJ-1", "worklogId": "100"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, "FAILED", inv.Status)
	assert.Equal(t, jira.KindAuthorization, inv.ErrorKind)
	assert.Contains(t, inv.Error, "403")
	assert.Nil(t, inv.Result)
}

func TestCreateInvocation_MissingInputs(t *testing.T) {
	srv := newServer(t, Config{Env: jiraEnv(t, http.StatusOK, `{}`)})

	resp, inv := post(t, srv, invokePath, CreateInvocationRequest{Inputs: map[string]any{}})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, "FAILED", inv.Status)
	assert.Equal(t, jira.KindInput, inv.ErrorKind)
	assert.Equal(t, steps.InputMessage, inv.Error)
}

func TestCreateInvocation_UnknownStep(t *testing.T) {
	srv := newServer(t, Config{})

	resp, _ := post(t, srv, "/api/v1/steps/jira.issue.delete/invocations", CreateInvocationRequest{})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateInvocation_InvalidBody(t *testing.T) {
	srv := newServer(t, Config{})

	resp, err := http.Post(srv.URL+invokePath, "application/json", bytes.NewReader([]byte("{")))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateInvocation_Async(t *testing.T) {
	store := newMemStore()
	pub := &recordingPublisher{}
	srv := newServer(t, Config{Store: store, Publisher: pub})

	resp, inv := post(t, srv, invokePath, CreateInvocationRequest{
		Inputs: map[string]any{"issue": "PRJ-1", "worklogId": "100"},
		Async:  true,
	})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, "PENDING", inv.Status)

	require.Len(t, pub.invokes, 1)
	assert.Equal(t, inv.ID, pub.invokes[0].InvocationID)
	assert.Equal(t, steps.StepTypeWorklogUpdate, pub.invokes[0].StepType)

	stored, err := store.GetByID(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvocationStatusPending, stored.Status)
}

func TestCreateInvocation_AsyncWithoutQueue(t *testing.T) {
	srv := newServer(t, Config{})

	resp, _ := post(t, srv, invokePath, CreateInvocationRequest{Async: true})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestGetInvocation(t *testing.T) {
	store := newMemStore()
	inv := domain.NewInvocation(steps.StepTypeWorklogUpdate, nil)
	inv.MarkRunning()
	inv.MarkFailed("403: denied", jira.KindAuthorization)
	require.NoError(t, store.Create(context.Background(), inv))

	srv := newServer(t, Config{Store: store})

	resp, err := http.Get(srv.URL + "/api/v1/invocations/" + inv.ID.String())
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Data InvocationResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, inv.ID, out.Data.ID)
	assert.Equal(t, "FAILED", out.Data.Status)
	assert.Equal(t, jira.KindAuthorization, out.Data.ErrorKind)

	tests := []struct {
		path   string
		status int
	}{
		{"/api/v1/invocations/" + uuid.NewString(), http.StatusNotFound},
		{"/api/v1/invocations/not-a-uuid", http.StatusBadRequest},
	}
	for _, tt := range tests {
		resp, err := http.Get(srv.URL + tt.path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, tt.status, resp.StatusCode, tt.path)
	}
}

func TestListInvocations(t *testing.T) {
	store := newMemStore()
	for _, status := range []domain.InvocationStatus{domain.InvocationStatusSucceeded, domain.InvocationStatusFailed} {
		inv := domain.NewInvocation(steps.StepTypeWorklogUpdate, nil)
		inv.Status = status
		require.NoError(t, store.Create(context.Background(), inv))
	}

	srv := newServer(t, Config{Store: store})

	resp, err := http.Get(srv.URL + "/api/v1/invocations?status=FAILED")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Data  []InvocationResponse `json:"data"`
		Total int                  `json:"total"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out.Data, 1)
	assert.Equal(t, "FAILED", out.Data[0].Status)
	assert.Equal(t, 1, out.Total)

	for _, q := range []string{"?status=UNKNOWN", "?limit=-1", "?offset=x"} {
		resp, err := http.Get(srv.URL + "/api/v1/invocations" + q)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, q)
	}
}

func TestInvocationsWithoutStore(t *testing.T) {
	srv := newServer(t, Config{})

	for _, path := range []string{"/api/v1/invocations", "/api/v1/invocations/" + uuid.NewString()} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode, path)
	}
}

func TestListSteps(t *testing.T) {
	srv := newServer(t, Config{})

	resp, err := http.Get(srv.URL + "/api/v1/steps")
	require.NoError(t, err)
	defer resp.Body.Close()

	var out struct {
		Data []StepResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out.Data, 1)
	assert.Equal(t, steps.StepTypeWorklogUpdate, out.Data[0].Type)
	assert.Equal(t, []string{steps.InputIssue, steps.InputWorklogID}, out.Data[0].Required)
	assert.Contains(t, out.Data[0].Env, jira.EnvHost)
}

func TestRecovery(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := Chain(Recovery(logger), Logging(logger))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestLogging_RequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	var fromCtx *slog.Logger
	h := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromCtx = telemetry.FromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(HeaderRequestID, "req-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "req-42", rec.Header().Get(HeaderRequestID))
	require.NotNil(t, fromCtx)
	assert.NotSame(t, logger, fromCtx)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "req-42", entry["request_id"])
	assert.Equal(t, float64(http.StatusTeapot), entry["status"])

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.NotEmpty(t, rec.Header().Get(HeaderRequestID))
}

func TestNormalizeInputs(t *testing.T) {
	got := NormalizeInputs(map[string]any{
		"issue":     "PRJ-1",
		"worklogId": []any{"1", "2"},
		"empty":     nil,
		"number":    float64(7),
	})
	assert.Equal(t, map[string][]any{
		"issue":     {"PRJ-1"},
		"worklogId": {"1", "2"},
		"empty":     nil,
		"number":    {float64(7)},
	}, got)
}
