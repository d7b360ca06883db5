package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

type mockDBChecker struct {
	err error
}

func (m *mockDBChecker) Ping(_ context.Context) error { return m.err }

type mockRunStatus struct {
	done bool
}

func (m *mockRunStatus) Done() bool { return m.done }

func newTestServer(db DBChecker, run RunStatus) *Server {
	return NewServer(":0", db, run, zap.NewNop())
}

func TestHealthz_AlwaysOK(t *testing.T) {
	s := newTestServer(nil, &mockRunStatus{done: false})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()

	s.handleHealthz(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestReadyz_NoRunStatus_NotReady(t *testing.T) {
	s := newTestServer(nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	w := httptest.NewRecorder()

	s.handleReadyz(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
}

func TestReadyz_RunningIsReady(t *testing.T) {
	s := newTestServer(nil, &mockRunStatus{done: false})
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	w := httptest.NewRecorder()

	s.handleReadyz(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	checks := body["checks"].(map[string]any)
	if checks["run"] != "running" {
		t.Errorf("expected run 'running', got %v", checks["run"])
	}
}

func TestReadyz_DoneIsReady(t *testing.T) {
	s := newTestServer(nil, &mockRunStatus{done: true})
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	w := httptest.NewRecorder()

	s.handleReadyz(w, req)

	var body map[string]any
	json.NewDecoder(w.Body).Decode(&body)
	checks := body["checks"].(map[string]any)
	if checks["run"] != "done" {
		t.Errorf("expected run 'done', got %v", checks["run"])
	}
}

func TestReadyz_SnapshotStoreDown(t *testing.T) {
	s := newTestServer(&mockDBChecker{err: context.DeadlineExceeded}, &mockRunStatus{done: true})
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	w := httptest.NewRecorder()

	s.handleReadyz(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
}

func TestReadyz_SnapshotStoreUp(t *testing.T) {
	s := newTestServer(&mockDBChecker{err: nil}, &mockRunStatus{done: true})
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	w := httptest.NewRecorder()

	s.handleReadyz(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}
