package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mm_game/internal/domain"
	"mm_game/internal/infra"
	"mm_game/internal/server"
)

type memoryRuns struct {
	runs []domain.RunRecord
	err  error
}

func (m *memoryRuns) SaveRun(_ context.Context, rec *domain.RunRecord) error {
	m.runs = append(m.runs, *rec)
	return nil
}

func (m *memoryRuns) GetRun(_ context.Context, id string) (*domain.RunRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.runs {
		if m.runs[i].ID == id {
			return &m.runs[i], nil
		}
	}
	return nil, domain.ErrRunNotFound
}

func (m *memoryRuns) ListRuns(_ context.Context, limit int) ([]domain.RunRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	if limit > 0 && limit < len(m.runs) {
		return m.runs[:limit], nil
	}
	return m.runs, nil
}

func do(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestServer_Runs(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "run-1.log")
	if err := os.WriteFile(logPath, []byte(`{"msg":"day","day":0}`+"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	repo := &memoryRuns{runs: []domain.RunRecord{
		{ID: "run-1", Strategy: "simple", FinalCash: "-20", LogPath: logPath},
		{ID: "run-2", Strategy: "spread", FinalCash: "15.5"},
	}}
	router := server.New(repo, nil).Router()

	t.Run("List", func(t *testing.T) {
		w := do(t, router, "/api/v1/runs")
		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", w.Code)
		}
		var runs []domain.RunRecord
		if err := json.NewDecoder(w.Body).Decode(&runs); err != nil {
			t.Fatalf("Failed to decode: %v", err)
		}
		if len(runs) != 2 {
			t.Errorf("Expected 2 runs, got %d", len(runs))
		}
	})

	t.Run("ListLimit", func(t *testing.T) {
		w := do(t, router, "/api/v1/runs?limit=1")
		var runs []domain.RunRecord
		json.NewDecoder(w.Body).Decode(&runs)
		if len(runs) != 1 {
			t.Errorf("Expected 1 run, got %d", len(runs))
		}
	})

	t.Run("BadLimit", func(t *testing.T) {
		if w := do(t, router, "/api/v1/runs?limit=abc"); w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})

	t.Run("Get", func(t *testing.T) {
		w := do(t, router, "/api/v1/runs/run-2")
		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", w.Code)
		}
		var rec domain.RunRecord
		json.NewDecoder(w.Body).Decode(&rec)
		if rec.Strategy != "spread" || rec.FinalCash != "15.5" {
			t.Errorf("Unexpected run: %+v", rec)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		if w := do(t, router, "/api/v1/runs/missing"); w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", w.Code)
		}
	})

	t.Run("Log", func(t *testing.T) {
		w := do(t, router, "/api/v1/runs/run-1/log")
		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), `"day":0`) {
			t.Errorf("Expected day log body, got %q", w.Body.String())
		}
	})

	t.Run("NoLog", func(t *testing.T) {
		if w := do(t, router, "/api/v1/runs/run-2/log"); w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", w.Code)
		}
	})
}

func TestServer_StoreError(t *testing.T) {
	router := server.New(&memoryRuns{err: errors.New("disk gone")}, nil).Router()

	if w := do(t, router, "/api/v1/runs"); w.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", w.Code)
	}
	if w := do(t, router, "/api/v1/runs/x"); w.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", w.Code)
	}
}

func TestServer_Metrics(t *testing.T) {
	m := &infra.Metrics{}
	m.RunStarted()
	m.RunFinished(false)
	router := server.New(&memoryRuns{}, infra.MetricsHandler(infra.NewRegistry(m))).Router()

	w := do(t, router, "/metrics")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "mmgame_") {
		t.Error("Expected mmgame_ metrics in output")
	}

	if w := do(t, router, "/health"); w.Code != http.StatusOK {
		t.Errorf("Expected 200 from /health, got %d", w.Code)
	}
}
