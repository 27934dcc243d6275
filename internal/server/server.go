// Package server exposes archived runs and simulator metrics over HTTP.
// It is read-only: runs are produced by cmd/app.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"mm_game/internal/domain"
)

// Server serves the run archive.
type Server struct {
	runs    domain.RunRepository
	metrics http.Handler
}

// New creates a Server. metrics may be nil to omit /metrics.
func New(runs domain.RunRepository, metrics http.Handler) *Server {
	return &Server{runs: runs, metrics: metrics}
}

// Router builds the HTTP routes.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","service":"mm_game"}`))
	})

	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/runs", s.ListRuns)
		r.Get("/runs/{runID}", s.GetRun)
		r.Get("/runs/{runID}/log", s.GetRunLog)
	})
	return r
}

// ListRuns handles GET /api/v1/runs?limit=N
func (s *Server) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	runs, err := s.runs.ListRuns(r.Context(), limit)
	if err != nil {
		slog.Error("Failed to list runs", slog.Any("error", err))
		writeError(w, "failed to list runs", http.StatusInternalServerError)
		return
	}
	writeJSON(w, runs)
}

// GetRun handles GET /api/v1/runs/{runID}
func (s *Server) GetRun(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, rec)
}

// GetRunLog handles GET /api/v1/runs/{runID}/log and streams the day log.
func (s *Server) GetRunLog(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if rec.LogPath == "" {
		writeError(w, "run has no day log", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/x-ndjson")
	http.ServeFile(w, r, rec.LogPath)
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*domain.RunRecord, bool) {
	runID := chi.URLParam(r, "runID")

	rec, err := s.runs.GetRun(r.Context(), runID)
	if errors.Is(err, domain.ErrRunNotFound) {
		writeError(w, "run not found", http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		slog.Error("Failed to load run", slog.String("run_id", runID), slog.Any("error", err))
		writeError(w, "failed to load run", http.StatusInternalServerError)
		return nil, false
	}
	return rec, true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
