package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hazz-dev/upreport/internal/storage"
	"github.com/hazz-dev/upreport/internal/uptime"
)

// Store defines the storage queries the server needs.
type Store interface {
	Runs(ctx context.Context, limit int) ([]storage.Run, error)
	RunByID(ctx context.Context, id int64) (*storage.Run, error)
	LatestRun(ctx context.Context) (*storage.Run, error)
	RunResults(ctx context.Context, runID int64) ([]uptime.Result, error)
}

// Server serves stored report runs as JSON.
type Server struct {
	store  Store
	router chi.Router
	logger *slog.Logger
}

// New creates a new Server and registers all routes.
func New(store Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		store:  store,
		router: chi.NewRouter(),
		logger: logger,
	}
	s.registerRoutes()
	return s
}

// Router returns the chi router (for mounting or testing).
func (s *Server) Router() chi.Router {
	return s.router
}

func (s *Server) registerRoutes() {
	r := s.router
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/api/health", s.handleHealth)
	r.Get("/api/runs", s.handleListRuns)
	r.Get("/api/runs/latest", s.handleLatestRun)
	r.Get("/api/runs/{id}", s.handleGetRun)
}

// --- Response helpers ---

type envelope struct {
	Data  interface{} `json:"data"`
	Error string      `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{Data: data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{Error: msg})
}

// --- Handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

type runSummary struct {
	ID         int64  `json:"id"`
	RangeStart string `json:"range_start"`
	RangeEnd   string `json:"range_end"`
	CreatedAt  string `json:"created_at"`
}

func summarize(run storage.Run) runSummary {
	return runSummary{
		ID:         run.ID,
		RangeStart: run.RangeStart.Format(time.RFC3339),
		RangeEnd:   run.RangeEnd.Format(time.RFC3339),
		CreatedAt:  run.CreatedAt.Format(time.RFC3339),
	}
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	const maxLimit = 1000

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit parameter")
			return
		}
		if n > maxLimit {
			n = maxLimit
		}
		limit = n
	}

	runs, err := s.store.Runs(r.Context(), limit)
	if err != nil {
		s.logger.Error("Runs", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	summaries := make([]runSummary, 0, len(runs))
	for _, run := range runs {
		summaries = append(summaries, summarize(run))
	}
	writeJSON(w, http.StatusOK, summaries)
}

type resultRow struct {
	CheckName       string  `json:"check_name"`
	UptimePercent   float64 `json:"uptime_percent"`
	DowntimeMinutes int64   `json:"downtime_minutes"`
	Error           string  `json:"error,omitempty"`
}

type runDetail struct {
	runSummary
	Results []resultRow `json:"results"`
}

func (s *Server) writeRunDetail(w http.ResponseWriter, r *http.Request, run storage.Run) {
	results, err := s.store.RunResults(r.Context(), run.ID)
	if err != nil {
		s.logger.Error("RunResults", "run", run.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	rows := make([]resultRow, 0, len(results))
	for _, res := range results {
		rows = append(rows, resultRow{
			CheckName:       res.CheckName,
			UptimePercent:   res.UptimePercent,
			DowntimeMinutes: res.DowntimeMinutes,
			Error:           res.Error,
		})
	}

	writeJSON(w, http.StatusOK, runDetail{
		runSummary: summarize(run),
		Results:    rows,
	})
}

func (s *Server) handleLatestRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.store.LatestRun(r.Context())
	if err != nil {
		s.logger.Error("LatestRun", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if run == nil {
		writeError(w, http.StatusNotFound, "no runs recorded")
		return
	}
	s.writeRunDetail(w, r, *run)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, "invalid run id")
		return
	}

	run, err := s.store.RunByID(r.Context(), id)
	if err != nil {
		s.logger.Error("RunByID", "run", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if run == nil {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	s.writeRunDetail(w, r, *run)
}

// --- Middleware ---

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration", time.Since(start),
		)
	})
}
