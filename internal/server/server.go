// Package server runs the preview side of the builder: it serves the
// built output tree, rebuilds when content changes, and exposes status,
// history, and metrics endpoints.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/perjones/mdblog/internal/config"
	"github.com/perjones/mdblog/internal/history"
	"github.com/perjones/mdblog/internal/logfields"
	"github.com/perjones/mdblog/internal/metrics"
	"github.com/perjones/mdblog/internal/routes"
	"github.com/perjones/mdblog/internal/site"
)

// Options wires the server to the rest of the application.
type Options struct {
	// Rebuild runs one full site build and returns its report.
	Rebuild func(ctx context.Context) (*site.Report, error)
	// History is optional; when set, every rebuild is recorded.
	History *history.Store
	// Metrics is optional; when set, /metrics serves its registry.
	Metrics *metrics.PrometheusRecorder
}

// Server serves the built site and coordinates rebuilds. Rebuilds are
// serialized; watcher and scheduler both funnel through triggerRebuild.
type Server struct {
	cfg  *config.Config
	opts Options

	httpServer *http.Server
	rebuildCh  chan string

	mu         sync.RWMutex
	lastReport *site.Report
	startTime  time.Time
}

// New constructs a preview server for the given configuration.
func New(cfg *config.Config, opts Options) *Server {
	s := &Server{
		cfg:       cfg,
		opts:      opts,
		rebuildCh: make(chan string, 1),
		startTime: time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/builds", s.handleBuilds)
	if opts.Metrics != nil {
		mux.Handle("/metrics", opts.Metrics.Handler())
	}

	base := routes.NormalizeBase(cfg.Site.Base)
	fileServer := http.FileServer(http.Dir(cfg.Output.Directory))
	if base != "/" {
		mux.Handle(base+"/", http.StripPrefix(base, fileServer))
		// Site lives under the base; redirect the bare root there.
		mux.Handle("/", http.RedirectHandler(base+"/", http.StatusFound))
	} else {
		mux.Handle("/", fileServer)
	}

	s.httpServer = &http.Server{
		Addr:              cfg.Server.Listen,
		Handler:           logRequests(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Start runs the HTTP listener, the content watcher, and the optional
// periodic rebuild until ctx is canceled.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("Preview server listening",
			slog.String("addr", s.cfg.Server.Listen),
			logfields.Path(s.cfg.Output.Directory))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	// The listener must not outlive Start, whichever path exits it.
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Warn("HTTP server shutdown failed", logfields.Error(err))
		}
	}()

	if s.cfg.Server.WatchEnabled() {
		watcher, err := newContentWatcher(s.cfg.Content.Directory, s.rebuildCh)
		if err != nil {
			return err
		}
		go watcher.run(ctx)
		defer watcher.close()
	}

	interval, err := s.cfg.Server.RebuildIntervalDuration()
	if err != nil {
		return err
	}
	if interval > 0 {
		sched, err := newRebuildScheduler(interval, s.rebuildCh)
		if err != nil {
			return err
		}
		sched.start()
		defer func() {
			if err := sched.stop(); err != nil {
				slog.Warn("Failed to stop rebuild scheduler", logfields.Error(err))
			}
		}()
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errCh:
			return err
		case reason := <-s.rebuildCh:
			s.runBuild(ctx, reason)
		}
	}
}

// Stop shuts the HTTP listener down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// triggerRebuild requests a rebuild; a rebuild already pending absorbs the
// request.
func (s *Server) triggerRebuild(reason string) {
	select {
	case s.rebuildCh <- reason:
	default:
	}
}

// runBuild executes one rebuild and records its outcome.
func (s *Server) runBuild(ctx context.Context, reason string) {
	slog.Info("Rebuilding site", slog.String("reason", reason))

	report, err := s.opts.Rebuild(ctx)
	if err != nil {
		slog.Error("Rebuild failed", logfields.Error(err))
	}

	if report != nil {
		s.mu.Lock()
		s.lastReport = report
		s.mu.Unlock()
		s.recordHistory(ctx, report)
	}
}

func (s *Server) recordHistory(ctx context.Context, report *site.Report) {
	if s.opts.History == nil {
		return
	}
	rec := history.Record{
		BuildID:    report.BuildID,
		StartedAt:  report.StartedAt,
		Duration:   report.Duration,
		Outcome:    report.Outcome,
		Pages:      report.Pages,
		Assets:     report.Assets,
		FailedFile: report.FailedFile,
		Error:      report.Error,
	}
	if err := s.opts.History.Append(ctx, rec); err != nil {
		slog.Warn("Failed to record build history", logfields.Error(err))
	}
}

// SetLastReport seeds the status endpoint with the initial build.
func (s *Server) SetLastReport(ctx context.Context, report *site.Report) {
	s.mu.Lock()
	s.lastReport = report
	s.mu.Unlock()
	s.recordHistory(ctx, report)
}

type statusResponse struct {
	Status    string       `json:"status"`
	UptimeSec int          `json:"uptime_seconds"`
	LastBuild *site.Report `json:"last_build,omitempty"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	last := s.lastReport
	s.mu.RUnlock()

	resp := statusResponse{
		Status:    "ok",
		UptimeSec: int(time.Since(s.startTime).Seconds()),
		LastBuild: last,
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBuilds(w http.ResponseWriter, r *http.Request) {
	if s.opts.History == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "build history not configured"})
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	recs, err := s.opts.History.Recent(r.Context(), limit)
	if err != nil {
		slog.Error("Failed to read build history", logfields.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to read build history"})
		return
	}
	if recs == nil {
		recs = []history.Record{}
	}
	writeJSON(w, http.StatusOK, recs)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// logRequests is the one middleware the preview server needs.
func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("HTTP request",
			slog.String("method", r.Method),
			logfields.Path(r.URL.Path),
			logfields.DurationMS(float64(time.Since(start).Milliseconds())))
	})
}
