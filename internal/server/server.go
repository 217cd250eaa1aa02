// Package server exposes trending views over HTTP.
//
// Routes:
//
//	GET  /health        liveness
//	GET  /api/snapshot  metadata of the cached snapshot
//	GET  /api/videos    ranked view (?view=&origin=&limit=)
//	POST /api/refresh   invalidate and refetch, rate limited
//	GET  /metrics       Prometheus scrape, when a handler is configured
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/gauthierbraillon/trendmix/internal/aggregator"
)

// StaleHeader is set on responses served from a snapshot whose refresh failed.
const StaleHeader = "X-Trendmix-Stale"

const shutdownTimeout = 30 * time.Second

// SnapshotSource is the fetch cache. *cache.Cache implements it.
type SnapshotSource interface {
	Fetch(ctx context.Context, forceRefresh bool) (*aggregator.Snapshot, error)
}

// Sanitizer strips markup from upstream text.
type Sanitizer interface {
	Sanitize(text string) string
}

// Options configures a Server.
type Options struct {
	HomeRegion           string
	RecentWindow         time.Duration
	RisingWindow         time.Duration
	RefreshRatePerMinute int
	Sanitizer            Sanitizer
	Metrics              http.Handler
	Logger               *slog.Logger
}

// Server serves the HTTP API.
type Server struct {
	source       SnapshotSource
	opts         Options
	sanitizer    Sanitizer
	refresh      *rate.Limiter
	refreshEvery time.Duration
	logger       *slog.Logger
	router       http.Handler
}

type passthrough struct{}

func (passthrough) Sanitize(s string) string { return s }

// New builds a Server and its router.
func New(source SnapshotSource, opts Options) *Server {
	s := &Server{
		source:    source,
		opts:      opts,
		sanitizer: opts.Sanitizer,
		logger:    opts.Logger,
	}
	if s.sanitizer == nil {
		s.sanitizer = passthrough{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	perMinute := opts.RefreshRatePerMinute
	if perMinute < 1 {
		perMinute = 1
	}
	s.refreshEvery = time.Minute / time.Duration(perMinute)
	s.refresh = rate.NewLimiter(rate.Every(s.refreshEvery), perMinute)

	s.router = s.routes()
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(requestLogger(s.logger))
	r.Use(recoverer(s.logger))

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/snapshot", s.handleSnapshot)
		r.Get("/videos", s.handleVideos)
		r.Post("/refresh", s.handleRefresh)
	})
	if s.opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.opts.Metrics)
	}

	return r
}

// ServeHTTP makes Server an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run listens on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}
