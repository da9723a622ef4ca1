// Package dashboard serves the employee status and sensor feed pages. Every
// page request runs its render pass from scratch.
package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/speedwagon-io/vitaldash/internal/config"
	"github.com/speedwagon-io/vitaldash/internal/feed"
	"github.com/speedwagon-io/vitaldash/internal/health"
	"github.com/speedwagon-io/vitaldash/internal/history"
	"github.com/speedwagon-io/vitaldash/internal/lib/logger/sl"
	"github.com/speedwagon-io/vitaldash/internal/metrics"
	"github.com/speedwagon-io/vitaldash/internal/status"
)

type Server struct {
	log          *slog.Logger
	cfg          config.HTTPConfig
	roster       *config.Roster
	normalizer   *status.Normalizer
	renderer     *feed.Renderer
	history      history.Store
	historyLimit int
	metrics      *metrics.Metrics
	health       *health.Handler
	server       *http.Server
}

type Option func(*Server)

// WithHistory exposes the snapshot store under /api/history.
func WithHistory(store history.Store, limit int) Option {
	return func(s *Server) {
		s.history = store
		s.historyLimit = limit
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

func WithHealth(h *health.Handler) Option {
	return func(s *Server) {
		s.health = h
	}
}

func NewServer(
	log *slog.Logger,
	cfg config.HTTPConfig,
	roster *config.Roster,
	normalizer *status.Normalizer,
	renderer *feed.Renderer,
	opts ...Option,
) *Server {
	s := &Server{
		log:          log,
		cfg:          cfg,
		roster:       roster,
		normalizer:   normalizer,
		renderer:     renderer,
		historyLimit: 50,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleEmployees)
	r.Get("/sensors", s.handleSensors)
	r.Get("/employee", s.handleEmployee)

	r.Route("/api", func(r chi.Router) {
		r.Get("/employees", s.handleEmployeesJSON)
		r.Get("/sensors", s.handleSensorsJSON)
		r.Get("/history", s.handleHistory)
	})

	if s.health != nil {
		s.health.Register(r)
	}
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         s.cfg.Address,
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	s.log.Info("starting dashboard server", slog.String("address", s.cfg.Address))

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		s.log.Error("failed to stop dashboard server", sl.Err(err))
		return err
	}

	s.log.Info("dashboard server stopped")
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug("http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("duration", time.Since(start)),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
