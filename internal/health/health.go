package health

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/speedwagon-io/vitaldash/internal/lib/logger/sl"
)

type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
	StatusDegraded  Status = "degraded"
)

type ComponentHealth struct {
	Name    string `json:"name"`
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
}

type Response struct {
	Status     Status            `json:"status"`
	Components []ComponentHealth `json:"components"`
	Timestamp  time.Time         `json:"timestamp"`
}

type Checker interface {
	Name() string
	Check(ctx context.Context) (Status, string)
}

type Handler struct {
	log      *slog.Logger
	checkers []Checker
	mu       sync.RWMutex
}

func NewHandler(log *slog.Logger) *Handler {
	return &Handler{
		log:      log,
		checkers: make([]Checker, 0),
	}
}

func (h *Handler) AddChecker(checker Checker) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checkers = append(h.checkers, checker)
}

// Register mounts /health, /ready and /live on r.
func (h *Handler) Register(r chi.Router) {
	r.Get("/health", h.handleHealth)
	r.Get("/ready", h.handleOK)
	r.Get("/live", h.handleOK)
}

// Evaluate runs every checker. Any unhealthy component makes the whole
// service unhealthy; a degraded one only degrades it.
func (h *Handler) Evaluate(ctx context.Context) Response {
	h.mu.RLock()
	checkers := make([]Checker, len(h.checkers))
	copy(checkers, h.checkers)
	h.mu.RUnlock()

	response := Response{
		Status:     StatusHealthy,
		Components: make([]ComponentHealth, 0, len(checkers)),
		Timestamp:  time.Now().UTC(),
	}

	for _, checker := range checkers {
		status, message := checker.Check(ctx)
		response.Components = append(response.Components, ComponentHealth{
			Name:    checker.Name(),
			Status:  status,
			Message: message,
		})

		if status == StatusUnhealthy {
			response.Status = StatusUnhealthy
		} else if status == StatusDegraded && response.Status == StatusHealthy {
			response.Status = StatusDegraded
		}
	}

	return response
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	response := h.Evaluate(ctx)

	statusCode := http.StatusOK
	if response.Status == StatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.log.Error("failed to encode health response", sl.Err(err))
	}
}

func (h *Handler) handleOK(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// FeedChecker reports the sensor feed as degraded when its last fetch
// failed; the dashboard still serves its error row in that case.
type FeedChecker struct {
	healthFunc func(ctx context.Context) error
}

func NewFeedChecker(healthFunc func(ctx context.Context) error) *FeedChecker {
	return &FeedChecker{healthFunc: healthFunc}
}

func (c *FeedChecker) Name() string {
	return "feed"
}

func (c *FeedChecker) Check(ctx context.Context) (Status, string) {
	if err := c.healthFunc(ctx); err != nil {
		return StatusDegraded, err.Error()
	}
	return StatusHealthy, ""
}

type HistoryChecker struct {
	countFunc func(ctx context.Context) (int64, error)
}

func NewHistoryChecker(countFunc func(ctx context.Context) (int64, error)) *HistoryChecker {
	return &HistoryChecker{countFunc: countFunc}
}

func (c *HistoryChecker) Name() string {
	return "history"
}

func (c *HistoryChecker) Check(ctx context.Context) (Status, string) {
	count, err := c.countFunc(ctx)
	if err != nil {
		return StatusUnhealthy, err.Error()
	}
	return StatusHealthy, fmt.Sprintf("%d snapshots", count)
}
