package handler

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const readinessTimeout = 5 * time.Second

// HealthChecker is a dependency that can be pinged for readiness.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the liveness and readiness checks.
type HealthHandler struct {
	deps   map[string]HealthChecker
	logger *slog.Logger
}

// NewHealthHandler checks store and, when non-nil, cache. Check failures are
// logged; the unauthenticated response only says "error".
func NewHealthHandler(store, cache HealthChecker, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{deps: map[string]HealthChecker{"store": store, "redis": cache}, logger: logger}
}

// HealthResponse is the body of both checks.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Healthz reports that the process is serving. GET /healthz
func (h *HealthHandler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Readyz pings every configured dependency in parallel and answers 503 if
// any of them fails. GET /readyz
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	var (
		mu     sync.Mutex
		checks = make(map[string]string, len(h.deps))
	)
	record := func(name, result string) {
		mu.Lock()
		checks[name] = result
		mu.Unlock()
	}

	// Pings never return an error to the group so one failure does not
	// cancel the others.
	var g errgroup.Group
	for name, dep := range h.deps {
		if dep == nil {
			record(name, "not configured")
			continue
		}
		g.Go(func() error {
			if err := dep.Ping(ctx); err != nil {
				h.logger.LogAttrs(ctx, slog.LevelWarn, "readiness check failed",
					slog.String("dependency", name),
					slog.String("error", err.Error()),
				)
				record(name, "error")
			} else {
				record(name, "ok")
			}
			return nil
		})
	}
	_ = g.Wait()

	resp := HealthResponse{Status: "ok", Checks: checks}
	code := http.StatusOK
	for _, result := range checks {
		if result == "error" {
			resp.Status, code = "unhealthy", http.StatusServiceUnavailable
			break
		}
	}
	writeJSON(w, code, resp)
}
