package handler

import (
	"context"
	"net/http"
	"time"

	"qualcode/internal/httputil"
)

// Pinger is any dependency the health check can ping (database pool, cache).
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports liveness and dependency status
type HealthHandler struct {
	checks map[string]Pinger
}

// NewHealthHandler creates a health handler probing the named dependencies
func NewHealthHandler(checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// HealthCheck returns 200 when every dependency answers, 503 otherwise
// GET /health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	deps := make(map[string]string, len(h.checks))
	for name, p := range h.checks {
		if err := p.Ping(ctx); err != nil {
			deps[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}

	state := "ok"
	if status != http.StatusOK {
		state = "degraded"
	}
	httputil.RespondJSON(w, status, map[string]any{
		"status":       state,
		"dependencies": deps,
	})
}
