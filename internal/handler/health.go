package handler

import (
	"context"
	"net/http"
	"time"
)

// readinessTimeout bounds all dependency pings of one /readyz call.
const readinessTimeout = 5 * time.Second

// HealthChecker is a dependency that can be pinged.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

type dependency struct {
	name    string
	checker HealthChecker
}

// HealthHandler serves the liveness and readiness endpoints.
type HealthHandler struct {
	deps []dependency
}

// NewHealthHandler creates a HealthHandler for the database and an optional
// cache. A nil checker is reported as "not configured" and does not affect
// readiness.
func NewHealthHandler(db, cache HealthChecker) *HealthHandler {
	return &HealthHandler{deps: []dependency{
		{name: "postgres", checker: db},
		{name: "redis", checker: cache},
	}}
}

// HealthResponse is the body of both health endpoints.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Healthz reports that the process is serving. It checks nothing.
//
// GET /healthz
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Readyz pings every configured dependency and returns 503 if any fails.
//
// GET /readyz
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	resp := HealthResponse{Status: "ok", Checks: make(map[string]string, len(h.deps))}
	code := http.StatusOK

	for _, p := range h.deps {
		switch {
		case p.checker == nil:
			resp.Checks[p.name] = "not configured"
		default:
			if err := p.checker.Ping(ctx); err != nil {
				resp.Checks[p.name] = "error: " + err.Error()
				resp.Status = "unhealthy"
				code = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[p.name] = "ok"
		}
	}

	writeJSON(w, code, resp)
}
