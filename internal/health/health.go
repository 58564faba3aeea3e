// Package health implements TRAC's liveness/readiness surface, grounded on
// warren's pkg/api.HealthServer (/health and /ready HTTP endpoints, plain
// JSON bodies) — adapted here to check the metadata DB and object store
// registry instead of warren's Raft leader election, since TRAC has no
// cluster membership of its own.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Check reports one dependency's status: it returns a non-nil error when
// that dependency can't currently serve, and /readyz reports that error's
// text under the check's name.
type Check func(ctx context.Context) error

// Server exposes HTTP /healthz (liveness) and /readyz (readiness), and
// backs the gRPC trac.HealthServer implementation in internal/grpcapi.
type Server struct {
	checks map[string]Check
}

// New builds a health server with the given named readiness checks.
func New(checks map[string]Check) *Server {
	return &Server{checks: checks}
}

// Handler returns the HTTP handler to mount at the gateway.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.liveness)
	mux.HandleFunc("/readyz", s.readiness)
	return mux
}

type livenessResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *Server) liveness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(livenessResponse{Status: "SERVING", Timestamp: time.Now()})
}

type readinessResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

func (s *Server) readiness(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	checks := make(map[string]string, len(s.checks))
	ready := true
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			checks[name] = err.Error()
			ready = false
			continue
		}
		checks[name] = "ok"
	}

	status := "SERVING"
	code := http.StatusOK
	if !ready {
		status = "NOT_SERVING"
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(readinessResponse{Status: status, Timestamp: time.Now(), Checks: checks})
}

// Overall runs every check and reports whether the service as a whole is
// ready; the gRPC health endpoint (internal/grpcapi) uses this directly.
func (s *Server) Overall(ctx context.Context) bool {
	for _, check := range s.checks {
		if err := check(ctx); err != nil {
			return false
		}
	}
	return true
}
