// Package gateway bridges REST clients to TRAC's gRPC services, per
// spec.md §4.G: a route table built at boot from built-in service
// routes plus config-driven custom routes and redirects, each bound to a
// hand-written REST↔gRPC translator rather than one generated from
// protoreflect descriptors (this module hand-authors its stubs — see
// DESIGN.md for why protoc isn't run).
package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/tracplatform/trac/internal/config"
	"github.com/tracplatform/trac/internal/rpc/trac"
)

// Server is the gateway's HTTP front door, translating REST calls onto
// the Admin, Health and Metadata gRPC clients it holds — grounded on warren's
// pkg/api health HTTP server (a *http.ServeMux wrapping typed handlers,
// started/stopped alongside the gRPC server it fronts).
type Server struct {
	mux      *http.ServeMux
	admin    trac.AdminServiceClient
	health   trac.HealthClient
	metadata trac.MetadataServiceClient
	log      zerolog.Logger
}

// New builds the gateway's mux from routes, dispatching to admin/health/
// metadata for the RPCs it recognizes. Unknown (Service, RPC) pairs in
// routes are only reachable if a caller hand-wrote a config entry the
// gateway doesn't implement; registering them 404s rather than panicking
// at startup.
func New(routes []Route, admin trac.AdminServiceClient, health trac.HealthClient, metadata trac.MetadataServiceClient, redirects map[string]string, log zerolog.Logger) (*Server, error) {
	s := &Server{mux: http.NewServeMux(), admin: admin, health: health, metadata: metadata, log: log}

	for _, r := range routes {
		handler := s.handlerFor(r)
		if handler == nil {
			log.Warn().Str("service", r.Service).Str("rpc", r.RPC).Msg("gateway: no translator for route, skipping")
			continue
		}
		pattern := r.Method + " " + r.Path
		s.mux.HandleFunc(pattern, handler)
	}

	for from, to := range redirects {
		target := to
		s.mux.HandleFunc(from, func(w http.ResponseWriter, req *http.Request) {
			http.Redirect(w, req, target, http.StatusMovedPermanently)
		})
	}

	return s, nil
}

func (s *Server) handlerFor(r Route) http.HandlerFunc {
	switch r.Service + "/" + r.RPC {
	case "trac.AdminService/CreateTenant":
		return s.createTenant
	case "trac.AdminService/ListTenants":
		return s.listTenants
	case "trac.Health/Check":
		return s.healthCheck
	case "trac.MetadataService/CreateObject":
		return s.createObject
	case "trac.MetadataService/CreateObjectBatch":
		return s.createObjectBatch
	case "trac.MetadataService/UpdateObject":
		return s.updateObject
	case "trac.MetadataService/UpdateTag":
		return s.updateTag
	case "trac.MetadataService/ReadObject":
		return s.readObject
	case "trac.MetadataService/ReadBatch":
		return s.readBatch
	case "trac.MetadataService/Search":
		return s.search
	default:
		return nil
	}
}

// ServeHTTP lets *Server itself be used as an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) createTenant(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TenantID string `json:"tenantId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "INVALID_ARGUMENT", Message: err.Error()})
		return
	}
	resp, err := s.admin.CreateTenant(r.Context(), &trac.CreateTenantRequest{TenantID: body.TenantID})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) listTenants(w http.ResponseWriter, r *http.Request) {
	resp, err := s.admin.ListTenants(r.Context(), &trac.ListTenantsRequest{})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	service := r.URL.Query().Get("service")
	resp, err := s.health.Check(r.Context(), &trac.HealthCheckRequest{Service: service})
	if err != nil {
		writeError(w, err)
		return
	}
	status := http.StatusOK
	if resp.Status != trac.StatusServing {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

func (s *Server) createObject(w http.ResponseWriter, r *http.Request) {
	var req trac.CreateObjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "INVALID_ARGUMENT", Message: err.Error()})
		return
	}
	resp, err := s.metadata.CreateObject(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) createObjectBatch(w http.ResponseWriter, r *http.Request) {
	var req trac.CreateObjectBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "INVALID_ARGUMENT", Message: err.Error()})
		return
	}
	resp, err := s.metadata.CreateObjectBatch(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) updateObject(w http.ResponseWriter, r *http.Request) {
	var req trac.UpdateObjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "INVALID_ARGUMENT", Message: err.Error()})
		return
	}
	resp, err := s.metadata.UpdateObject(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) updateTag(w http.ResponseWriter, r *http.Request) {
	var req trac.UpdateTagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "INVALID_ARGUMENT", Message: err.Error()})
		return
	}
	resp, err := s.metadata.UpdateTag(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) readObject(w http.ResponseWriter, r *http.Request) {
	var req trac.ReadObjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "INVALID_ARGUMENT", Message: err.Error()})
		return
	}
	resp, err := s.metadata.ReadObject(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) readBatch(w http.ResponseWriter, r *http.Request) {
	var req trac.ReadBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "INVALID_ARGUMENT", Message: err.Error()})
		return
	}
	resp, err := s.metadata.ReadBatch(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	var req trac.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "INVALID_ARGUMENT", Message: err.Error()})
		return
	}
	resp, err := s.metadata.Search(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// RouteTable re-exports config.GatewayConfig route building for callers
// that only have a config.Config in hand.
func RouteTable(cfg config.GatewayConfig) ([]Route, error) {
	return BuildRoutes(cfg)
}
