package grpcapi

import (
	"context"

	"github.com/tracplatform/trac/internal/health"
	"github.com/tracplatform/trac/internal/rpc/trac"
)

// HealthServer implements trac.HealthServer atop an health.Server.
type HealthServer struct {
	svc *health.Server
}

// NewHealthServer wraps svc as a gRPC HealthServer.
func NewHealthServer(svc *health.Server) *HealthServer {
	return &HealthServer{svc: svc}
}

var _ trac.HealthServer = (*HealthServer)(nil)

func (h *HealthServer) Check(ctx context.Context, req *trac.HealthCheckRequest) (*trac.HealthCheckResponse, error) {
	if h.svc.Overall(ctx) {
		return &trac.HealthCheckResponse{Status: trac.StatusServing}, nil
	}
	return &trac.HealthCheckResponse{Status: trac.StatusNotServing}, nil
}
