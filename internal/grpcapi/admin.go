package grpcapi

import (
	"context"

	"github.com/tracplatform/trac/internal/admin"
	"github.com/tracplatform/trac/internal/rpc/trac"
)

// AdminServer implements trac.AdminServiceServer atop an admin.Service.
type AdminServer struct {
	svc *admin.Service
}

// NewAdminServer wraps svc as a gRPC AdminServiceServer.
func NewAdminServer(svc *admin.Service) *AdminServer {
	return &AdminServer{svc: svc}
}

var _ trac.AdminServiceServer = (*AdminServer)(nil)

func (a *AdminServer) CreateTenant(ctx context.Context, req *trac.CreateTenantRequest) (*trac.CreateTenantResponse, error) {
	if err := a.svc.CreateTenant(req.TenantID); err != nil {
		return nil, toStatus(err)
	}
	return &trac.CreateTenantResponse{TenantID: req.TenantID}, nil
}

func (a *AdminServer) ListTenants(ctx context.Context, req *trac.ListTenantsRequest) (*trac.ListTenantsResponse, error) {
	ids, err := a.svc.ListTenants()
	if err != nil {
		return nil, toStatus(err)
	}
	return &trac.ListTenantsResponse{TenantIDs: ids}, nil
}
