package trac

import (
	"context"

	"google.golang.org/grpc"
)

// CreateTenantRequest provisions a new tenant (spec.md §6 "Admin: tenant
// and dynamic-config CRUD").
type CreateTenantRequest struct {
	TenantID string `json:"tenantId"`
}

type CreateTenantResponse struct {
	TenantID string `json:"tenantId"`
}

type ListTenantsRequest struct{}

type ListTenantsResponse struct {
	TenantIDs []string `json:"tenantIds"`
}

// AdminServiceServer is the hand-authored stand-in for proto/trac/admin.proto's
// generated server interface.
type AdminServiceServer interface {
	CreateTenant(context.Context, *CreateTenantRequest) (*CreateTenantResponse, error)
	ListTenants(context.Context, *ListTenantsRequest) (*ListTenantsResponse, error)
}

// AdminServiceClient is the hand-authored client stub tracctl dials against.
type AdminServiceClient interface {
	CreateTenant(ctx context.Context, in *CreateTenantRequest, opts ...grpc.CallOption) (*CreateTenantResponse, error)
	ListTenants(ctx context.Context, in *ListTenantsRequest, opts ...grpc.CallOption) (*ListTenantsResponse, error)
}

type adminServiceClient struct{ cc grpc.ClientConnInterface }

// NewAdminServiceClient wraps an established *grpc.ClientConn.
func NewAdminServiceClient(cc grpc.ClientConnInterface) AdminServiceClient {
	return &adminServiceClient{cc: cc}
}

func (c *adminServiceClient) CreateTenant(ctx context.Context, in *CreateTenantRequest, opts ...grpc.CallOption) (*CreateTenantResponse, error) {
	out := new(CreateTenantResponse)
	if err := c.cc.Invoke(ctx, "/trac.AdminService/CreateTenant", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *adminServiceClient) ListTenants(ctx context.Context, in *ListTenantsRequest, opts ...grpc.CallOption) (*ListTenantsResponse, error) {
	out := new(ListTenantsResponse)
	if err := c.cc.Invoke(ctx, "/trac.AdminService/ListTenants", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func _AdminService_CreateTenant_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(CreateTenantRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AdminServiceServer).CreateTenant(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/trac.AdminService/CreateTenant"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AdminServiceServer).CreateTenant(ctx, req.(*CreateTenantRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _AdminService_ListTenants_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ListTenantsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AdminServiceServer).ListTenants(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/trac.AdminService/ListTenants"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AdminServiceServer).ListTenants(ctx, req.(*ListTenantsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// AdminService_ServiceDesc registers AdminServiceServer with a *grpc.Server.
var AdminService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "trac.AdminService",
	HandlerType: (*AdminServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateTenant", Handler: _AdminService_CreateTenant_Handler},
		{MethodName: "ListTenants", Handler: _AdminService_ListTenants_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "trac/admin.proto",
}
