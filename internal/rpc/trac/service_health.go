package trac

import (
	"context"

	"google.golang.org/grpc"
)

// HealthCheckRequest names the service to probe; empty means "the server as
// a whole" (grpc.health.v1 convention, mirrored here without that package's
// generated types since this module hand-authors its own stubs).
type HealthCheckRequest struct {
	Service string `json:"service,omitempty"`
}

type ServingStatus string

const (
	StatusUnknown    ServingStatus = "UNKNOWN"
	StatusServing    ServingStatus = "SERVING"
	StatusNotServing ServingStatus = "NOT_SERVING"
)

type HealthCheckResponse struct {
	Status ServingStatus `json:"status"`
}

// HealthServer is the hand-authored stand-in for a generated health.proto
// server interface.
type HealthServer interface {
	Check(context.Context, *HealthCheckRequest) (*HealthCheckResponse, error)
}

type HealthClient interface {
	Check(ctx context.Context, in *HealthCheckRequest, opts ...grpc.CallOption) (*HealthCheckResponse, error)
}

type healthClient struct{ cc grpc.ClientConnInterface }

func NewHealthClient(cc grpc.ClientConnInterface) HealthClient { return &healthClient{cc: cc} }

func (c *healthClient) Check(ctx context.Context, in *HealthCheckRequest, opts ...grpc.CallOption) (*HealthCheckResponse, error) {
	out := new(HealthCheckResponse)
	if err := c.cc.Invoke(ctx, "/trac.Health/Check", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func _Health_Check_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(HealthCheckRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(HealthServer).Check(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/trac.Health/Check"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(HealthServer).Check(ctx, req.(*HealthCheckRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// Health_ServiceDesc registers HealthServer with a *grpc.Server.
var Health_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "trac.Health",
	HandlerType: (*HealthServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Check", Handler: _Health_Check_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "trac/health.proto",
}
