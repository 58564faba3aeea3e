package grpcapi

import (
	"net"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"

	rpccodec "github.com/tracplatform/trac/internal/rpc/codec"
	"github.com/tracplatform/trac/internal/rpc/trac"
)

// Server bundles the four hand-authored service descriptors behind a
// single *grpc.Server, following warren's pkg/api.Server shape (embed the
// generated server types, wrap *grpc.Server, Start/Stop lifecycle) minus
// the mTLS credential loading and ensureLeader precondition guard — TRAC
// runs single-node per deployment and has no cluster membership to guard.
type Server struct {
	grpc *grpc.Server
	log  zerolog.Logger
}

// NewServer registers data, metadata, admin and health onto a fresh
// *grpc.Server using the JSON codec registered by internal/rpc/codec.
func NewServer(data trac.DataServiceServer, metadataSvc trac.MetadataServiceServer, adminSvc trac.AdminServiceServer, healthSvc trac.HealthServer, log zerolog.Logger) *Server {
	grpcServer := grpc.NewServer(grpc.ForceServerCodec(rpccodec.New()))
	grpcServer.RegisterService(&trac.DataService_ServiceDesc, data)
	grpcServer.RegisterService(&trac.MetadataService_ServiceDesc, metadataSvc)
	grpcServer.RegisterService(&trac.AdminService_ServiceDesc, adminSvc)
	grpcServer.RegisterService(&trac.Health_ServiceDesc, healthSvc)
	return &Server{grpc: grpcServer, log: log}
}

// Start listens on addr and serves until Stop is called or Serve errors.
func (s *Server) Start(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.log.Info().Str("addr", addr).Msg("grpc api listening")
	return s.grpc.Serve(lis)
}

// Serve runs the gRPC server over an already-open listener (used directly
// by tests against an in-memory bufconn.Listener; Start is the production
// entry point that also owns the net.Listen call).
func (s *Server) Serve(lis net.Listener) error {
	return s.grpc.Serve(lis)
}

// Stop gracefully drains in-flight RPCs before returning.
func (s *Server) Stop() {
	if s.grpc != nil {
		s.grpc.GracefulStop()
	}
}
