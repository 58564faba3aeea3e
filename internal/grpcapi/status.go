// Package grpcapi is TRAC's gRPC transport boundary: it wires
// internal/dataservice and internal/metadb into the hand-authored service
// descriptors under internal/rpc/trac, following the shape of warren's
// pkg/api.Server (proto.UnimplementedXServer embed, a backing service
// field, Start/Stop lifecycle) with the mTLS-cert-loading and Raft
// leader-election guard dropped — TRAC has no cluster membership to guard.
package grpcapi

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/tracplatform/trac/internal/codec"
	"github.com/tracplatform/trac/internal/metadb"
)

// toStatus maps metadb.Error/codec.Error onto the gRPC status codes named
// in spec.md §7. A metadb.Error is sent as its Msg only, without the
// wrapped backend error, and anything else falls back to codes.Internal
// with a generic message, so a driver/storage error never leaks a raw
// message to a client.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	var dbErr *metadb.Error
	if errors.As(err, &dbErr) {
		return status.Error(metadbCode(dbErr.Kind), dbErr.Msg)
	}
	var codecErr *codec.Error
	if errors.As(err, &codecErr) {
		return status.Error(codecCode(codecErr.Kind), codecErr.Error())
	}
	return status.Error(codes.Internal, "internal error")
}

func metadbCode(k metadb.Kind) codes.Code {
	switch k {
	case metadb.KindNotFound:
		return codes.NotFound
	case metadb.KindAlreadyExists:
		return codes.AlreadyExists
	case metadb.KindInvalidArgument, metadb.KindWrongType:
		return codes.InvalidArgument
	case metadb.KindFailedPrecondition:
		return codes.FailedPrecondition
	case metadb.KindUnavailable:
		return codes.Unavailable
	case metadb.KindDeadlineExceeded:
		return codes.DeadlineExceeded
	default:
		return codes.Internal
	}
}

func codecCode(k codec.Kind) codes.Code {
	switch k {
	case codec.KindDataLoss:
		return codes.DataLoss
	case codec.KindUnimplemented:
		return codes.Unimplemented
	default:
		return codes.Internal
	}
}
