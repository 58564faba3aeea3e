// Package codec registers a JSON wire codec for gRPC. The retrieval corpus
// carries no generated protobuf stubs for this service surface, so instead
// of hand-rolling a binary wire format this package leans on grpc-go's
// pluggable encoding.Codec hook (google.golang.org/grpc/encoding) and moves
// the same message structs encoding/json already round-trips for metadb's
// embedded adapter (internal/metadb/embedded's json.Marshal-per-row idiom).
package codec

import (
	"encoding/json"
	"fmt"

	"google.golang.org/grpc/encoding"
)

// Name is the gRPC content-subtype this codec registers under. Clients
// select it with grpc.CallContentSubtype(Name); servers select it with
// grpc.ForceServerCodec(New()).
const Name = "json"

func init() {
	encoding.RegisterCodec(New())
}

// jsonCodec implements encoding.Codec using encoding/json.
type jsonCodec struct{}

// New returns the JSON codec instance registered under Name.
func New() encoding.Codec { return jsonCodec{} }

func (jsonCodec) Marshal(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("rpc/codec: marshal: %w", err)
	}
	return b, nil
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("rpc/codec: unmarshal: %w", err)
	}
	return nil
}

func (jsonCodec) Name() string { return Name }
