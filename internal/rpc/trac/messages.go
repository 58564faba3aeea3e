// Package trac hand-authors the request/response message types and gRPC
// service descriptors for TRAC's metadata/data and admin surfaces. No
// protoc run backs this package — the retrieval corpus carries no .proto
// toolchain anywhere in its dependency graph — so these structs stand in
// for what protoc-gen-go / protoc-gen-go-grpc would otherwise generate from
// proto/trac/*.proto, moved over the wire by internal/rpc/codec's JSON
// codec rather than protobuf's binary wire format.
package trac

import "github.com/tracplatform/trac/internal/metadata"

// DatasetWriteHeader is the first message a CreateDataset/UpdateDataset/
// CreateFile/UpdateFile client-streaming call sends; every following
// message on that stream carries only a Content chunk.
type DatasetWriteHeader struct {
	Tenant       string               `json:"tenant"`
	TagUpdates   []metadata.TagUpdate `json:"tagUpdates,omitempty"`
	Schema       *metadata.SchemaDefinition `json:"schema,omitempty"`
	SchemaID     *metadata.TagSelector      `json:"schemaId,omitempty"`
	MimeType     string               `json:"mimeType"`
	DeclaredSize *int64               `json:"declaredSize,omitempty"`
	StorageKey   string               `json:"storageKey"`
	Prior        *metadata.TagSelector `json:"prior,omitempty"`
}

// FileWriteHeader is CreateFile/UpdateFile's first-message counterpart.
type FileWriteHeader struct {
	Tenant       string               `json:"tenant"`
	TagUpdates   []metadata.TagUpdate `json:"tagUpdates,omitempty"`
	Name         string               `json:"name"`
	Extension    string               `json:"extension"`
	MimeType     string               `json:"mimeType"`
	DeclaredSize *int64               `json:"declaredSize,omitempty"`
	StorageKey   string               `json:"storageKey"`
	Prior        *metadata.TagSelector `json:"prior,omitempty"`
}

// DatasetWriteRequest is one message of a dataset write stream: exactly one
// message in the stream carries Header, every message may carry Content.
type DatasetWriteRequest struct {
	Header  *DatasetWriteHeader `json:"header,omitempty"`
	Content []byte              `json:"content,omitempty"`
}

// FileWriteRequest is the FILE analogue of DatasetWriteRequest.
type FileWriteRequest struct {
	Header  *FileWriteHeader `json:"header,omitempty"`
	Content []byte           `json:"content,omitempty"`
}

// WriteResponse is the single message returned once a write stream closes.
type WriteResponse struct {
	Header metadata.TagHeader `json:"header"`
}

// ReadRequest opens a dataset/file read stream.
type ReadRequest struct {
	Tenant   string               `json:"tenant"`
	Selector metadata.TagSelector `json:"selector"`
	MimeType string               `json:"mimeType,omitempty"`
	Offset   int64                `json:"offset,omitempty"`
	Limit    int64                `json:"limit,omitempty"`
}

// ReadResponse is one message of a read stream: the first message carries
// Schema (dataset reads) or File (file reads) with empty Content, every
// following message carries a Content chunk only.
type ReadResponse struct {
	Header  *metadata.TagHeader        `json:"header,omitempty"`
	Schema  *metadata.SchemaDefinition `json:"schema,omitempty"`
	File    *metadata.FileDefinition   `json:"file,omitempty"`
	Content []byte                     `json:"content,omitempty"`
}
