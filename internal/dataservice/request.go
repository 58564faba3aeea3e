package dataservice

import "github.com/tracplatform/trac/internal/metadata"

// DatasetWriteRequest carries the header frame of a createDataset or
// updateDataset call (spec.md §4.F). Prior is nil for a create and must
// name the DATA object being updated otherwise.
type DatasetWriteRequest struct {
	Tenant      string
	TagUpdates  []metadata.TagUpdate
	Schema      *metadata.SchemaDefinition
	SchemaID    *metadata.TagSelector
	MimeType    string
	DeclaredSize *int64
	StorageKey  string
	Prior       *metadata.TagSelector
}

// FileWriteRequest is the FILE-object counterpart of DatasetWriteRequest.
type FileWriteRequest struct {
	Tenant       string
	TagUpdates   []metadata.TagUpdate
	Name         string
	Extension    string
	MimeType     string
	DeclaredSize *int64
	StorageKey   string
	Prior        *metadata.TagSelector
}

// ReadRequest carries a readDataset/readFile call's unary parameters.
type ReadRequest struct {
	Tenant   string
	Selector metadata.TagSelector
	MimeType string // requested output format; empty means the storage format
	Offset   int64
	Limit    int64 // 0 means unlimited

	// OnSchema/OnFile, if set, are invoked once the schema or file
	// definition is resolved but before content streaming begins — the RPC
	// boundary (internal/grpcapi) uses these to emit spec.md §4.F's first
	// response frame ahead of the content frames that follow it.
	OnSchema func(*metadata.SchemaDefinition)
	OnFile   func(*metadata.FileDefinition)
}
