// Package codec implements TRAC's pluggable format codecs (spec.md §4.E):
// each codec registers a mime type and exposes a batch decoder (bytes →
// rows) and a batch encoder (rows → bytes), with schema-mismatch semantics
// shared across formats.
package codec

import (
	"context"
	"fmt"
	"io"

	"github.com/tracplatform/trac/internal/metadata"
)

// Kind enumerates codec failure modes, mirroring the subset of spec.md §7
// kinds a codec can itself raise; everything else maps to KindInternal.
type Kind int

const (
	KindInternal Kind = iota
	KindDataLoss
	KindUnimplemented
)

// Error is the typed error every codec returns; internal/grpcapi maps Kind
// onto a gRPC status the same way it maps metadb.Error.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("codec: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("codec: %s", e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

func dataLoss(format string, args ...any) *Error {
	return &Error{Kind: KindDataLoss, Msg: fmt.Sprintf(format, args...)}
}

// NewDataLossError lets callers outside this package (internal/pipeline's
// declared-size check) raise the same DATA_LOSS taxonomy a codec itself
// would raise on a mismatch.
func NewDataLossError(format string, args ...any) *Error {
	return dataLoss(format, args...)
}

func unimplemented(format string, args ...any) *Error {
	return &Error{Kind: KindUnimplemented, Msg: fmt.Sprintf(format, args...)}
}

// Row is one record, one Value per field in schema.Table.Fields order.
type Row []*metadata.Value

// Batch is a contiguous slice of Rows sharing one schema, the unit codecs
// and the pipeline move at a time.
type Batch []Row

// BatchSource is a pull-based decoder: Next returns io.EOF once exhausted.
type BatchSource interface {
	Next(ctx context.Context) (Batch, error)
	Close() error
}

// BatchSink is a push-based encoder.
type BatchSink interface {
	WriteBatch(ctx context.Context, batch Batch) error
	Close() error
}

// Codec is one wire format: CSV, JSON records, Arrow stream, Parquet.
// There is no Arrow file (random-access) codec.
type Codec interface {
	// MimeType is the canonical content type this codec registers, e.g.
	// "text/csv" or "application/vnd.apache.arrow.stream".
	MimeType() string

	// Decoder opens r for incremental batch decoding against schema.
	Decoder(r io.Reader, schema *metadata.SchemaDefinition) (BatchSource, error)

	// Encoder opens w for incremental batch encoding of schema-shaped rows.
	Encoder(w io.Writer, schema *metadata.SchemaDefinition) (BatchSink, error)
}

// Registry resolves a mime type to its Codec, analogous to
// objectstore.Registry's storageKey resolution.
type Registry struct {
	codecs map[string]Codec
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{codecs: make(map[string]Codec)}
}

// Register attaches codec under its own MimeType().
func (r *Registry) Register(c Codec) {
	r.codecs[c.MimeType()] = c
}

// Resolve returns the Codec registered for mimeType, or KindUnimplemented
// if none matches (spec.md §4.E: "unknown format yields UNIMPLEMENTED").
func (r *Registry) Resolve(mimeType string) (Codec, error) {
	c, ok := r.codecs[mimeType]
	if !ok {
		return nil, unimplemented("no codec registered for mime type %q", mimeType)
	}
	return c, nil
}

// checkRowAgainstSchema validates that every field present in row matches
// the schema field's declared type, returning DATA_LOSS on any mismatch —
// shared by the CSV and JSON decode paths.
func checkRowAgainstSchema(row map[string]*metadata.Value, fields []metadata.FieldSchema, allowMissing bool) (Row, error) {
	out := make(Row, len(fields))
	seen := make(map[string]bool, len(row))
	for i, f := range fields {
		v, ok := row[f.FieldName]
		seen[f.FieldName] = true
		if !ok || v == nil {
			if allowMissing || f.Nullable {
				out[i] = nil
				continue
			}
			return nil, dataLoss("field %q missing and not nullable", f.FieldName)
		}
		if v.Type != f.FieldType {
			return nil, dataLoss("field %q: expected %s, got %s", f.FieldName, f.FieldType, v.Type)
		}
		out[i] = v
	}
	for name := range row {
		if !seen[name] {
			return nil, dataLoss("unexpected column %q not present in schema", name)
		}
	}
	return out, nil
}
