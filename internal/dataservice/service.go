// Package dataservice implements TRAC's createDataset/updateDataset/
// createFile/updateFile/readDataset/readFile orchestration (spec.md §4.F):
// the algorithm that ties the metadata DAL, the object store and the
// streaming pipeline together into one tenant-scoped read/write surface.
package dataservice

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/tracplatform/trac/internal/codec"
	"github.com/tracplatform/trac/internal/metadb"
	"github.com/tracplatform/trac/internal/objectstore"
)

// DefaultStorageFormat is the canonical on-disk codec used for DATA
// objects unless a deployment configures another: the Arrow IPC stream
// format. No Arrow file (random-access) codec is registered, so that format
// cannot be chosen as the storage format.
const DefaultStorageFormat = "application/vnd.apache.arrow.stream"

// Service is the tenant-scoped data plane: one Service instance per tracd
// process, shared across all tenants and RPCs it serves.
type Service struct {
	db     *metadb.DB
	stores *objectstore.Registry
	codecs *codec.Registry

	defaultStorageFormat string
	clock                func() time.Time
	log                  zerolog.Logger
}

// Option customizes New.
type Option func(*Service)

// WithDefaultStorageFormat overrides DefaultStorageFormat.
func WithDefaultStorageFormat(mimeType string) Option {
	return func(s *Service) { s.defaultStorageFormat = mimeType }
}

// WithClock overrides the wall clock, for deterministic tests.
func WithClock(c func() time.Time) Option {
	return func(s *Service) { s.clock = c }
}

// WithLogger attaches a logger; defaults to a disabled logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// New builds a Service over db (metadata), stores (object store backends
// keyed by storageKey) and codecs (format registry).
func New(db *metadb.DB, stores *objectstore.Registry, codecs *codec.Registry, opts ...Option) *Service {
	s := &Service{
		db:                    db,
		stores:                stores,
		codecs:                codecs,
		defaultStorageFormat:  DefaultStorageFormat,
		clock:                 time.Now,
		log:                   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
