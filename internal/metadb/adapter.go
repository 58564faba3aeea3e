package metadb

import (
	"context"
	"time"

	"github.com/tracplatform/trac/internal/metadata"
)

// Adapter is the pluggable storage backend behind DB. Each backend (the
// PostgreSQL adapter in metadb/postgres, the embedded bbolt adapter in
// metadb/embedded) implements the same transactional row operations;
// everything version/selector/invariant related lives once in DB so that
// backends stay interchangeable (grounded on storj metabase's one-Adapter-
// interface-many-backends shape, visible through its adapter_test.go /
// adapter_spanner_test.go split).
type Adapter interface {
	// WithTx runs fn inside a single serializable transaction over the
	// object/object_definition/tag/tag_attr/tag_definition rows for tenant,
	// committing on a nil return and rolling back otherwise.
	WithTx(ctx context.Context, tenant string, fn func(ctx context.Context, tx Tx) error) error

	// Close releases backend resources (connection pool, file handle).
	Close() error
}

// Tx is the set of row-level operations available inside one adapter
// transaction.
type Tx interface {
	// TenantExists reports whether tenant is a known, provisioned tenant.
	TenantExists(ctx context.Context, tenant string) (bool, error)

	// InsertObject inserts the first version (objectVersion=1, tagVersion=1)
	// of a brand-new object. Returns a *Error{Kind: KindAlreadyExists} if
	// (objectId, 1) already exists.
	InsertObject(ctx context.Context, tenant string, tag metadata.Tag) error

	// InsertVersion inserts objectVersion N+1 for an existing objectId.
	// Returns KindAlreadyExists if a concurrent writer already committed
	// N+1. It does not check that a prior version exists; DB does that
	// before calling it.
	InsertVersion(ctx context.Context, tenant string, tag metadata.Tag) error

	// InsertTag inserts a new tagVersion for an existing (objectId,
	// objectVersion), carrying forward the same definition.
	InsertTag(ctx context.Context, tenant string, tag metadata.Tag) error

	// ObjectVersionHeaders returns one header per committed objectVersion of
	// objectId, ObjectTimestamp set to that version's creation time.
	ObjectVersionHeaders(ctx context.Context, tenant string, objectType metadata.ObjectType, objectID string) ([]metadata.TagHeader, error)

	// TagVersionHeaders returns one header per committed tagVersion within
	// the given objectVersion.
	TagVersionHeaders(ctx context.Context, tenant string, objectType metadata.ObjectType, objectID string, objectVersion int64) ([]metadata.TagHeader, error)

	// GetTag loads the full Tag at an exact (objectId, objectVersion,
	// tagVersion).
	GetTag(ctx context.Context, tenant string, objectType metadata.ObjectType, objectID string, objectVersion, tagVersion int64) (*metadata.Tag, bool, error)

	// SearchObjects returns headers of the latest tag of every object
	// matching the search criteria, newest first.
	SearchObjects(ctx context.Context, tenant string, criteria SearchCriteria) ([]metadata.TagHeader, error)
}

// TenantAdmin is implemented by Adapters that support tenant provisioning
// (both metadb/embedded and metadb/postgres do); internal/admin depends on
// this narrower interface rather than a concrete adapter type so it works
// against either backend.
type TenantAdmin interface {
	ProvisionTenant(tenant string) error
	ListTenants() ([]string, error)
}

// SearchCriteria narrows Search to a subset of objects. Empty ObjectType
// matches every type; a nil AttrEquals skips attr filtering.
type SearchCriteria struct {
	ObjectType metadata.ObjectType
	AttrEquals map[string]string
	AsOf       *time.Time
	Limit      int
}
