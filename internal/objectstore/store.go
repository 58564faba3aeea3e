// Package objectstore is TRAC's pluggable physical storage layer: one Store
// implementation per backend (local disk, S3, GCS, Azure blob), resolved by
// storageKey from platform config. The interface and its registry mirror
// warren's volume driver system (pkg/volume: VolumeDriver interface,
// per-driver-name registry, VolumeManager routing calls to the right
// driver) — here generalized from mounting container volumes to reading and
// writing dataItem byte ranges.
package objectstore

import (
	"context"
	"fmt"
	"io"
)

// Entry is one item returned by Ls.
type Entry struct {
	Path  string
	Size  int64
	IsDir bool
}

// Writer is a write-once sink: bytes written are not visible to readers of
// Path until Commit succeeds. Abort discards any partial bytes so a failed
// write leaves no artifact (spec.md §4.C).
type Writer interface {
	io.Writer
	Commit(ctx context.Context) error
	Abort(ctx context.Context) error
}

// Store is the physical storage backend contract every plugin implements.
type Store interface {
	// Exists reports whether path names a committed object.
	Exists(ctx context.Context, path string) (bool, error)

	// Size returns the byte length of the committed object at path.
	Size(ctx context.Context, path string) (int64, error)

	// Mkdir creates path as a directory prefix; recursive creates parents.
	Mkdir(ctx context.Context, path string, recursive bool) error

	// Rm removes the object at path. LocalStore also removes a directory and
	// everything under it; the S3, GCS and Azure stores delete only the
	// single object named by path, not the objects under a prefix.
	Rm(ctx context.Context, path string) error

	// Ls lists the immediate children of the prefix at path.
	Ls(ctx context.Context, path string) ([]Entry, error)

	// Reader opens path for streaming read from the start.
	Reader(ctx context.Context, path string) (io.ReadCloser, error)

	// Writer opens path for a write-once upload.
	Writer(ctx context.Context, path string) (Writer, error)
}

// Registry resolves a storageKey (from platform config) to its configured
// Store instance, the way warren's VolumeManager resolves a volume's
// Driver field to a registered VolumeDriver.
type Registry struct {
	stores map[string]Store
}

// NewRegistry builds an empty registry; call Register for each configured
// storageKey before serving traffic.
func NewRegistry() *Registry {
	return &Registry{stores: make(map[string]Store)}
}

// Register attaches store under storageKey, overwriting any prior binding.
func (r *Registry) Register(storageKey string, store Store) {
	r.stores[storageKey] = store
}

// Resolve returns the Store bound to storageKey.
func (r *Registry) Resolve(storageKey string) (Store, error) {
	store, ok := r.stores[storageKey]
	if !ok {
		return nil, fmt.Errorf("objectstore: unknown storage key %q", storageKey)
	}
	return store, nil
}

// TenantPrefix joins a tenant's storage prefix with a dataItem path token,
// matching spec.md §3 item 10's deterministic per-tenant layout.
func TenantPrefix(tenant, dataItem string) string {
	return tenant + "/" + dataItem
}
