// Package metadb implements the Metadata DAL: version/tag resolution,
// selector enforcement and the tenant-scoped transactional contract spec.md
// §4.B names, over a pluggable Adapter backend (PostgreSQL or an embedded
// bbolt store). The orchestration here is backend-agnostic; only Adapter
// implementations touch SQL or bbolt directly.
package metadb

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/tracplatform/trac/internal/metadata"
)

// Clock is injected so tests can pin "now"; production wires time.Now.
type Clock func() time.Time

// DB is the tenant-scoped metadata data access layer. One DB wraps one
// Adapter and is shared across all tenants it serves; tenant isolation is
// enforced by always passing the tenant string down into the adapter.
type DB struct {
	adapter Adapter
	clock   Clock
	log     zerolog.Logger
	retry   backoff.BackOff
}

// Option customizes New.
type Option func(*DB)

// WithClock overrides the wall clock, for deterministic tests.
func WithClock(c Clock) Option {
	return func(d *DB) { d.clock = c }
}

// WithLogger attaches a logger; defaults to a disabled logger.
func WithLogger(l zerolog.Logger) Option {
	return func(d *DB) { d.log = l }
}

// New builds a DB over adapter. Failures the adapter classifies as
// KindUnavailable (lost or refused connections) are retried with a short
// exponential backoff, then surfaced as that error (grounded on warren's use of
// cenkalti/backoff/v4 for its scheduler's reconciliation retries).
func New(adapter Adapter, opts ...Option) *DB {
	d := &DB{
		adapter: adapter,
		clock:   time.Now,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 10 * time.Millisecond
	b.MaxInterval = 200 * time.Millisecond
	b.MaxElapsedTime = 2 * time.Second
	d.retry = b
	return d
}

func (d *DB) withRetry(ctx context.Context, tenant string, fn func(ctx context.Context, tx Tx) error) error {
	d.retry.Reset()
	op := func() error {
		err := d.adapter.WithTx(ctx, tenant, fn)
		if err == nil {
			return nil
		}
		if IsKind(err, KindUnavailable) {
			d.log.Debug().Str("tenant", tenant).Msg("retrying after unavailable backend")
			return err
		}
		return backoff.Permanent(err)
	}
	return backoff.Retry(op, backoff.WithContext(d.retry, ctx))
}

func (d *DB) checkTenant(ctx context.Context, tx Tx, tenant string) error {
	ok, err := tx.TenantExists(ctx, tenant)
	if err != nil {
		return wrapErr(KindInternal, err, "checking tenant %q", tenant)
	}
	if !ok {
		return newErr(KindNotFound, "unknown tenant %q", tenant)
	}
	return nil
}

// SaveNewObject commits objectVersion 1 / tagVersion 1 of a brand-new object.
// def and attrs must already be validated by the caller; the header is
// stamped here and returned.
func (d *DB) SaveNewObject(ctx context.Context, tenant string, objectType metadata.ObjectType, objectID string, def metadata.ObjectDefinition, attrs map[string]*metadata.Value) (metadata.TagHeader, error) {
	now := d.clock()
	header := metadata.NewObjectHeader(objectType, objectID, now)
	tag := metadata.Tag{Header: header, Definition: def, Attrs: attrs}

	err := d.withRetry(ctx, tenant, func(ctx context.Context, tx Tx) error {
		if err := d.checkTenant(ctx, tx, tenant); err != nil {
			return err
		}
		return tx.InsertObject(ctx, tenant, tag)
	})
	if err != nil {
		return metadata.TagHeader{}, err
	}
	return header, nil
}

// SaveNewVersion commits objectVersion N+1 of an existing object. attrs is
// stored as given — callers pass the already-merged attribute bag; see
// internal/dataservice for the update algorithm that builds it.
func (d *DB) SaveNewVersion(ctx context.Context, tenant string, objectType metadata.ObjectType, objectID string, def metadata.ObjectDefinition, attrs map[string]*metadata.Value) (metadata.TagHeader, error) {
	var header metadata.TagHeader
	now := d.clock()

	err := d.withRetry(ctx, tenant, func(ctx context.Context, tx Tx) error {
		if err := d.checkTenant(ctx, tx, tenant); err != nil {
			return err
		}
		headers, err := tx.ObjectVersionHeaders(ctx, tenant, objectType, objectID)
		if err != nil {
			return err
		}
		if len(headers) == 0 {
			return newErr(KindNotFound, "object %s %s not found", objectType, objectID)
		}
		prior := latestObjectHeader(headers)
		header = metadata.NextObjectHeader(prior, now)
		tag := metadata.Tag{Header: header, Definition: def, Attrs: attrs}
		return tx.InsertVersion(ctx, tenant, tag)
	})
	if err != nil {
		return metadata.TagHeader{}, err
	}
	return header, nil
}

// SaveNewTag commits a new tagVersion against an existing (objectId,
// objectVersion), carrying forward its definition with an updated attribute
// bag.
func (d *DB) SaveNewTag(ctx context.Context, tenant string, objectType metadata.ObjectType, objectID string, objectVersion int64, attrs map[string]*metadata.Value) (metadata.TagHeader, error) {
	var header metadata.TagHeader
	now := d.clock()

	err := d.withRetry(ctx, tenant, func(ctx context.Context, tx Tx) error {
		if err := d.checkTenant(ctx, tx, tenant); err != nil {
			return err
		}
		headers, err := tx.TagVersionHeaders(ctx, tenant, objectType, objectID, objectVersion)
		if err != nil {
			return err
		}
		if len(headers) == 0 {
			return newErr(KindNotFound, "object %s %s v%d not found", objectType, objectID, objectVersion)
		}
		prior := latestTagHeader(headers)
		latest, _, err := tx.GetTag(ctx, tenant, objectType, objectID, objectVersion, prior.TagVersion)
		if err != nil {
			return err
		}
		header = metadata.NextTagHeader(prior, now)
		tag := metadata.Tag{Header: header, Definition: latest.Definition, Attrs: attrs}
		return tx.InsertTag(ctx, tenant, tag)
	})
	if err != nil {
		return metadata.TagHeader{}, err
	}
	return header, nil
}

// LoadObject resolves sel against objectId and returns the full Tag at the
// resolved (objectVersion, tagVersion).
func (d *DB) LoadObject(ctx context.Context, tenant string, objectType metadata.ObjectType, objectID string, sel metadata.TagSelector) (*metadata.Tag, error) {
	if err := sel.Validate(); err != nil {
		return nil, wrapErr(KindInvalidArgument, err, "invalid selector")
	}

	var tag *metadata.Tag
	now := d.clock()

	err := d.withRetry(ctx, tenant, func(ctx context.Context, tx Tx) error {
		if err := d.checkTenant(ctx, tx, tenant); err != nil {
			return err
		}
		objHeaders, err := tx.ObjectVersionHeaders(ctx, tenant, objectType, objectID)
		if err != nil {
			return err
		}
		if len(objHeaders) == 0 {
			return newErr(KindNotFound, "object %s %s not found", objectType, objectID)
		}
		objHeader, ok := ResolveObjectVersion(objHeaders, sel, now)
		if !ok {
			return newErr(KindNotFound, "no object version of %s %s satisfies selector", objectType, objectID)
		}

		tagHeaders, err := tx.TagVersionHeaders(ctx, tenant, objectType, objectID, objHeader.ObjectVersion)
		if err != nil {
			return err
		}
		if len(tagHeaders) == 0 {
			return newErr(KindNotFound, "object %s %s v%d has no tags", objectType, objectID, objHeader.ObjectVersion)
		}
		tagHeader, ok := ResolveTagVersion(tagHeaders, sel, now)
		if !ok {
			return newErr(KindNotFound, "no tag version of %s %s v%d satisfies selector", objectType, objectID, objHeader.ObjectVersion)
		}

		found, ok, err := tx.GetTag(ctx, tenant, objectType, objectID, objHeader.ObjectVersion, tagHeader.TagVersion)
		if err != nil {
			return err
		}
		if !ok {
			return newErr(KindNotFound, "tag %s %s v%d-t%d not found", objectType, objectID, objHeader.ObjectVersion, tagHeader.TagVersion)
		}
		tag = found
		return nil
	})
	return tag, err
}

// LoadPriorObject loads the committed version immediately before
// objectVersion, used by update algorithms that need the predecessor's
// definition (spec.md §4.F step 2).
func (d *DB) LoadPriorObject(ctx context.Context, tenant string, objectType metadata.ObjectType, objectID string, objectVersion int64) (*metadata.Tag, error) {
	if objectVersion <= 1 {
		return nil, newErr(KindFailedPrecondition, "object %s %s v%d has no prior version", objectType, objectID, objectVersion)
	}
	v := objectVersion - 1
	sel := metadata.TagSelector{ObjectVersion: &v, LatestTag: true}
	return d.LoadObject(ctx, tenant, objectType, objectID, sel)
}

// LoadObjects is the batch form of LoadObject: one selector per objectId.
// All-or-nothing — the first failure aborts the batch, matching TRAC's
// read API contract that a multi-object read is atomic w.r.t. errors.
func (d *DB) LoadObjects(ctx context.Context, tenant string, objectType metadata.ObjectType, objectIDs []string, sels []metadata.TagSelector) ([]*metadata.Tag, error) {
	if len(objectIDs) != len(sels) {
		return nil, newErr(KindInvalidArgument, "objectIds and selectors length mismatch")
	}
	tags := make([]*metadata.Tag, len(objectIDs))
	for i, id := range objectIDs {
		tag, err := d.LoadObject(ctx, tenant, objectType, id, sels[i])
		if err != nil {
			return nil, err
		}
		tags[i] = tag
	}
	return tags, nil
}

// Search returns the latest-tag headers of every object matching criteria.
func (d *DB) Search(ctx context.Context, tenant string, criteria SearchCriteria) ([]metadata.TagHeader, error) {
	var headers []metadata.TagHeader
	err := d.withRetry(ctx, tenant, func(ctx context.Context, tx Tx) error {
		if err := d.checkTenant(ctx, tx, tenant); err != nil {
			return err
		}
		found, err := tx.SearchObjects(ctx, tenant, criteria)
		if err != nil {
			return err
		}
		headers = found
		return nil
	})
	return headers, err
}

// PreallocateID mints a fresh object ID for a two-phase create (client asks
// for an ID, writes data under it, then calls SaveNewObject). The ID itself
// never touches storage until SaveNewObject commits.
func (d *DB) PreallocateID() string {
	return metadata.NewObjectID()
}

func latestObjectHeader(headers []metadata.TagHeader) metadata.TagHeader {
	best := headers[0]
	for _, h := range headers[1:] {
		if h.ObjectVersion > best.ObjectVersion {
			best = h
		}
	}
	return best
}

func latestTagHeader(headers []metadata.TagHeader) metadata.TagHeader {
	best := headers[0]
	for _, h := range headers[1:] {
		if h.TagVersion > best.TagVersion {
			best = h
		}
	}
	return best
}
