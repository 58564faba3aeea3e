// Package embedded is the single-node metadb.Adapter backed by bbolt: every
// tenant gets its own top-level bucket, every object type a nested bucket
// inside it, and every tag a JSON-marshaled value keyed by
// "{objectType}/{objectId}/{objectVersion}/{tagVersion}", both versions
// zero-padded to 20 digits — directly adapted from warren's
// pkg/storage.BoltStore (one bucket per resource kind, json.Marshal per row,
// db.Update/db.View for write/read transactions).
package embedded

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	bolt "go.etcd.io/bbolt"

	"github.com/tracplatform/trac/internal/metadata"
	"github.com/tracplatform/trac/internal/metadb"
)

var bucketTenants = []byte("tenants")

// Adapter is the bbolt-backed metadb.Adapter, suitable for single-node
// deployments and tests that need a real transactional backend without a
// database server.
type Adapter struct {
	db *bolt.DB
}

var _ metadb.Adapter = (*Adapter)(nil)

// Open opens (creating if absent) the bbolt file at path.
func Open(path string) (*Adapter, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("embedded: open %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketTenants)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("embedded: create tenants bucket: %w", err)
	}
	return &Adapter{db: db}, nil
}

func (a *Adapter) Close() error { return a.db.Close() }

// ProvisionTenant registers tenant so TenantExists reports true for it.
func (a *Adapter) ProvisionTenant(tenant string) error {
	return a.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketTenants)
		if err := b.Put([]byte(tenant), []byte("1")); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(tenantBucketName(tenant))
		return err
	})
}

// ListTenants returns every provisioned tenant ID, alphabetically.
func (a *Adapter) ListTenants() ([]string, error) {
	var ids []string
	err := a.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketTenants)
		return b.ForEach(func(k, v []byte) error {
			ids = append(ids, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("embedded: list tenants: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}

func tenantBucketName(tenant string) []byte {
	return []byte("tenant:" + tenant)
}

func (a *Adapter) WithTx(ctx context.Context, tenant string, fn func(ctx context.Context, tx metadb.Tx) error) error {
	return a.db.Update(func(boltTx *bolt.Tx) error {
		return fn(ctx, &txn{boltTx: boltTx, tenant: tenant})
	})
}

type txn struct {
	boltTx *bolt.Tx
	tenant string
}

var _ metadb.Tx = (*txn)(nil)

func (t *txn) TenantExists(ctx context.Context, tenant string) (bool, error) {
	b := t.boltTx.Bucket(bucketTenants)
	return b.Get([]byte(tenant)) != nil, nil
}

// row is the on-disk JSON shape for one tag.
type row struct {
	Header     metadata.TagHeader          `json:"header"`
	Definition metadata.ObjectDefinition   `json:"definition"`
	Attrs      map[string]*metadata.Value  `json:"attrs"`
}

func rowKey(objectType metadata.ObjectType, objectID string, objectVersion, tagVersion int64) []byte {
	return []byte(fmt.Sprintf("%s/%s/%020d/%020d", objectType, objectID, objectVersion, tagVersion))
}

func (t *txn) objectBucket(objectType metadata.ObjectType, create bool) (*bolt.Bucket, error) {
	tb := t.boltTx.Bucket(tenantBucketName(t.tenant))
	if tb == nil {
		return nil, &metadb.Error{Kind: metadb.KindNotFound, Msg: fmt.Sprintf("unknown tenant %q", t.tenant)}
	}
	name := []byte(objectType)
	if create {
		return tb.CreateBucketIfNotExists(name)
	}
	return tb.Bucket(name), nil
}

func (t *txn) insertRow(objectType metadata.ObjectType, tag metadata.Tag, expectAbsent bool) error {
	b, err := t.objectBucket(objectType, true)
	if err != nil {
		return err
	}
	key := rowKey(objectType, tag.Header.ObjectID, tag.Header.ObjectVersion, tag.Header.TagVersion)
	if expectAbsent && b.Get(key) != nil {
		return &metadb.Error{Kind: metadb.KindAlreadyExists, Msg: fmt.Sprintf("tag %s already exists", key)}
	}
	data, err := json.Marshal(row{Header: tag.Header, Definition: tag.Definition, Attrs: tag.Attrs})
	if err != nil {
		return fmt.Errorf("embedded: marshal tag: %w", err)
	}
	return b.Put(key, data)
}

func (t *txn) InsertObject(ctx context.Context, tenant string, tag metadata.Tag) error {
	return t.insertRow(tag.Header.ObjectType, tag, true)
}

func (t *txn) InsertVersion(ctx context.Context, tenant string, tag metadata.Tag) error {
	return t.insertRow(tag.Header.ObjectType, tag, true)
}

func (t *txn) InsertTag(ctx context.Context, tenant string, tag metadata.Tag) error {
	return t.insertRow(tag.Header.ObjectType, tag, true)
}

func (t *txn) scanObject(objectType metadata.ObjectType, objectID string) ([]row, error) {
	b, err := t.objectBucket(objectType, false)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, nil
	}
	prefix := []byte(fmt.Sprintf("%s/%s/", objectType, objectID))
	var rows []row
	c := b.Cursor()
	for k, v := c.Seek(prefix); k != nil && strings.HasPrefix(string(k), string(prefix)); k, v = c.Next() {
		var r row
		if err := json.Unmarshal(v, &r); err != nil {
			return nil, fmt.Errorf("embedded: unmarshal tag row: %w", err)
		}
		rows = append(rows, r)
	}
	return rows, nil
}

func (t *txn) ObjectVersionHeaders(ctx context.Context, tenant string, objectType metadata.ObjectType, objectID string) ([]metadata.TagHeader, error) {
	rows, err := t.scanObject(objectType, objectID)
	if err != nil {
		return nil, err
	}
	byVersion := map[int64]metadata.TagHeader{}
	for _, r := range rows {
		cur, ok := byVersion[r.Header.ObjectVersion]
		if !ok || r.Header.TagVersion > cur.TagVersion {
			byVersion[r.Header.ObjectVersion] = r.Header
		}
	}
	headers := make([]metadata.TagHeader, 0, len(byVersion))
	for _, h := range byVersion {
		headers = append(headers, h)
	}
	sort.Slice(headers, func(i, j int) bool { return headers[i].ObjectVersion < headers[j].ObjectVersion })
	return headers, nil
}

func (t *txn) TagVersionHeaders(ctx context.Context, tenant string, objectType metadata.ObjectType, objectID string, objectVersion int64) ([]metadata.TagHeader, error) {
	rows, err := t.scanObject(objectType, objectID)
	if err != nil {
		return nil, err
	}
	var headers []metadata.TagHeader
	for _, r := range rows {
		if r.Header.ObjectVersion == objectVersion {
			headers = append(headers, r.Header)
		}
	}
	sort.Slice(headers, func(i, j int) bool { return headers[i].TagVersion < headers[j].TagVersion })
	return headers, nil
}

func (t *txn) GetTag(ctx context.Context, tenant string, objectType metadata.ObjectType, objectID string, objectVersion, tagVersion int64) (*metadata.Tag, bool, error) {
	b, err := t.objectBucket(objectType, false)
	if err != nil {
		return nil, false, err
	}
	if b == nil {
		return nil, false, nil
	}
	data := b.Get(rowKey(objectType, objectID, objectVersion, tagVersion))
	if data == nil {
		return nil, false, nil
	}
	var r row
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, false, fmt.Errorf("embedded: unmarshal tag row: %w", err)
	}
	return &metadata.Tag{Header: r.Header, Definition: r.Definition, Attrs: r.Attrs}, true, nil
}

func (t *txn) SearchObjects(ctx context.Context, tenant string, criteria metadb.SearchCriteria) ([]metadata.TagHeader, error) {
	tb := t.boltTx.Bucket(tenantBucketName(t.tenant))
	if tb == nil {
		return nil, &metadb.Error{Kind: metadb.KindNotFound, Msg: fmt.Sprintf("unknown tenant %q", t.tenant)}
	}

	types := []metadata.ObjectType{criteria.ObjectType}
	if criteria.ObjectType == "" {
		types = []metadata.ObjectType{
			metadata.ObjectTypeData, metadata.ObjectTypeFile, metadata.ObjectTypeStorage,
			metadata.ObjectTypeSchema, metadata.ObjectTypeModel, metadata.ObjectTypeFlow,
			metadata.ObjectTypeJob, metadata.ObjectTypeCustom,
		}
	}

	latestByObject := map[string]row{}
	for _, ot := range types {
		b := tb.Bucket([]byte(ot))
		if b == nil {
			continue
		}
		err := b.ForEach(func(k, v []byte) error {
			var r row
			if err := json.Unmarshal(v, &r); err != nil {
				return fmt.Errorf("embedded: unmarshal tag row: %w", err)
			}
			if criteria.AsOf != nil && r.Header.ObjectTimestamp.After(*criteria.AsOf) {
				return nil
			}
			if !matchesAttrs(r.Attrs, criteria.AttrEquals) {
				return nil
			}
			key := string(ot) + "/" + r.Header.ObjectID
			cur, ok := latestByObject[key]
			if !ok ||
				r.Header.ObjectVersion > cur.Header.ObjectVersion ||
				(r.Header.ObjectVersion == cur.Header.ObjectVersion && r.Header.TagVersion > cur.Header.TagVersion) {
				latestByObject[key] = r
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	headers := make([]metadata.TagHeader, 0, len(latestByObject))
	for _, r := range latestByObject {
		headers = append(headers, r.Header)
	}
	sort.Slice(headers, func(i, j int) bool { return headers[i].ObjectTimestamp.After(headers[j].ObjectTimestamp) })
	if criteria.Limit > 0 && len(headers) > criteria.Limit {
		headers = headers[:criteria.Limit]
	}
	return headers, nil
}

func matchesAttrs(attrs map[string]*metadata.Value, want map[string]string) bool {
	for name, expect := range want {
		v, ok := attrs[name]
		if !ok || v.String == nil || *v.String != expect {
			return false
		}
	}
	return true
}
