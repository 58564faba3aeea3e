// Package postgres is the PostgreSQL-backed metadb.Adapter: one row per
// committed tag in a single wide table, with indexed header columns for the
// ordering/filtering metadb.DB needs and a JSONB column carrying the
// definition and attribute bag verbatim (grounded on warren's boltdb.go
// json.Marshal-per-row idiom, adapted here to a relational schema because
// SearchObjects needs SQL-side filtering bbolt can't do).
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/tracplatform/trac/internal/metadata"
	"github.com/tracplatform/trac/internal/metadb"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS tenants (
	tenant_id TEXT PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS tags (
	tenant_id        TEXT NOT NULL,
	object_type      TEXT NOT NULL,
	object_id        TEXT NOT NULL,
	object_version   BIGINT NOT NULL,
	tag_version      BIGINT NOT NULL,
	object_timestamp TIMESTAMPTZ NOT NULL,
	tag_timestamp    TIMESTAMPTZ NOT NULL,
	definition       JSONB NOT NULL,
	attrs            JSONB NOT NULL,
	PRIMARY KEY (tenant_id, object_type, object_id, object_version, tag_version)
);

CREATE INDEX IF NOT EXISTS tags_by_object
	ON tags (tenant_id, object_type, object_id, object_version);

CREATE INDEX IF NOT EXISTS tags_by_timestamp
	ON tags (tenant_id, object_type, object_timestamp);
`

// Adapter is the database/sql + lib/pq implementation of metadb.Adapter.
type Adapter struct {
	db *sql.DB
}

// Open connects to dsn and ensures the schema exists.
func Open(ctx context.Context, dsn string) (*Adapter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	if _, err := db.ExecContext(ctx, schemaDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: migrate schema: %w", err)
	}
	return &Adapter{db: db}, nil
}

var _ metadb.Adapter = (*Adapter)(nil)

func (a *Adapter) Close() error { return a.db.Close() }

// ProvisionTenant registers tenant so TenantExists reports true for it.
func (a *Adapter) ProvisionTenant(tenant string) error {
	_, err := a.db.Exec(`INSERT INTO tenants (tenant_id) VALUES ($1) ON CONFLICT DO NOTHING`, tenant)
	if err != nil {
		return classifyErr(err, "provisioning tenant")
	}
	return nil
}

// ListTenants returns every provisioned tenant ID, alphabetically.
func (a *Adapter) ListTenants() ([]string, error) {
	rows, err := a.db.Query(`SELECT tenant_id FROM tenants ORDER BY tenant_id`)
	if err != nil {
		return nil, classifyErr(err, "listing tenants")
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("postgres: scan tenant row: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterating tenant rows: %w", err)
	}
	return ids, nil
}

func (a *Adapter) WithTx(ctx context.Context, tenant string, fn func(ctx context.Context, tx metadb.Tx) error) error {
	sqlTx, err := a.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return classifyErr(err, "begin transaction")
	}

	tx := &txn{sqlTx: sqlTx}
	if err := fn(ctx, tx); err != nil {
		_ = sqlTx.Rollback()
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return classifyErr(err, "commit transaction")
	}
	return nil
}

type txn struct {
	sqlTx *sql.Tx
}

var _ metadb.Tx = (*txn)(nil)

func (t *txn) TenantExists(ctx context.Context, tenant string) (bool, error) {
	var exists bool
	err := t.sqlTx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM tenants WHERE tenant_id = $1)`, tenant,
	).Scan(&exists)
	if err != nil {
		return false, classifyErr(err, "checking tenant")
	}
	return exists, nil
}

func (t *txn) insertRow(ctx context.Context, tenant string, tag metadata.Tag) error {
	def, err := json.Marshal(tag.Definition)
	if err != nil {
		return fmt.Errorf("postgres: marshal definition: %w", err)
	}
	attrs, err := json.Marshal(tag.Attrs)
	if err != nil {
		return fmt.Errorf("postgres: marshal attrs: %w", err)
	}

	_, err = t.sqlTx.ExecContext(ctx, `
		INSERT INTO tags (
			tenant_id, object_type, object_id, object_version, tag_version,
			object_timestamp, tag_timestamp, definition, attrs
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		tenant, string(tag.Header.ObjectType), tag.Header.ObjectID,
		tag.Header.ObjectVersion, tag.Header.TagVersion,
		tag.Header.ObjectTimestamp, tag.Header.TagTimestamp, def, attrs,
	)
	if err != nil {
		return classifyErr(err, fmt.Sprintf("inserting tag %s %s v%d-t%d",
			tag.Header.ObjectType, tag.Header.ObjectID, tag.Header.ObjectVersion, tag.Header.TagVersion))
	}
	return nil
}

func (t *txn) InsertObject(ctx context.Context, tenant string, tag metadata.Tag) error {
	return t.insertRow(ctx, tenant, tag)
}

func (t *txn) InsertVersion(ctx context.Context, tenant string, tag metadata.Tag) error {
	return t.insertRow(ctx, tenant, tag)
}

func (t *txn) InsertTag(ctx context.Context, tenant string, tag metadata.Tag) error {
	return t.insertRow(ctx, tenant, tag)
}

func (t *txn) ObjectVersionHeaders(ctx context.Context, tenant string, objectType metadata.ObjectType, objectID string) ([]metadata.TagHeader, error) {
	rows, err := t.sqlTx.QueryContext(ctx, `
		SELECT DISTINCT ON (object_version)
			object_type, object_id, object_version, tag_version, object_timestamp, tag_timestamp
		FROM tags
		WHERE tenant_id = $1 AND object_type = $2 AND object_id = $3
		ORDER BY object_version, tag_version DESC`,
		tenant, string(objectType), objectID,
	)
	if err != nil {
		return nil, classifyErr(err, "listing object versions")
	}
	defer rows.Close()
	return scanHeaders(rows)
}

func (t *txn) TagVersionHeaders(ctx context.Context, tenant string, objectType metadata.ObjectType, objectID string, objectVersion int64) ([]metadata.TagHeader, error) {
	rows, err := t.sqlTx.QueryContext(ctx, `
		SELECT object_type, object_id, object_version, tag_version, object_timestamp, tag_timestamp
		FROM tags
		WHERE tenant_id = $1 AND object_type = $2 AND object_id = $3 AND object_version = $4
		ORDER BY tag_version`,
		tenant, string(objectType), objectID, objectVersion,
	)
	if err != nil {
		return nil, classifyErr(err, "listing tag versions")
	}
	defer rows.Close()
	return scanHeaders(rows)
}

func (t *txn) GetTag(ctx context.Context, tenant string, objectType metadata.ObjectType, objectID string, objectVersion, tagVersion int64) (*metadata.Tag, bool, error) {
	var (
		header         metadata.TagHeader
		defJSON, attrs []byte
	)
	err := t.sqlTx.QueryRowContext(ctx, `
		SELECT object_type, object_id, object_version, tag_version, object_timestamp, tag_timestamp, definition, attrs
		FROM tags
		WHERE tenant_id = $1 AND object_type = $2 AND object_id = $3 AND object_version = $4 AND tag_version = $5`,
		tenant, string(objectType), objectID, objectVersion, tagVersion,
	).Scan(&header.ObjectType, &header.ObjectID, &header.ObjectVersion, &header.TagVersion,
		&header.ObjectTimestamp, &header.TagTimestamp, &defJSON, &attrs)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, classifyErr(err, "loading tag")
	}

	tag := &metadata.Tag{Header: header}
	if err := json.Unmarshal(defJSON, &tag.Definition); err != nil {
		return nil, false, fmt.Errorf("postgres: unmarshal definition: %w", err)
	}
	if err := json.Unmarshal(attrs, &tag.Attrs); err != nil {
		return nil, false, fmt.Errorf("postgres: unmarshal attrs: %w", err)
	}
	return tag, true, nil
}

func (t *txn) SearchObjects(ctx context.Context, tenant string, criteria metadb.SearchCriteria) ([]metadata.TagHeader, error) {
	query := strings.Builder{}
	query.WriteString(`
		SELECT * FROM (
		SELECT DISTINCT ON (object_type, object_id)
			object_type, object_id, object_version, tag_version, object_timestamp, tag_timestamp
		FROM tags
		WHERE tenant_id = $1`)
	args := []any{tenant}

	if criteria.ObjectType != "" {
		args = append(args, string(criteria.ObjectType))
		query.WriteString(fmt.Sprintf(" AND object_type = $%d", len(args)))
	}
	if criteria.AsOf != nil {
		args = append(args, *criteria.AsOf)
		query.WriteString(fmt.Sprintf(" AND object_timestamp <= $%d", len(args)))
	}
	for name, value := range criteria.AttrEquals {
		args = append(args, name, value)
		query.WriteString(fmt.Sprintf(" AND attrs->$%d->>'string' = $%d", len(args)-1, len(args)))
	}
	query.WriteString(" ORDER BY object_type, object_id, object_version DESC, tag_version DESC")
	query.WriteString(") latest ORDER BY object_timestamp DESC")
	if criteria.Limit > 0 {
		query.WriteString(fmt.Sprintf(" LIMIT %d", criteria.Limit))
	}

	rows, err := t.sqlTx.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, classifyErr(err, "searching objects")
	}
	defer rows.Close()
	return scanHeaders(rows)
}

func scanHeaders(rows *sql.Rows) ([]metadata.TagHeader, error) {
	var headers []metadata.TagHeader
	for rows.Next() {
		var h metadata.TagHeader
		var objectType string
		if err := rows.Scan(&objectType, &h.ObjectID, &h.ObjectVersion, &h.TagVersion, &h.ObjectTimestamp, &h.TagTimestamp); err != nil {
			return nil, fmt.Errorf("postgres: scan header row: %w", err)
		}
		h.ObjectType = metadata.ObjectType(objectType)
		headers = append(headers, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterating header rows: %w", err)
	}
	return headers, nil
}

// classifyErr maps a lib/pq driver error onto metadb's transport-agnostic
// Kind taxonomy; unique_violation (23505) is the only constraint TRAC's
// write path can hit, since every write goes through a composite primary
// key keyed on the full version triple.
func classifyErr(err error, msg string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return &metadb.Error{Kind: metadb.KindAlreadyExists, Msg: msg, Err: err}
		case "57014", "08006", "08001", "08004":
			return &metadb.Error{Kind: metadb.KindUnavailable, Msg: msg, Err: err}
		}
	}
	return &metadb.Error{Kind: metadb.KindInternal, Msg: msg, Err: err}
}
