package embedded

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tracplatform/trac/internal/metadata"
	"github.com/tracplatform/trac/internal/metadb"
)

func openTestAdapter(t *testing.T) *Adapter {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trac-test.db")
	a, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	require.NoError(t, a.ProvisionTenant("acme"))
	return a
}

func TestInsertObjectThenGetTag(t *testing.T) {
	a := openTestAdapter(t)
	ctx := context.Background()
	now := time.Now()

	header := metadata.NewObjectHeader(metadata.ObjectTypeSchema, "obj-1", now)
	tag := metadata.Tag{
		Header:     header,
		Definition: metadata.ObjectDefinition{ObjectType: metadata.ObjectTypeSchema, Schema: &metadata.SchemaDefinition{SchemaType: metadata.SchemaTypeTable}},
		Attrs:      map[string]*metadata.Value{},
	}

	err := a.WithTx(ctx, "acme", func(ctx context.Context, tx metadb.Tx) error {
		return tx.InsertObject(ctx, "acme", tag)
	})
	require.NoError(t, err)

	err = a.WithTx(ctx, "acme", func(ctx context.Context, tx metadb.Tx) error {
		got, ok, err := tx.GetTag(ctx, "acme", metadata.ObjectTypeSchema, "obj-1", 1, 1)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, metadata.SchemaTypeTable, got.Definition.Schema.SchemaType)
		return nil
	})
	require.NoError(t, err)
}

func TestInsertObjectDuplicateIsAlreadyExists(t *testing.T) {
	a := openTestAdapter(t)
	ctx := context.Background()
	header := metadata.NewObjectHeader(metadata.ObjectTypeData, "obj-dup", time.Now())
	tag := metadata.Tag{Header: header, Definition: metadata.ObjectDefinition{ObjectType: metadata.ObjectTypeData}, Attrs: map[string]*metadata.Value{}}

	insert := func() error {
		return a.WithTx(ctx, "acme", func(ctx context.Context, tx metadb.Tx) error {
			return tx.InsertObject(ctx, "acme", tag)
		})
	}
	require.NoError(t, insert())

	err := insert()
	require.Error(t, err)
	require.True(t, metadb.IsKind(err, metadb.KindAlreadyExists))
}

func TestUnknownTenantIsNotFound(t *testing.T) {
	a := openTestAdapter(t)
	ctx := context.Background()

	err := a.WithTx(ctx, "ghost", func(ctx context.Context, tx metadb.Tx) error {
		_, _, err := tx.GetTag(ctx, "ghost", metadata.ObjectTypeData, "x", 1, 1)
		return err
	})
	require.Error(t, err)
	require.True(t, metadb.IsKind(err, metadb.KindNotFound))
}
