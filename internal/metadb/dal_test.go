package metadb_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tracplatform/trac/internal/metadata"
	"github.com/tracplatform/trac/internal/metadb"
	"github.com/tracplatform/trac/internal/metadb/embedded"
)

func newTestDB(t *testing.T) (*metadb.DB, *embedded.Adapter) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trac-dal-test.db")
	adapter, err := embedded.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { adapter.Close() })
	require.NoError(t, adapter.ProvisionTenant("acme"))
	return metadb.New(adapter), adapter
}

func TestSaveNewObjectThenLoadLatest(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := context.Background()

	objectID := metadata.NewObjectID()
	def := metadata.ObjectDefinition{
		ObjectType: metadata.ObjectTypeSchema,
		Schema:     &metadata.SchemaDefinition{SchemaType: metadata.SchemaTypeTable},
	}
	s := "v1"
	attrs := map[string]*metadata.Value{"owner": {Type: metadata.TypeString, String: &s}}

	header, err := db.SaveNewObject(ctx, "acme", metadata.ObjectTypeSchema, objectID, def, attrs)
	require.NoError(t, err)
	require.Equal(t, int64(1), header.ObjectVersion)
	require.Equal(t, int64(1), header.TagVersion)

	sel := metadata.TagSelector{
		ObjectType:   metadata.ObjectTypeSchema,
		ObjectID:     objectID,
		LatestObject: true,
		LatestTag:    true,
	}
	tag, err := db.LoadObject(ctx, "acme", metadata.ObjectTypeSchema, objectID, sel)
	require.NoError(t, err)
	require.Equal(t, "v1", *tag.Attrs["owner"].String)
}

func TestSaveNewVersionAdvancesObjectVersion(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := context.Background()

	objectID := metadata.NewObjectID()
	def := metadata.ObjectDefinition{ObjectType: metadata.ObjectTypeData}
	_, err := db.SaveNewObject(ctx, "acme", metadata.ObjectTypeData, objectID, def, map[string]*metadata.Value{})
	require.NoError(t, err)

	header, err := db.SaveNewVersion(ctx, "acme", metadata.ObjectTypeData, objectID, def, map[string]*metadata.Value{})
	require.NoError(t, err)
	require.Equal(t, int64(2), header.ObjectVersion)
	require.Equal(t, int64(1), header.TagVersion)

	prior, err := db.LoadPriorObject(ctx, "acme", metadata.ObjectTypeData, objectID, 2)
	require.NoError(t, err)
	require.Equal(t, int64(1), prior.Header.ObjectVersion)
}

func TestSaveNewTagAdvancesTagVersionOnly(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := context.Background()

	objectID := metadata.NewObjectID()
	def := metadata.ObjectDefinition{ObjectType: metadata.ObjectTypeData}
	_, err := db.SaveNewObject(ctx, "acme", metadata.ObjectTypeData, objectID, def, map[string]*metadata.Value{})
	require.NoError(t, err)

	header, err := db.SaveNewTag(ctx, "acme", metadata.ObjectTypeData, objectID, 1, map[string]*metadata.Value{})
	require.NoError(t, err)
	require.Equal(t, int64(1), header.ObjectVersion)
	require.Equal(t, int64(2), header.TagVersion)
}

func TestSaveNewVersionUnknownObjectIsNotFound(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := context.Background()

	_, err := db.SaveNewVersion(ctx, "acme", metadata.ObjectTypeData, metadata.NewObjectID(), metadata.ObjectDefinition{}, nil)
	require.Error(t, err)
	require.True(t, metadb.IsKind(err, metadb.KindNotFound))
}

func TestLoadObjectInvalidSelectorIsInvalidArgument(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := context.Background()

	_, err := db.LoadObject(ctx, "acme", metadata.ObjectTypeData, "x", metadata.TagSelector{})
	require.Error(t, err)
	require.True(t, metadb.IsKind(err, metadb.KindInvalidArgument))
}

func TestSearchReturnsLatestTagOfEachObject(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := context.Background()

	id := metadata.NewObjectID()
	_, err := db.SaveNewObject(ctx, "acme", metadata.ObjectTypeData, id, metadata.ObjectDefinition{ObjectType: metadata.ObjectTypeData}, map[string]*metadata.Value{})
	require.NoError(t, err)

	headers, err := db.Search(ctx, "acme", metadb.SearchCriteria{ObjectType: metadata.ObjectTypeData})
	require.NoError(t, err)
	require.Len(t, headers, 1)
	require.Equal(t, id, headers[0].ObjectID)
}

func TestSaveNewObjectUnknownTenantIsNotFound(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := context.Background()

	_, err := db.SaveNewObject(ctx, "ghost", metadata.ObjectTypeData, metadata.NewObjectID(), metadata.ObjectDefinition{}, nil)
	require.Error(t, err)
	require.True(t, metadb.IsKind(err, metadb.KindNotFound))
}
