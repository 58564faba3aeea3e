package metadataservice_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tracplatform/trac/internal/metadata"
	"github.com/tracplatform/trac/internal/metadb"
	"github.com/tracplatform/trac/internal/metadb/embedded"
	"github.com/tracplatform/trac/internal/metadataservice"
)

const testTenant = "acme"

func newService(t *testing.T) *metadataservice.Service {
	t.Helper()
	adapter, err := embedded.Open(t.TempDir() + "/trac.db")
	require.NoError(t, err)
	t.Cleanup(func() { adapter.Close() })
	require.NoError(t, adapter.ProvisionTenant(testTenant))
	return metadataservice.New(metadb.New(adapter))
}

func modelDefinition() metadata.ObjectDefinition {
	return metadata.ObjectDefinition{
		ObjectType: metadata.ObjectTypeModel,
		Model: &metadata.OpaquePayload{
			SchemaVersion: 1,
			Fields:        map[string]any{"entryPoint": "pkg.model:Model"},
		},
	}
}

func TestCreateObjectThenReadObject(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	header, err := svc.CreateObject(ctx, metadataservice.CreateObjectRequest{
		Tenant:     testTenant,
		ObjectType: metadata.ObjectTypeModel,
		Definition: modelDefinition(),
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), header.ObjectVersion)
	require.NotEmpty(t, header.ObjectID)

	tag, err := svc.ReadObject(ctx, testTenant, metadata.ObjectTypeModel, header.ObjectID, metadata.SelectorForLatest(header))
	require.NoError(t, err)
	require.Equal(t, metadata.ObjectTypeModel, tag.Definition.ObjectType)
	require.Equal(t, "pkg.model:Model", tag.Definition.Model.Fields["entryPoint"])
}

func TestCreateObjectRejectsMismatchedDiscriminator(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.CreateObject(ctx, metadataservice.CreateObjectRequest{
		Tenant:     testTenant,
		ObjectType: metadata.ObjectTypeData,
		Definition: modelDefinition(),
	})
	require.Error(t, err)
	var dbErr *metadb.Error
	require.ErrorAs(t, err, &dbErr)
	require.Equal(t, metadb.KindInvalidArgument, dbErr.Kind)
}

func TestCreateObjectBatch(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	headers, err := svc.CreateObjectBatch(ctx, testTenant, []metadataservice.CreateObjectRequest{
		{ObjectType: metadata.ObjectTypeModel, Definition: modelDefinition()},
		{ObjectType: metadata.ObjectTypeModel, Definition: modelDefinition()},
	})
	require.NoError(t, err)
	require.Len(t, headers, 2)
	require.NotEqual(t, headers[0].ObjectID, headers[1].ObjectID)
}

func TestUpdateObjectCommitsNewVersion(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	header, err := svc.CreateObject(ctx, metadataservice.CreateObjectRequest{
		Tenant:     testTenant,
		ObjectType: metadata.ObjectTypeModel,
		Definition: modelDefinition(),
	})
	require.NoError(t, err)

	updated, err := svc.UpdateObject(ctx, metadataservice.UpdateObjectRequest{
		Tenant:     testTenant,
		ObjectType: metadata.ObjectTypeModel,
		ObjectID:   header.ObjectID,
		Definition: modelDefinition(),
	})
	require.NoError(t, err)
	require.Equal(t, int64(2), updated.ObjectVersion)
}

func TestUpdateTagAppliesUpdatesAndBumpsTagVersion(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	header, err := svc.CreateObject(ctx, metadataservice.CreateObjectRequest{
		Tenant:     testTenant,
		ObjectType: metadata.ObjectTypeModel,
		Definition: modelDefinition(),
	})
	require.NoError(t, err)

	owner, err := metadata.EncodeValue(metadata.TypeString, "alice")
	require.NoError(t, err)

	tagHeader, err := svc.UpdateTag(ctx, metadataservice.UpdateTagRequest{
		Tenant:        testTenant,
		ObjectType:    metadata.ObjectTypeModel,
		ObjectID:      header.ObjectID,
		ObjectVersion: header.ObjectVersion,
		TagUpdates: []metadata.TagUpdate{
			{AttrName: "owner", Operation: metadata.OpCreateAttr, Value: owner},
		},
	})
	require.NoError(t, err)
	require.Equal(t, int64(2), tagHeader.TagVersion)

	tag, err := svc.ReadObject(ctx, testTenant, metadata.ObjectTypeModel, header.ObjectID, metadata.SelectorForLatest(tagHeader))
	require.NoError(t, err)
	require.Equal(t, "alice", *tag.Attrs["owner"].String)
}

func TestReadBatchRejectsMixedObjectTypes(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	header, err := svc.CreateObject(ctx, metadataservice.CreateObjectRequest{
		Tenant:     testTenant,
		ObjectType: metadata.ObjectTypeModel,
		Definition: modelDefinition(),
	})
	require.NoError(t, err)

	_, err = svc.ReadBatch(ctx, testTenant, []metadataservice.ReadBatchItem{
		{ObjectType: metadata.ObjectTypeModel, ObjectID: header.ObjectID, Selector: metadata.SelectorForLatest(header)},
		{ObjectType: metadata.ObjectTypeFlow, ObjectID: header.ObjectID, Selector: metadata.SelectorForLatest(header)},
	})
	require.Error(t, err)
	var dbErr *metadb.Error
	require.ErrorAs(t, err, &dbErr)
	require.Equal(t, metadb.KindInvalidArgument, dbErr.Kind)
}

func TestSearchFindsCreatedObject(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	header, err := svc.CreateObject(ctx, metadataservice.CreateObjectRequest{
		Tenant:     testTenant,
		ObjectType: metadata.ObjectTypeModel,
		Definition: modelDefinition(),
	})
	require.NoError(t, err)

	headers, err := svc.Search(ctx, testTenant, metadb.SearchCriteria{ObjectType: metadata.ObjectTypeModel})
	require.NoError(t, err)

	found := false
	for _, h := range headers {
		if h.ObjectID == header.ObjectID {
			found = true
		}
	}
	require.True(t, found)
}
