package dataservice_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tracplatform/trac/internal/codec"
	"github.com/tracplatform/trac/internal/dataservice"
	"github.com/tracplatform/trac/internal/metadata"
	"github.com/tracplatform/trac/internal/metadb"
	"github.com/tracplatform/trac/internal/metadb/embedded"
	"github.com/tracplatform/trac/internal/objectstore"
)

const testTenant = "acme"

func newTestService(t *testing.T) *dataservice.Service {
	t.Helper()
	adapter, err := embedded.Open(t.TempDir() + "/trac.db")
	require.NoError(t, err)
	t.Cleanup(func() { adapter.Close() })
	require.NoError(t, adapter.ProvisionTenant(testTenant))

	db := metadb.New(adapter)

	store, err := objectstore.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	stores := objectstore.NewRegistry()
	stores.Register("default", store)

	codecs := codec.NewRegistry()
	codecs.Register(codec.CSVCodec{})
	codecs.Register(codec.JSONCodec{})

	return dataservice.New(db, stores, codecs, dataservice.WithDefaultStorageFormat("text/csv"))
}

func tableSchema() *metadata.SchemaDefinition {
	return &metadata.SchemaDefinition{
		SchemaType: metadata.SchemaTypeTable,
		Table: metadata.TableSchema{
			Fields: []metadata.FieldSchema{
				{FieldName: "id", FieldType: metadata.TypeInteger},
				{FieldName: "name", FieldType: metadata.TypeString},
			},
		},
	}
}

func TestCreateThenReadDataset(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	schema := tableSchema()

	header, err := svc.CreateDataset(ctx, dataservice.DatasetWriteRequest{
		Tenant:     testTenant,
		Schema:     schema,
		MimeType:   "text/csv",
		StorageKey: "default",
	}, bytes.NewBufferString("id,name\n1,alpha\n2,beta\n"))
	require.NoError(t, err)
	require.Equal(t, int64(1), header.ObjectVersion)
	require.Equal(t, int64(1), header.TagVersion)

	var out bytes.Buffer
	v1 := int64(1)
	result, err := svc.ReadDataset(ctx, dataservice.ReadRequest{
		Tenant:   testTenant,
		Selector: metadata.TagSelector{ObjectType: metadata.ObjectTypeData, ObjectID: header.ObjectID, ObjectVersion: &v1, LatestTag: true},
		MimeType: "text/csv",
	}, &out)
	require.NoError(t, err)
	require.Equal(t, "id,name\n1,alpha\n2,beta\n", out.String())
	require.Len(t, result.Schema.Table.Fields, 2)
}

func TestUpdateDatasetRejectsFieldRemoval(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	schema := tableSchema()

	header, err := svc.CreateDataset(ctx, dataservice.DatasetWriteRequest{
		Tenant:     testTenant,
		Schema:     schema,
		MimeType:   "text/csv",
		StorageKey: "default",
	}, bytes.NewBufferString("id,name\n1,alpha\n"))
	require.NoError(t, err)

	narrowed := &metadata.SchemaDefinition{
		SchemaType: metadata.SchemaTypeTable,
		Table:      metadata.TableSchema{Fields: []metadata.FieldSchema{{FieldName: "id", FieldType: metadata.TypeInteger}}},
	}
	v1 := int64(1)
	_, err = svc.UpdateDataset(ctx, dataservice.DatasetWriteRequest{
		Tenant:     testTenant,
		Schema:     narrowed,
		MimeType:   "text/csv",
		StorageKey: "default",
		Prior:      &metadata.TagSelector{ObjectType: metadata.ObjectTypeData, ObjectID: header.ObjectID, ObjectVersion: &v1, LatestTag: true},
	}, bytes.NewBufferString("id\n1\n"))
	require.Error(t, err)
	var dbErr *metadb.Error
	require.ErrorAs(t, err, &dbErr)
	require.Equal(t, metadb.KindFailedPrecondition, dbErr.Kind)
}

func TestUpdateDatasetAppendsDelta(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	schema := tableSchema()

	header, err := svc.CreateDataset(ctx, dataservice.DatasetWriteRequest{
		Tenant:     testTenant,
		Schema:     schema,
		MimeType:   "text/csv",
		StorageKey: "default",
	}, bytes.NewBufferString("id,name\n1,alpha\n"))
	require.NoError(t, err)

	v1 := int64(1)
	updated, err := svc.UpdateDataset(ctx, dataservice.DatasetWriteRequest{
		Tenant:     testTenant,
		Schema:     schema,
		MimeType:   "text/csv",
		StorageKey: "default",
		Prior:      &metadata.TagSelector{ObjectType: metadata.ObjectTypeData, ObjectID: header.ObjectID, ObjectVersion: &v1, LatestTag: true},
	}, bytes.NewBufferString("id,name\n2,beta\n"))
	require.NoError(t, err)
	require.Equal(t, int64(2), updated.ObjectVersion)

	var out bytes.Buffer
	v2 := int64(2)
	_, err = svc.ReadDataset(ctx, dataservice.ReadRequest{
		Tenant:   testTenant,
		Selector: metadata.TagSelector{ObjectType: metadata.ObjectTypeData, ObjectID: header.ObjectID, ObjectVersion: &v2, LatestTag: true},
		MimeType: "text/csv",
	}, &out)
	require.NoError(t, err)
	require.Equal(t, "id,name\n2,beta\n", out.String())
}

func TestCreateThenReadFile(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	header, err := svc.CreateFile(ctx, dataservice.FileWriteRequest{
		Tenant:     testTenant,
		Name:       "report",
		Extension:  "txt",
		MimeType:   "text/plain",
		StorageKey: "default",
	}, bytes.NewBufferString("hello world"))
	require.NoError(t, err)

	var out bytes.Buffer
	v1 := int64(1)
	result, err := svc.ReadFile(ctx, dataservice.ReadRequest{
		Tenant:   testTenant,
		Selector: metadata.TagSelector{ObjectType: metadata.ObjectTypeFile, ObjectID: header.ObjectID, ObjectVersion: &v1, LatestTag: true},
	}, &out)
	require.NoError(t, err)
	require.Equal(t, "hello world", out.String())
	require.Equal(t, "report", result.File.Name)
	require.Equal(t, int64(len("hello world")), result.File.Size)
}

func TestCreateDatasetRejectsBothSchemaAndSchemaID(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	schema := tableSchema()
	v1 := int64(1)

	_, err := svc.CreateDataset(ctx, dataservice.DatasetWriteRequest{
		Tenant:     testTenant,
		Schema:     schema,
		SchemaID:   &metadata.TagSelector{ObjectType: metadata.ObjectTypeSchema, ObjectID: "x", ObjectVersion: &v1, LatestTag: true},
		MimeType:   "text/csv",
		StorageKey: "default",
	}, bytes.NewBufferString("id,name\n1,a\n"))
	require.Error(t, err)
	var dbErr *metadb.Error
	require.ErrorAs(t, err, &dbErr)
	require.Equal(t, metadb.KindInvalidArgument, dbErr.Kind)
}
