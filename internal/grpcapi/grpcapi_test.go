package grpcapi_test

import (
	"context"
	"io"
	"net"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"github.com/tracplatform/trac/internal/admin"
	"github.com/tracplatform/trac/internal/codec"
	"github.com/tracplatform/trac/internal/dataservice"
	"github.com/tracplatform/trac/internal/grpcapi"
	"github.com/tracplatform/trac/internal/health"
	"github.com/tracplatform/trac/internal/metadata"
	"github.com/tracplatform/trac/internal/metadb"
	"github.com/tracplatform/trac/internal/metadb/embedded"
	"github.com/tracplatform/trac/internal/metadataservice"
	"github.com/tracplatform/trac/internal/objectstore"
	rpccodec "github.com/tracplatform/trac/internal/rpc/codec"
	"github.com/tracplatform/trac/internal/rpc/trac"
)

const testTenant = "acme"

func dial(t *testing.T) *grpc.ClientConn {
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
	dataSvc := dataservice.New(db, stores, codecs, dataservice.WithDefaultStorageFormat("text/csv"))
	metadataSvc := metadataservice.New(db)
	adminSvc := admin.New(adapter)
	healthSvc := health.New(map[string]health.Check{})

	lis := bufconn.Listen(1024 * 1024)
	server := grpcapi.NewServer(grpcapi.NewDataServer(dataSvc), grpcapi.NewMetadataServer(metadataSvc), grpcapi.NewAdminServer(adminSvc), grpcapi.NewHealthServer(healthSvc), zerolog.Nop())
	go func() { _ = server.Serve(lis) }()
	t.Cleanup(server.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.Dial() }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(rpccodec.Name)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestAdminCreateThenListTenants(t *testing.T) {
	conn := dial(t)
	client := trac.NewAdminServiceClient(conn)
	ctx := context.Background()

	_, err := client.CreateTenant(ctx, &trac.CreateTenantRequest{TenantID: "globex"})
	require.NoError(t, err)

	resp, err := client.ListTenants(ctx, &trac.ListTenantsRequest{})
	require.NoError(t, err)
	require.Contains(t, resp.TenantIDs, "globex")
	require.Contains(t, resp.TenantIDs, testTenant)
}

func TestHealthCheckServing(t *testing.T) {
	conn := dial(t)
	client := trac.NewHealthClient(conn)
	resp, err := client.Check(context.Background(), &trac.HealthCheckRequest{})
	require.NoError(t, err)
	require.Equal(t, trac.StatusServing, resp.Status)
}

func TestDatasetWriteThenReadOverStream(t *testing.T) {
	conn := dial(t)
	client := trac.NewDataServiceClient(conn)
	ctx := context.Background()

	stream, err := client.CreateDataset(ctx)
	require.NoError(t, err)
	require.NoError(t, stream.Send(&trac.DatasetWriteRequest{Header: &trac.DatasetWriteHeader{
		Tenant: testTenant,
		Schema: &metadata.SchemaDefinition{
			SchemaType: metadata.SchemaTypeTable,
			Table: metadata.TableSchema{Fields: []metadata.FieldSchema{
				{FieldName: "id", FieldType: metadata.TypeInteger},
				{FieldName: "name", FieldType: metadata.TypeString},
			}},
		},
		MimeType:   "text/csv",
		StorageKey: "default",
	}}))
	require.NoError(t, stream.Send(&trac.DatasetWriteRequest{Content: []byte("id,name\n1,alpha\n")}))
	resp, err := stream.CloseAndRecv()
	require.NoError(t, err)
	require.Equal(t, int64(1), resp.Header.ObjectVersion)

	v1 := int64(1)
	readStream, err := client.ReadDataset(ctx, &trac.ReadRequest{
		Tenant:   testTenant,
		Selector: metadata.TagSelector{ObjectType: metadata.ObjectTypeData, ObjectID: resp.Header.ObjectID, ObjectVersion: &v1, LatestTag: true},
		MimeType: "text/csv",
	})
	require.NoError(t, err)

	first, err := readStream.Recv()
	require.NoError(t, err)
	require.NotNil(t, first.Schema)

	var content []byte
	for {
		msg, err := readStream.Recv()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		content = append(content, msg.Content...)
	}
	require.Equal(t, "id,name\n1,alpha\n", string(content))
}

func TestMetadataCreateUpdateThenReadObject(t *testing.T) {
	conn := dial(t)
	client := trac.NewMetadataServiceClient(conn)
	ctx := context.Background()

	def := metadata.ObjectDefinition{
		ObjectType: metadata.ObjectTypeModel,
		Model: &metadata.OpaquePayload{
			SchemaVersion: 1,
			Fields:        map[string]any{"entryPoint": "pkg.model:Model"},
		},
	}

	created, err := client.CreateObject(ctx, &trac.CreateObjectRequest{
		Tenant:     testTenant,
		ObjectType: metadata.ObjectTypeModel,
		Definition: def,
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), created.Header.ObjectVersion)

	updated, err := client.UpdateObject(ctx, &trac.UpdateObjectRequest{
		Tenant:     testTenant,
		ObjectType: metadata.ObjectTypeModel,
		ObjectID:   created.Header.ObjectID,
		Definition: def,
	})
	require.NoError(t, err)
	require.Equal(t, int64(2), updated.Header.ObjectVersion)

	read, err := client.ReadObject(ctx, &trac.ReadObjectRequest{
		Tenant:     testTenant,
		ObjectType: metadata.ObjectTypeModel,
		ObjectID:   created.Header.ObjectID,
		Selector:   metadata.SelectorForLatest(updated.Header),
	})
	require.NoError(t, err)
	require.Equal(t, "pkg.model:Model", read.Tag.Definition.Model.Fields["entryPoint"])
}

func TestMetadataSearchFindsCreatedObject(t *testing.T) {
	conn := dial(t)
	client := trac.NewMetadataServiceClient(conn)
	ctx := context.Background()

	created, err := client.CreateObject(ctx, &trac.CreateObjectRequest{
		Tenant:     testTenant,
		ObjectType: metadata.ObjectTypeModel,
		Definition: metadata.ObjectDefinition{
			ObjectType: metadata.ObjectTypeModel,
			Model:      &metadata.OpaquePayload{SchemaVersion: 1, Fields: map[string]any{}},
		},
	})
	require.NoError(t, err)

	resp, err := client.Search(ctx, &trac.SearchRequest{Tenant: testTenant, ObjectType: metadata.ObjectTypeModel})
	require.NoError(t, err)

	found := false
	for _, h := range resp.Headers {
		if h.ObjectID == created.Header.ObjectID {
			found = true
		}
	}
	require.True(t, found)
}
