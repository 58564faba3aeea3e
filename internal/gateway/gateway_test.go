package gateway_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"github.com/tracplatform/trac/internal/admin"
	"github.com/tracplatform/trac/internal/config"
	"github.com/tracplatform/trac/internal/gateway"
	"github.com/tracplatform/trac/internal/grpcapi"
	"github.com/tracplatform/trac/internal/health"
	"github.com/tracplatform/trac/internal/metadb"
	"github.com/tracplatform/trac/internal/metadb/embedded"
	"github.com/tracplatform/trac/internal/metadataservice"
	rpccodec "github.com/tracplatform/trac/internal/rpc/codec"
	"github.com/tracplatform/trac/internal/rpc/trac"
)

func newGateway(t *testing.T) *httptest.Server {
	t.Helper()

	adapter, err := embedded.Open(t.TempDir() + "/trac.db")
	require.NoError(t, err)
	t.Cleanup(func() { adapter.Close() })

	adminSvc := admin.New(adapter)
	healthSvc := health.New(map[string]health.Check{})
	metadataSvc := metadataservice.New(metadb.New(adapter))

	lis := bufconn.Listen(1024 * 1024)
	server := grpcapi.NewServer(nil, grpcapi.NewMetadataServer(metadataSvc), grpcapi.NewAdminServer(adminSvc), grpcapi.NewHealthServer(healthSvc), zerolog.Nop())
	go func() { _ = server.Serve(lis) }()
	t.Cleanup(server.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.Dial() }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(rpccodec.Name)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	routes, err := gateway.BuildRoutes(config.GatewayConfig{})
	require.NoError(t, err)

	gw, err := gateway.New(routes, trac.NewAdminServiceClient(conn), trac.NewHealthClient(conn), trac.NewMetadataServiceClient(conn), nil, zerolog.Nop())
	require.NoError(t, err)

	ts := httptest.NewServer(gw)
	t.Cleanup(ts.Close)
	return ts
}

func TestGatewayCreateAndListTenants(t *testing.T) {
	ts := newGateway(t)

	resp, err := http.Post(ts.URL+"/trac/api/v1/admin/tenants", "application/json",
		jsonBody(t, map[string]string{"tenantId": "acme"}))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp2, err := http.Get(ts.URL + "/trac/api/v1/admin/tenants")
	require.NoError(t, err)
	defer resp2.Body.Close()
	require.Equal(t, http.StatusOK, resp2.StatusCode)

	var body struct {
		TenantIDs []string `json:"tenantIds"`
	}
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&body))
	require.Contains(t, body.TenantIDs, "acme")
}

func TestGatewayCreateObject(t *testing.T) {
	ts := newGateway(t)

	tenantResp, err := http.Post(ts.URL+"/trac/api/v1/admin/tenants", "application/json",
		jsonBody(t, map[string]string{"tenantId": "acme"}))
	require.NoError(t, err)
	defer tenantResp.Body.Close()
	require.Equal(t, http.StatusOK, tenantResp.StatusCode)

	req := map[string]any{
		"tenant":     "acme",
		"objectType": "MODEL",
		"definition": map[string]any{
			"objectType": "MODEL",
			"model": map[string]any{
				"schemaVersion": 1,
				"fields":        map[string]any{"entryPoint": "pkg.model:Model"},
			},
		},
	}
	resp, err := http.Post(ts.URL+"/trac/api/v1/metadata/create-object", "application/json", jsonBody(t, req))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Header struct {
			ObjectVersion int64 `json:"objectVersion"`
		} `json:"header"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, int64(1), body.Header.ObjectVersion)
}

func TestGatewayHealthz(t *testing.T) {
	ts := newGateway(t)

	resp, err := http.Get(ts.URL + "/trac/api/v1/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(raw)
}
