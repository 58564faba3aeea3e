package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracplatform/trac/internal/config"
)

func TestBuildRoutesDefaultsAndBuiltins(t *testing.T) {
	routes, err := BuildRoutes(config.GatewayConfig{})
	require.NoError(t, err)

	var paths []string
	for _, r := range routes {
		paths = append(paths, r.Method+" "+r.Path)
	}
	assert.Contains(t, paths, "POST /trac/api/v1/admin/tenants")
	assert.Contains(t, paths, "GET /trac/api/v1/admin/tenants")
	assert.Contains(t, paths, "GET /trac/api/v1/healthz")
}

func TestBuildRoutesCustomOverridesBuiltin(t *testing.T) {
	routes, err := BuildRoutes(config.GatewayConfig{
		APIPrefix:  "/trac",
		RestPrefix: "/api/v1",
		Routes: []config.RouteConfig{
			{Method: "GET", Path: "/trac/api/v1/healthz", Service: "trac.Health", RPC: "Check"},
			{Method: "GET", Path: "/trac/api/v1/custom", Service: "trac.AdminService", RPC: "ListTenants"},
		},
	})
	require.NoError(t, err)
	assert.Len(t, routes, 11)
}

func TestBuildRoutesRejectsIncompleteCustomRoute(t *testing.T) {
	_, err := BuildRoutes(config.GatewayConfig{
		Routes: []config.RouteConfig{{Method: "GET", Path: "/x"}},
	})
	require.Error(t, err)
}
