package gateway

import (
	"fmt"

	"github.com/tracplatform/trac/internal/config"
)

// Route binds one REST endpoint to a gRPC service+method pair, the unit
// spec.md §4.G's route table is built from: built-in routes for the core
// services, plus any custom routes layered on from config.
type Route struct {
	Method  string
	Path    string
	Service string
	RPC     string
}

// builtinRoutes are registered for every deployment regardless of config —
// the Admin, Health and Metadata surfaces this module actually implements.
func builtinRoutes(apiPrefix, restPrefix string) []Route {
	base := apiPrefix + restPrefix
	return []Route{
		{Method: "POST", Path: base + "/admin/tenants", Service: "trac.AdminService", RPC: "CreateTenant"},
		{Method: "GET", Path: base + "/admin/tenants", Service: "trac.AdminService", RPC: "ListTenants"},
		{Method: "GET", Path: base + "/healthz", Service: "trac.Health", RPC: "Check"},
		{Method: "POST", Path: base + "/metadata/create-object", Service: "trac.MetadataService", RPC: "CreateObject"},
		{Method: "POST", Path: base + "/metadata/create-object-batch", Service: "trac.MetadataService", RPC: "CreateObjectBatch"},
		{Method: "POST", Path: base + "/metadata/update-object", Service: "trac.MetadataService", RPC: "UpdateObject"},
		{Method: "POST", Path: base + "/metadata/update-tag", Service: "trac.MetadataService", RPC: "UpdateTag"},
		{Method: "POST", Path: base + "/metadata/read-object", Service: "trac.MetadataService", RPC: "ReadObject"},
		{Method: "POST", Path: base + "/metadata/read-batch", Service: "trac.MetadataService", RPC: "ReadBatch"},
		{Method: "POST", Path: base + "/metadata/search", Service: "trac.MetadataService", RPC: "Search"},
	}
}

// BuildRoutes assembles the full route table: built-ins first, then
// cfg.Routes appended in declaration order — a custom route with a path
// that collides with a built-in overrides it, matching spec.md §4.G's
// "custom routes from config" layered on top of the generated ones.
func BuildRoutes(cfg config.GatewayConfig) ([]Route, error) {
	apiPrefix, restPrefix := cfg.APIPrefix, cfg.RestPrefix
	if apiPrefix == "" {
		apiPrefix = "/trac"
	}
	if restPrefix == "" {
		restPrefix = "/api/v1"
	}

	routes := builtinRoutes(apiPrefix, restPrefix)
	seen := make(map[string]int, len(routes))
	for i, r := range routes {
		seen[r.Method+" "+r.Path] = i
	}

	for _, rc := range cfg.Routes {
		if rc.Method == "" || rc.Path == "" || rc.Service == "" || rc.RPC == "" {
			return nil, fmt.Errorf("gateway: incomplete custom route %+v", rc)
		}
		route := Route{Method: rc.Method, Path: rc.Path, Service: rc.Service, RPC: rc.RPC}
		key := route.Method + " " + route.Path
		if i, ok := seen[key]; ok {
			routes[i] = route
			continue
		}
		seen[key] = len(routes)
		routes = append(routes, route)
	}
	return routes, nil
}
