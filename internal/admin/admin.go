// Package admin implements tenant provisioning CRUD (spec.md §6 "Admin:
// tenant and dynamic-config CRUD"), fleshed out the way warren's
// pkg/manager node/service CRUD handlers are: a thin service in front of
// the storage adapter's own admin operations, returning the same typed
// error taxonomy the rest of the platform uses.
package admin

import (
	"fmt"
	"regexp"

	"github.com/tracplatform/trac/internal/metadb"
)

var tenantIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{0,62}$`)

// Service provisions and lists tenants against an underlying metadb
// TenantAdmin-capable adapter.
type Service struct {
	tenants metadb.TenantAdmin
}

// New wraps tenants as an admin service.
func New(tenants metadb.TenantAdmin) *Service {
	return &Service{tenants: tenants}
}

// CreateTenant provisions a new tenant ID. TenantID must be a lowercase
// DNS-label-like token so it is safe to use as a storage-path prefix
// (internal/objectstore.TenantPrefix) and a metadb bucket/schema key.
func (s *Service) CreateTenant(tenantID string) error {
	if !tenantIDPattern.MatchString(tenantID) {
		return &metadb.Error{Kind: metadb.KindInvalidArgument, Msg: fmt.Sprintf("invalid tenant id %q", tenantID)}
	}
	if err := s.tenants.ProvisionTenant(tenantID); err != nil {
		return err
	}
	return nil
}

// ListTenants returns every provisioned tenant ID.
func (s *Service) ListTenants() ([]string, error) {
	return s.tenants.ListTenants()
}
