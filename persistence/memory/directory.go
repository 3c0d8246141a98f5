package memory

import (
	"context"
	"sync"

	"github.com/dogansystem/agentflow/model"
	"github.com/dogansystem/agentflow/persistence"
)

var _ persistence.DirectoryStore = new(DirectoryStore)

type DirectoryStore struct {
	mu      sync.RWMutex
	tenants map[string]*model.Tenant
}

func NewDirectoryStore() *DirectoryStore {
	return &DirectoryStore{
		tenants: make(map[string]*model.Tenant),
	}
}

func (d *DirectoryStore) SaveTenant(ctx context.Context, tenant *model.Tenant) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	clone := *tenant
	d.tenants[tenant.Id] = &clone
	return nil
}

func (d *DirectoryStore) GetTenant(ctx context.Context, tenantId string) (*model.Tenant, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	tenant, ok := d.tenants[tenantId]
	if !ok {
		return nil, persistence.NotFoundError{Entity: "tenant", Id: tenantId}
	}
	clone := *tenant
	return &clone, nil
}

func (d *DirectoryStore) ListTenants(ctx context.Context) ([]*model.Tenant, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	result := make([]*model.Tenant, 0, len(d.tenants))
	for _, tenant := range d.tenants {
		clone := *tenant
		result = append(result, &clone)
	}
	return result, nil
}
