package persistence

import (
	"context"
	"fmt"

	"github.com/dogansystem/agentflow/model"
)

type StorageLayerError struct {
	Message string
}

func (e StorageLayerError) Error() string {
	return fmt.Sprintf("storage layer error %s", e.Message)
}

type NotFoundError struct {
	Entity string
	Id     string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.Id)
}

// Store is the isolated storage handle of a single tenant. Every workflow
// definition and execution it returns belongs to exactly that tenant. Handles
// are produced by the tenant router, which wraps them in a scope guard; code
// outside the router never opens a Store directly.
type Store interface {
	TenantId() string
	SaveDefinition(ctx context.Context, wf *model.WorkflowDefinition) error
	GetDefinition(ctx context.Context, workflowId string) (*model.WorkflowDefinition, error)
	LoadDefinitions(ctx context.Context) ([]*model.WorkflowDefinition, error)
	DeleteDefinition(ctx context.Context, workflowId string) error
	SaveExecution(ctx context.Context, execution *model.Execution) error
	GetExecution(ctx context.Context, executionId string) (*model.Execution, error)
	LoadExecutionHistory(ctx context.Context, workflowId string, limit int) ([]*model.Execution, error)
	Close() error
}

// Factory opens the isolated storage of a tenant. Opening is lazy: no
// resources are bound to a tenant until its first scoped use.
type Factory interface {
	Open(tenantId string) (Store, error)
}

// DirectoryStore persists the platform-level tenant registry. It is not
// tenant-scoped; it backs the tenant directory, not tenant data.
type DirectoryStore interface {
	SaveTenant(ctx context.Context, tenant *model.Tenant) error
	GetTenant(ctx context.Context, tenantId string) (*model.Tenant, error)
	ListTenants(ctx context.Context) ([]*model.Tenant, error)
}
