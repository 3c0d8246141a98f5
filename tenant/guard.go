package tenant

import (
	"context"

	"github.com/dogansystem/agentflow/model"
	"github.com/dogansystem/agentflow/persistence"
)

var _ persistence.Store = new(guardedStore)

// guardedStore asserts the ambient tenant scope before delegating to the real
// store. Every write additionally takes the tenant's write mutex, so
// concurrent writers to one tenant are serialized.
type guardedStore struct {
	inner    persistence.Store
	handle   *handle
	tenantId string
}

func (g *guardedStore) check(ctx context.Context) error {
	active, ok := FromContext(ctx)
	if !ok {
		return NoTenantContextError{}
	}
	if active != g.tenantId {
		return CrossTenantAccessError{Active: active, Requested: g.tenantId}
	}
	return nil
}

func (g *guardedStore) TenantId() string {
	return g.tenantId
}

func (g *guardedStore) SaveDefinition(ctx context.Context, wf *model.WorkflowDefinition) error {
	if err := g.check(ctx); err != nil {
		return err
	}
	g.handle.writeMu.Lock()
	defer g.handle.writeMu.Unlock()
	return g.inner.SaveDefinition(ctx, wf)
}

func (g *guardedStore) GetDefinition(ctx context.Context, workflowId string) (*model.WorkflowDefinition, error) {
	if err := g.check(ctx); err != nil {
		return nil, err
	}
	return g.inner.GetDefinition(ctx, workflowId)
}

func (g *guardedStore) LoadDefinitions(ctx context.Context) ([]*model.WorkflowDefinition, error) {
	if err := g.check(ctx); err != nil {
		return nil, err
	}
	return g.inner.LoadDefinitions(ctx)
}

func (g *guardedStore) DeleteDefinition(ctx context.Context, workflowId string) error {
	if err := g.check(ctx); err != nil {
		return err
	}
	g.handle.writeMu.Lock()
	defer g.handle.writeMu.Unlock()
	return g.inner.DeleteDefinition(ctx, workflowId)
}

func (g *guardedStore) SaveExecution(ctx context.Context, execution *model.Execution) error {
	if err := g.check(ctx); err != nil {
		return err
	}
	g.handle.writeMu.Lock()
	defer g.handle.writeMu.Unlock()
	return g.inner.SaveExecution(ctx, execution)
}

func (g *guardedStore) GetExecution(ctx context.Context, executionId string) (*model.Execution, error) {
	if err := g.check(ctx); err != nil {
		return nil, err
	}
	return g.inner.GetExecution(ctx, executionId)
}

func (g *guardedStore) LoadExecutionHistory(ctx context.Context, workflowId string, limit int) ([]*model.Execution, error) {
	if err := g.check(ctx); err != nil {
		return nil, err
	}
	return g.inner.LoadExecutionHistory(ctx, workflowId, limit)
}

func (g *guardedStore) Close() error {
	// lifecycle is owned by the router
	return nil
}
