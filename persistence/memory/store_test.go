package memory

import (
	"context"
	"fmt"
	"testing"

	"github.com/dogansystem/agentflow/model"
	"github.com/dogansystem/agentflow/persistence"
	"github.com/stretchr/testify/require"
)

func TestDefinitionRoundTrip(t *testing.T) {
	factory := NewFactory()
	store, err := factory.Open("tenant_a")
	require.NoError(t, err)
	require.Equal(t, "tenant_a", store.TenantId())

	wf := &model.WorkflowDefinition{
		Id:       "wf1",
		TenantId: "tenant_a",
		Name:     "welcome",
		Steps:    []model.WorkflowStep{{StepId: "A", ActionType: "wait"}},
		Enabled:  true,
	}
	require.NoError(t, store.SaveDefinition(context.Background(), wf))

	got, err := store.GetDefinition(context.Background(), "wf1")
	require.NoError(t, err)
	require.Equal(t, "welcome", got.Name)
	require.Len(t, got.Steps, 1)

	// mutations of the returned copy must not leak into the store
	got.Name = "mutated"
	again, err := store.GetDefinition(context.Background(), "wf1")
	require.NoError(t, err)
	require.Equal(t, "welcome", again.Name)

	require.NoError(t, store.DeleteDefinition(context.Background(), "wf1"))
	_, err = store.GetDefinition(context.Background(), "wf1")
	var notFound persistence.NotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, "workflow", notFound.Entity)
}

func TestDeleteUnknownDefinition(t *testing.T) {
	factory := NewFactory()
	store, err := factory.Open("tenant_a")
	require.NoError(t, err)
	err = store.DeleteDefinition(context.Background(), "nope")
	var notFound persistence.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestDataSurvivesReopen(t *testing.T) {
	factory := NewFactory()
	store, err := factory.Open("tenant_a")
	require.NoError(t, err)
	require.NoError(t, store.SaveDefinition(context.Background(), &model.WorkflowDefinition{Id: "wf1", Name: "keep"}))
	require.NoError(t, store.Close())

	reopened, err := factory.Open("tenant_a")
	require.NoError(t, err)
	got, err := reopened.GetDefinition(context.Background(), "wf1")
	require.NoError(t, err)
	require.Equal(t, "keep", got.Name)
}

func TestTenantsAreSeparated(t *testing.T) {
	factory := NewFactory()
	a, err := factory.Open("tenant_a")
	require.NoError(t, err)
	b, err := factory.Open("tenant_b")
	require.NoError(t, err)

	require.NoError(t, a.SaveDefinition(context.Background(), &model.WorkflowDefinition{Id: "wf1"}))
	_, err = b.GetDefinition(context.Background(), "wf1")
	var notFound persistence.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestExecutionHistoryOrderAndLimit(t *testing.T) {
	factory := NewFactory()
	store, err := factory.Open("tenant_a")
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		execution := &model.Execution{
			ExecutionId: fmt.Sprintf("exec-%d", i),
			WorkflowId:  "wf1",
			TenantId:    "tenant_a",
			State:       model.EXECUTION_RUNNING,
		}
		require.NoError(t, store.SaveExecution(context.Background(), execution))
	}
	// re-saving an execution must not duplicate its history entry
	require.NoError(t, store.SaveExecution(context.Background(), &model.Execution{
		ExecutionId: "exec-0",
		WorkflowId:  "wf1",
		TenantId:    "tenant_a",
		State:       model.EXECUTION_COMPLETED,
	}))
	require.NoError(t, store.SaveExecution(context.Background(), &model.Execution{
		ExecutionId: "other",
		WorkflowId:  "wf2",
		TenantId:    "tenant_a",
		State:       model.EXECUTION_RUNNING,
	}))

	history, err := store.LoadExecutionHistory(context.Background(), "wf1", 0)
	require.NoError(t, err)
	require.Len(t, history, 5)
	require.Equal(t, "exec-4", history[0].ExecutionId) // newest first
	require.Equal(t, "exec-0", history[4].ExecutionId)

	limited, err := store.LoadExecutionHistory(context.Background(), "wf1", 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	require.Equal(t, "exec-4", limited[0].ExecutionId)

	all, err := store.LoadExecutionHistory(context.Background(), "", 0)
	require.NoError(t, err)
	require.Len(t, all, 6)
	require.Equal(t, "other", all[0].ExecutionId)
}

func TestDirectoryStoreRoundTrip(t *testing.T) {
	store := NewDirectoryStore()
	tn := &model.Tenant{Id: "tenant_a", Name: "acme", Status: model.TENANT_TRIAL}
	require.NoError(t, store.SaveTenant(context.Background(), tn))

	got, err := store.GetTenant(context.Background(), "tenant_a")
	require.NoError(t, err)
	require.Equal(t, "acme", got.Name)

	got.Name = "mutated"
	again, err := store.GetTenant(context.Background(), "tenant_a")
	require.NoError(t, err)
	require.Equal(t, "acme", again.Name)

	_, err = store.GetTenant(context.Background(), "tenant_b")
	var notFound persistence.NotFoundError
	require.ErrorAs(t, err, &notFound)

	tenants, err := store.ListTenants(context.Background())
	require.NoError(t, err)
	require.Len(t, tenants, 1)
}
