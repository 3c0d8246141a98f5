package tenant

import (
	"context"
	"sync"
	"testing"

	"github.com/dogansystem/agentflow/model"
	"github.com/dogansystem/agentflow/persistence"
	"github.com/dogansystem/agentflow/persistence/memory"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) (*Router, *Directory, *model.Tenant) {
	t.Helper()
	directory := NewDirectory(memory.NewDirectoryStore(), 14)
	router := NewRouter(directory, memory.NewFactory())
	tn, err := directory.Create(context.Background(), "acme", "starter")
	require.NoError(t, err)
	return router, directory, tn
}

func TestRouterResolve(t *testing.T) {
	for scenario, fn := range map[string]func(t *testing.T){
		"unknown tenant": func(t *testing.T) {
			router, _, _ := setupRouter(t)
			_, err := router.Resolve(context.Background(), "tenant_missing")
			var notFound TenantNotFoundError
			require.ErrorAs(t, err, &notFound)
			require.Equal(t, "tenant_missing", notFound.TenantId)
		},
		"suspended tenant refused": func(t *testing.T) {
			router, directory, tn := setupRouter(t)
			require.NoError(t, directory.Suspend(context.Background(), tn.Id))
			_, err := router.Resolve(context.Background(), tn.Id)
			var inactive TenantInactiveError
			require.ErrorAs(t, err, &inactive)
			require.Equal(t, model.TENANT_SUSPENDED, inactive.Status)
		},
		"cancelled tenant refused": func(t *testing.T) {
			router, directory, tn := setupRouter(t)
			require.NoError(t, directory.Cancel(context.Background(), tn.Id))
			_, err := router.Resolve(context.Background(), tn.Id)
			var inactive TenantInactiveError
			require.ErrorAs(t, err, &inactive)
		},
		"trial tenant allowed": func(t *testing.T) {
			router, _, tn := setupRouter(t)
			store, err := router.Resolve(context.Background(), tn.Id)
			require.NoError(t, err)
			require.Equal(t, tn.Id, store.TenantId())
		},
		"active tenant allowed": func(t *testing.T) {
			router, directory, tn := setupRouter(t)
			require.NoError(t, directory.Activate(context.Background(), tn.Id))
			_, err := router.Resolve(context.Background(), tn.Id)
			require.NoError(t, err)
		},
	} {
		t.Run(scenario, fn)
	}
}

func TestResolveUnderForeignScopeFails(t *testing.T) {
	router, directory, tn := setupRouter(t)
	other, err := directory.Create(context.Background(), "rival", "starter")
	require.NoError(t, err)

	err = router.WithTenant(context.Background(), tn.Id, func(ctx context.Context, store persistence.Store) error {
		_, err := router.Resolve(ctx, other.Id)
		return err
	})
	var crossErr CrossTenantAccessError
	require.ErrorAs(t, err, &crossErr)
	require.Equal(t, tn.Id, crossErr.Active)
	require.Equal(t, other.Id, crossErr.Requested)
}

func TestNestedWithTenantForOtherTenantFails(t *testing.T) {
	router, directory, tn := setupRouter(t)
	other, err := directory.Create(context.Background(), "rival", "starter")
	require.NoError(t, err)

	err = router.WithTenant(context.Background(), tn.Id, func(ctx context.Context, store persistence.Store) error {
		return router.WithTenant(ctx, other.Id, func(ctx context.Context, store persistence.Store) error {
			t.Fatal("nested scope for a different tenant must not run")
			return nil
		})
	})
	var crossErr CrossTenantAccessError
	require.ErrorAs(t, err, &crossErr)
}

func TestNestedWithTenantForSameTenantSucceeds(t *testing.T) {
	router, _, tn := setupRouter(t)
	err := router.WithTenant(context.Background(), tn.Id, func(ctx context.Context, store persistence.Store) error {
		return router.WithTenant(ctx, tn.Id, func(ctx context.Context, store persistence.Store) error {
			return nil
		})
	})
	require.NoError(t, err)
}

func TestStorageAccessWithoutScopeFails(t *testing.T) {
	router, _, tn := setupRouter(t)
	store, err := router.Resolve(context.Background(), tn.Id)
	require.NoError(t, err)

	// the caller never entered a scope, so every operation must be refused
	_, err = store.LoadDefinitions(context.Background())
	var noScope NoTenantContextError
	require.ErrorAs(t, err, &noScope)

	err = store.SaveDefinition(context.Background(), &model.WorkflowDefinition{Id: "wf1"})
	require.ErrorAs(t, err, &noScope)
}

func TestScopedStorageIsIsolatedPerTenant(t *testing.T) {
	router, directory, tn := setupRouter(t)
	other, err := directory.Create(context.Background(), "rival", "starter")
	require.NoError(t, err)

	wf := &model.WorkflowDefinition{Id: "wf1", Name: "only-mine", Enabled: true}
	err = router.WithTenant(context.Background(), tn.Id, func(ctx context.Context, store persistence.Store) error {
		return store.SaveDefinition(ctx, wf)
	})
	require.NoError(t, err)

	err = router.WithTenant(context.Background(), other.Id, func(ctx context.Context, store persistence.Store) error {
		_, err := store.GetDefinition(ctx, "wf1")
		var notFound persistence.NotFoundError
		require.ErrorAs(t, err, &notFound)
		definitions, err := store.LoadDefinitions(ctx)
		require.NoError(t, err)
		require.Empty(t, definitions)
		return nil
	})
	require.NoError(t, err)
}

func TestCurrentTenantReportsScope(t *testing.T) {
	router, _, tn := setupRouter(t)
	_, ok := router.CurrentTenant(context.Background())
	require.False(t, ok)
	err := router.WithTenant(context.Background(), tn.Id, func(ctx context.Context, store persistence.Store) error {
		active, ok := router.CurrentTenant(ctx)
		require.True(t, ok)
		require.Equal(t, tn.Id, active)
		return nil
	})
	require.NoError(t, err)
}

func TestConcurrentScopesShareOneHandle(t *testing.T) {
	router, _, tn := setupRouter(t)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			err := router.WithTenant(context.Background(), tn.Id, func(ctx context.Context, store persistence.Store) error {
				return store.SaveExecution(ctx, &model.Execution{
					ExecutionId: string(rune('a' + n)),
					WorkflowId:  "wf1",
					TenantId:    tn.Id,
					State:       model.EXECUTION_RUNNING,
				})
			})
			require.NoError(t, err)
		}(i)
	}
	wg.Wait()

	err := router.WithTenant(context.Background(), tn.Id, func(ctx context.Context, store persistence.Store) error {
		history, err := store.LoadExecutionHistory(ctx, "wf1", 100)
		require.NoError(t, err)
		require.Len(t, history, 16)
		return nil
	})
	require.NoError(t, err)
}
