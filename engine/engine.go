package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dogansystem/agentflow/action"
	"github.com/dogansystem/agentflow/logger"
	"github.com/dogansystem/agentflow/model"
	"github.com/dogansystem/agentflow/persistence"
	"github.com/dogansystem/agentflow/tenant"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ExecutionHandle identifies a dispatched run. Done is closed when the run
// reaches a terminal state.
type ExecutionHandle struct {
	ExecutionId string
	Done        chan struct{}
}

// Engine interprets workflow definitions into dependency-ordered runs. Each
// accepted trigger gets one goroutine with ordinary blocking waits; there are
// no parallel branches inside a single run.
type Engine struct {
	router   *tenant.Router
	registry *action.Registry
	wg       *sync.WaitGroup

	mu      sync.Mutex
	running map[string]int // tenantId:workflowId -> running executions

	statsMu sync.Mutex
}

func NewEngine(router *tenant.Router, registry *action.Registry, wg *sync.WaitGroup) *Engine {
	return &Engine{
		router:   router,
		registry: registry,
		wg:       wg,
		running:  make(map[string]int),
	}
}

// RegisterWorkflow validates and stores a definition in the tenant's isolated
// storage. Cyclic step graphs are rejected here, not discovered at run time.
func (e *Engine) RegisterWorkflow(ctx context.Context, tenantId string, wf *model.WorkflowDefinition) error {
	if wf.Id == "" {
		wf.Id = uuid.New().String()
	}
	wf.TenantId = tenantId
	if wf.CreatedAt.IsZero() {
		wf.CreatedAt = time.Now()
	}
	if err := Validate(wf); err != nil {
		return err
	}
	return e.router.WithTenant(ctx, tenantId, func(ctx context.Context, store persistence.Store) error {
		if err := store.SaveDefinition(ctx, wf); err != nil {
			return err
		}
		logger.Info("workflow registered", zap.String("tenant", tenantId), zap.String("workflow", wf.Id), zap.String("name", wf.Name))
		return nil
	})
}

// ExecuteWorkflow is the triggering surface for one workflow. It admits the
// run against max_concurrent, persists the new execution and dispatches it
// asynchronously. Back-pressure is drop: a refused trigger returns
// ConcurrencyLimitError and is not queued.
func (e *Engine) ExecuteWorkflow(ctx context.Context, tenantId string, workflowId string, triggerData map[string]any) (*ExecutionHandle, error) {
	var handle *ExecutionHandle
	err := e.router.WithTenant(ctx, tenantId, func(ctx context.Context, store persistence.Store) error {
		wf, err := store.GetDefinition(ctx, workflowId)
		if err != nil {
			return err
		}
		if !wf.Enabled {
			return WorkflowDisabledError{WorkflowId: workflowId, Reason: "disabled"}
		}
		if wf.Paused {
			return WorkflowDisabledError{WorkflowId: workflowId, Reason: "paused"}
		}
		if err := e.admit(wf); err != nil {
			logger.Warn("workflow trigger dropped", zap.String("tenant", tenantId), zap.String("workflow", workflowId), zap.Error(err))
			return err
		}
		execution := newExecution(wf, triggerData)
		e.statsMu.Lock()
		wf.Stats.RunCount++
		wf.Stats.LastRun = execution.StartedAt
		saveErr := store.SaveDefinition(ctx, wf)
		e.statsMu.Unlock()
		if saveErr == nil {
			saveErr = store.SaveExecution(ctx, execution)
		}
		if saveErr != nil {
			e.finish(wf)
			return saveErr
		}
		handle = &ExecutionHandle{ExecutionId: execution.ExecutionId, Done: make(chan struct{})}
		e.wg.Add(1)
		go e.run(wf, execution, handle)
		logger.Info("execution dispatched", zap.String("tenant", tenantId), zap.String("workflow", workflowId), zap.String("execution", execution.ExecutionId))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return handle, nil
}

// TriggerByEvent starts every enabled event-triggered definition of the
// tenant that subscribes to the event. Refused or failed dispatches of one
// definition do not block the others.
func (e *Engine) TriggerByEvent(ctx context.Context, tenantId string, eventName string, payload map[string]any) ([]*ExecutionHandle, error) {
	var workflowIds []string
	err := e.router.WithTenant(ctx, tenantId, func(ctx context.Context, store persistence.Store) error {
		definitions, err := store.LoadDefinitions(ctx)
		if err != nil {
			return err
		}
		for _, wf := range definitions {
			if !wf.Enabled || wf.Paused || wf.Trigger.Type != model.TRIGGER_EVENT {
				continue
			}
			if event, _ := wf.Trigger.Config["event"].(string); event == eventName {
				workflowIds = append(workflowIds, wf.Id)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	triggerData := map[string]any{"event": eventName}
	for k, v := range payload {
		triggerData[k] = v
	}
	var handles []*ExecutionHandle
	for _, workflowId := range workflowIds {
		handle, err := e.ExecuteWorkflow(ctx, tenantId, workflowId, triggerData)
		if err != nil {
			logger.Error("event dispatch failed", zap.String("tenant", tenantId), zap.String("workflow", workflowId), zap.String("event", eventName), zap.Error(err))
			continue
		}
		handles = append(handles, handle)
	}
	return handles, nil
}

// RunningCount reports how many executions of the definition are in flight.
func (e *Engine) RunningCount(tenantId string, workflowId string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running[runningKey(tenantId, workflowId)]
}

func newExecution(wf *model.WorkflowDefinition, triggerData map[string]any) *model.Execution {
	if triggerData == nil {
		triggerData = map[string]any{}
	}
	now := time.Now()
	return &model.Execution{
		ExecutionId: uuid.New().String(),
		WorkflowId:  wf.Id,
		TenantId:    wf.TenantId,
		State:       model.EXECUTION_RUNNING,
		Context: map[string]any{
			"workflow_id":  wf.Id,
			"trigger_data": triggerData,
			"started_at":   now.Format(time.RFC3339),
		},
		StartedAt: now,
	}
}

func runningKey(tenantId string, workflowId string) string {
	return fmt.Sprintf("%s:%s", tenantId, workflowId)
}

func (e *Engine) admit(wf *model.WorkflowDefinition) error {
	maxConcurrent := wf.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	key := runningKey(wf.TenantId, wf.Id)
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running[key] >= maxConcurrent {
		return ConcurrencyLimitError{TenantId: wf.TenantId, WorkflowId: wf.Id, MaxConcurrent: maxConcurrent}
	}
	e.running[key]++
	return nil
}

func (e *Engine) finish(wf *model.WorkflowDefinition) {
	key := runningKey(wf.TenantId, wf.Id)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.running[key]--
	if e.running[key] <= 0 {
		delete(e.running, key)
	}
}
