package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/dogansystem/agentflow/action"
	"github.com/dogansystem/agentflow/logger"
	"github.com/dogansystem/agentflow/model"
	"github.com/dogansystem/agentflow/persistence"
	"github.com/dogansystem/agentflow/util"
	"go.uber.org/zap"
)

func (e *Engine) run(wf *model.WorkflowDefinition, execution *model.Execution, handle *ExecutionHandle) {
	defer e.wg.Done()
	defer close(handle.Done)
	defer e.finish(wf)
	err := e.router.WithTenant(context.Background(), wf.TenantId, func(ctx context.Context, store persistence.Store) error {
		e.runSteps(ctx, store, wf, execution)
		return e.recordOutcome(ctx, store, wf, execution)
	})
	if err != nil {
		logger.Error("error running execution", zap.String("tenant", wf.TenantId), zap.String("workflow", wf.Id), zap.String("execution", execution.ExecutionId), zap.Error(err))
	}
}

// runSteps walks the step graph. Readiness is tracked with a per-step counter
// of unmet depends_on edges; a step enqueued before its dependencies finish is
// parked and moved to the ready queue when its counter reaches zero. This
// keeps ordering deterministic for any insertion order of the ready queue.
func (e *Engine) runSteps(ctx context.Context, store persistence.Store, wf *model.WorkflowDefinition, execution *model.Execution) {
	remaining := make(map[string]int, len(wf.Steps))
	dependents := make(map[string][]string, len(wf.Steps))
	for _, step := range wf.Steps {
		remaining[step.StepId] = len(step.DependsOn)
		for _, dep := range step.DependsOn {
			dependents[dep] = append(dependents[dep], step.StepId)
		}
	}

	executed := make(map[string]bool)
	queued := make(map[string]bool)
	parked := make(map[string]bool)
	var ready []string

	complete := func(stepId string) {
		executed[stepId] = true
		for _, dependent := range dependents[stepId] {
			remaining[dependent]--
			if remaining[dependent] == 0 && parked[dependent] {
				delete(parked, dependent)
				ready = append(ready, dependent)
			}
		}
	}
	enqueue := func(stepId string) {
		if executed[stepId] || queued[stepId] {
			return
		}
		queued[stepId] = true
		if remaining[stepId] > 0 {
			parked[stepId] = true
		} else {
			ready = append(ready, stepId)
		}
	}

	for _, step := range wf.Steps {
		if len(step.DependsOn) == 0 {
			enqueue(step.StepId)
		}
	}

	for len(ready) > 0 {
		stepId := ready[0]
		ready = ready[1:]
		if executed[stepId] {
			continue
		}
		step := wf.Step(stepId)
		if step == nil {
			continue
		}
		execution.LastStepId = stepId

		if !util.EvaluateConditions(step.Conditions, execution.Context) {
			logger.Info("step skipped, conditions not met", zap.String("execution", execution.ExecutionId), zap.String("step", stepId))
			execution.Context[stepResultKey(stepId)] = resultToMap(action.Result{Success: true, Skipped: true})
			complete(stepId)
			for _, next := range step.OnSuccess {
				enqueue(next)
			}
			continue
		}

		result := e.invokeStep(ctx, step, execution)
		execution.Context[stepResultKey(stepId)] = resultToMap(result)
		if err := store.SaveExecution(ctx, execution); err != nil {
			logger.Error("error saving execution progress", zap.String("execution", execution.ExecutionId), zap.Error(err))
		}

		if result.Success {
			complete(stepId)
			for _, next := range step.OnSuccess {
				enqueue(next)
			}
			continue
		}

		retryKey := fmt.Sprintf("%s_retry_count", stepId)
		retries, _ := execution.Context[retryKey].(int)
		if retries < step.RetryCount {
			execution.Context[retryKey] = retries + 1
			logger.Info("retrying step", zap.String("execution", execution.ExecutionId), zap.String("step", stepId),
				zap.Int("retry", retries+1), zap.String("reason", result.Error))
			if step.RetryDelay > 0 {
				time.Sleep(time.Duration(step.RetryDelay) * time.Second)
			}
			ready = append(ready, stepId)
			continue
		}

		if len(step.OnFailure) > 0 {
			logger.Warn("step failed, routing to failure path", zap.String("execution", execution.ExecutionId), zap.String("step", stepId), zap.String("reason", result.Error))
			complete(stepId)
			for _, next := range step.OnFailure {
				enqueue(next)
			}
			continue
		}

		execution.FailureReason = result.Error
		execution.State = model.EXECUTION_FAILED
		logger.Error("execution failed", zap.String("execution", execution.ExecutionId), zap.String("step", stepId), zap.String("reason", result.Error))
		return
	}
}

// invokeStep dispatches one attempt through the action registry, applying the
// step's timeout as a context deadline.
func (e *Engine) invokeStep(ctx context.Context, step *model.WorkflowStep, execution *model.Execution) action.Result {
	config := util.ResolveParams(step.ActionConfig, execution.Context)
	stepCtx := ctx
	if step.Timeout > 0 {
		var cancel context.CancelFunc
		stepCtx, cancel = context.WithTimeout(ctx, time.Duration(step.Timeout)*time.Second)
		defer cancel()
	}
	result := e.registry.Execute(stepCtx, step.ActionType, config, execution.Context)
	if !result.Success && stepCtx.Err() == context.DeadlineExceeded {
		result.Error = fmt.Sprintf("step timeout after %ds: %s", step.Timeout, result.Error)
	}
	return result
}

func (e *Engine) recordOutcome(ctx context.Context, store persistence.Store, wf *model.WorkflowDefinition, execution *model.Execution) error {
	if execution.State != model.EXECUTION_FAILED {
		execution.State = model.EXECUTION_COMPLETED
	}
	execution.CompletedAt = time.Now()
	execution.Context["completed_at"] = execution.CompletedAt.Format(time.RFC3339)
	if err := store.SaveExecution(ctx, execution); err != nil {
		return err
	}

	e.statsMu.Lock()
	defer e.statsMu.Unlock()
	current, err := store.GetDefinition(ctx, wf.Id)
	if err != nil {
		return err
	}
	if execution.State == model.EXECUTION_COMPLETED {
		current.Stats.SuccessCount++
	} else {
		current.Stats.FailureCount++
	}
	if err := store.SaveDefinition(ctx, current); err != nil {
		return err
	}
	logger.Info("execution finished", zap.String("tenant", wf.TenantId), zap.String("workflow", wf.Id),
		zap.String("execution", execution.ExecutionId), zap.String("state", string(execution.State)))
	return nil
}

func stepResultKey(stepId string) string {
	return fmt.Sprintf("step_%s_result", stepId)
}

func resultToMap(result action.Result) map[string]any {
	out := map[string]any{"success": result.Success}
	if result.Skipped {
		out["skipped"] = true
	}
	if result.Data != nil {
		out["data"] = result.Data
	}
	if result.Error != "" {
		out["error"] = result.Error
	}
	return out
}
