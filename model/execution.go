package model

import "time"

type ExecutionState string

const EXECUTION_RUNNING ExecutionState = "RUNNING"
const EXECUTION_COMPLETED ExecutionState = "COMPLETED"
const EXECUTION_FAILED ExecutionState = "FAILED"

// Execution is one concrete run of a workflow definition. The Context map is
// private to the run; it is persisted with the execution for offline diagnosis
// and never mutated after the execution reaches a terminal state.
type Execution struct {
	ExecutionId   string         `json:"executionId"`
	WorkflowId    string         `json:"workflowId"`
	TenantId      string         `json:"tenantId"`
	State         ExecutionState `json:"state"`
	Context       map[string]any `json:"context"`
	LastStepId    string         `json:"lastStepId,omitempty"`
	FailureReason string         `json:"failureReason,omitempty"`
	StartedAt     time.Time      `json:"startedAt"`
	CompletedAt   time.Time      `json:"completedAt,omitempty"`
}
