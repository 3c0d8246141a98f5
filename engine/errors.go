package engine

import "fmt"

// ConcurrencyLimitError means a trigger was refused because the definition's
// max_concurrent was already met. The trigger is dropped, not queued; callers
// needing guaranteed delivery must keep their own outbox.
type ConcurrencyLimitError struct {
	TenantId      string
	WorkflowId    string
	MaxConcurrent int
}

func (e ConcurrencyLimitError) Error() string {
	return fmt.Sprintf("workflow %s already running at max concurrency %d", e.WorkflowId, e.MaxConcurrent)
}

type WorkflowDisabledError struct {
	WorkflowId string
	Reason     string
}

func (e WorkflowDisabledError) Error() string {
	return fmt.Sprintf("workflow %s is %s", e.WorkflowId, e.Reason)
}

type ValidationError struct {
	WorkflowId string
	Message    string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid workflow %s: %s", e.WorkflowId, e.Message)
}
