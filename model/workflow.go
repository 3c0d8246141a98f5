package model

import "time"

type TriggerType string

const TRIGGER_SCHEDULED TriggerType = "scheduled"
const TRIGGER_EVENT TriggerType = "event"
const TRIGGER_CONDITION TriggerType = "condition"
const TRIGGER_WEBHOOK TriggerType = "webhook"

type Trigger struct {
	Type   TriggerType    `json:"type"`
	Config map[string]any `json:"config,omitempty"`
}

type WorkflowStep struct {
	StepId       string         `json:"stepId"`
	Name         string         `json:"name,omitempty"`
	ActionType   string         `json:"actionType"`
	ActionConfig map[string]any `json:"actionConfig,omitempty"`
	Conditions   map[string]any `json:"conditions,omitempty"`
	DependsOn    []string       `json:"dependsOn,omitempty"`
	OnSuccess    []string       `json:"onSuccess,omitempty"`
	OnFailure    []string       `json:"onFailure,omitempty"`
	RetryCount   int            `json:"retryCount"`
	RetryDelay   int            `json:"retryDelaySeconds"`
	Timeout      int            `json:"timeoutSeconds"`
}

type WorkflowStats struct {
	RunCount     int       `json:"runCount"`
	SuccessCount int       `json:"successCount"`
	FailureCount int       `json:"failureCount"`
	LastRun      time.Time `json:"lastRun,omitempty"`
}

type WorkflowDefinition struct {
	Id            string         `json:"id"`
	TenantId      string         `json:"tenantId"`
	Name          string         `json:"name"`
	Description   string         `json:"description,omitempty"`
	Trigger       Trigger        `json:"trigger"`
	Steps         []WorkflowStep `json:"steps"`
	Enabled       bool           `json:"enabled"`
	Paused        bool           `json:"paused"`
	MaxConcurrent int            `json:"maxConcurrent"`
	Stats         WorkflowStats  `json:"stats"`
	CreatedAt     time.Time      `json:"createdAt"`
}

// Step returns the step with the given id, nil if absent.
func (wf *WorkflowDefinition) Step(stepId string) *WorkflowStep {
	for i := range wf.Steps {
		if wf.Steps[i].StepId == stepId {
			return &wf.Steps[i]
		}
	}
	return nil
}

type WorkflowRunRequest struct {
	WorkflowId  string         `json:"workflowId"`
	TriggerData map[string]any `json:"triggerData,omitempty"`
}

type WorkflowEvent struct {
	Name    string         `json:"name"`
	Payload map[string]any `json:"payload,omitempty"`
}
