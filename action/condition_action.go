package action

import (
	"context"

	"github.com/dogansystem/agentflow/util"
)

const ACTION_EVALUATE_CONDITION string = "evaluate_condition"

var _ Handler = new(evaluateConditionAction)

type evaluateConditionAction struct{}

func NewEvaluateConditionAction() *evaluateConditionAction {
	return &evaluateConditionAction{}
}

func (a *evaluateConditionAction) Name() string {
	return ACTION_EVALUATE_CONDITION
}

// Execute evaluates a single {field, operator, value} condition against the
// execution context and reports the branch taken. The step's on_true/on_false
// hints are echoed back so successor routing can use them.
func (a *evaluateConditionAction) Execute(ctx context.Context, config map[string]any, execContext map[string]any) Result {
	condition, _ := config["condition"].(map[string]any)
	if condition == nil {
		return Fail("action config missing condition")
	}
	if util.EvaluateCondition(condition, execContext) {
		return Ok(map[string]any{"decision": "true", "next_step": config["on_true"]})
	}
	return Ok(map[string]any{"decision": "false", "next_step": config["on_false"]})
}
