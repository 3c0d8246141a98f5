package action

import (
	"context"

	"github.com/dop251/goja"
)

const ACTION_SCRIPT string = "script"

var _ Handler = new(scriptAction)

// scriptAction evaluates a javascript expression with the execution context
// bound to $. The exported value is returned as the step result.
type scriptAction struct{}

func NewScriptAction() *scriptAction {
	return &scriptAction{}
}

func (a *scriptAction) Name() string {
	return ACTION_SCRIPT
}

func (a *scriptAction) Execute(ctx context.Context, config map[string]any, execContext map[string]any) Result {
	expression, err := stringParam(config, "expression")
	if err != nil {
		return Fail("%v", err)
	}
	vm := goja.New()
	if err := vm.Set("$", execContext); err != nil {
		return Fail("%v", err)
	}
	value, err := vm.RunString(expression)
	if err != nil {
		return Fail("error executing script: %v", err)
	}
	return Ok(map[string]any{"value": value.Export()})
}
