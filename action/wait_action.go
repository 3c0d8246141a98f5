package action

import (
	"context"
	"time"
)

const ACTION_WAIT string = "wait"

var _ Handler = new(waitAction)

type waitAction struct{}

func NewWaitAction() *waitAction {
	return &waitAction{}
}

func (a *waitAction) Name() string {
	return ACTION_WAIT
}

// Execute blocks the calling execution for the configured duration. Only this
// execution's goroutine is suspended; the step timeout still applies through
// the context deadline.
func (a *waitAction) Execute(ctx context.Context, config map[string]any, execContext map[string]any) Result {
	seconds := 60.0
	if raw, ok := config["duration"]; ok {
		if v, isNum := raw.(float64); isNum {
			seconds = v
		} else if v, isInt := raw.(int); isInt {
			seconds = float64(v)
		}
	}
	duration := time.Duration(seconds * float64(time.Second))
	select {
	case <-time.After(duration):
		return Ok(map[string]any{"waited": seconds})
	case <-ctx.Done():
		return Fail("wait interrupted: %v", ctx.Err())
	}
}
