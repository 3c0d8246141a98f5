package action

import (
	"context"
	"fmt"
	"sync"

	"github.com/dogansystem/agentflow/logger"
	"go.uber.org/zap"
)

// Result is the outcome of one action invocation. A failed Result is subject
// to the calling step's retry policy; the engine never sees action internals.
type Result struct {
	Success bool           `json:"success"`
	Skipped bool           `json:"skipped,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
	Error   string         `json:"error,omitempty"`
}

func Ok(data map[string]any) Result {
	return Result{Success: true, Data: data}
}

func Fail(format string, args ...any) Result {
	return Result{Success: false, Error: fmt.Sprintf(format, args...)}
}

// Handler executes one named action type against a resolved config and the
// execution context. Handlers may read and write the context map; it belongs
// to a single execution, so no synchronization is needed.
type Handler interface {
	Name() string
	Execute(ctx context.Context, config map[string]any, execContext map[string]any) Result
}

// HandlerFunc adapts a plain function to the Handler interface.
func HandlerFunc(name string, fn func(ctx context.Context, config map[string]any, execContext map[string]any) Result) Handler {
	return funcHandler{name: name, fn: fn}
}

type funcHandler struct {
	name string
	fn   func(ctx context.Context, config map[string]any, execContext map[string]any) Result
}

func (h funcHandler) Name() string { return h.name }

func (h funcHandler) Execute(ctx context.Context, config map[string]any, execContext map[string]any) Result {
	return h.fn(ctx, config, execContext)
}

// Registry maps action_type strings to handlers. The engine dispatches
// through the registry and knows nothing else about actions.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
	}
}

func (r *Registry) Register(handler Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[handler.Name()] = handler
	logger.Debug("action registered", zap.String("action", handler.Name()))
}

func (r *Registry) Get(actionType string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	handler, ok := r.handlers[actionType]
	return handler, ok
}

// Execute dispatches to the handler registered for actionType. An unknown
// action type is an ordinary step failure, not a panic.
func (r *Registry) Execute(ctx context.Context, actionType string, config map[string]any, execContext map[string]any) Result {
	handler, ok := r.Get(actionType)
	if !ok {
		return Fail("unknown action type: %s", actionType)
	}
	return handler.Execute(ctx, config, execContext)
}
