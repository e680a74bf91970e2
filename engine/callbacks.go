package engine

import (
	"context"

	"github.com/hupe1980/trademesh/core"
)

// CallbackType identifies the lifecycle points in message routing where
// callbacks run.
//
// Callbacks hook into the engine's routing pipeline without modifying
// core logic:
//   - BeforeProcess/AfterProcess: around agent message processing
//   - OnAlert: when an agent answers with a failure alert
//
// Callbacks run synchronously. A before-process callback returning an
// error aborts the send; errors from the other types are logged and
// routing continues.
type CallbackType string

const (
	// CallbackBeforeProcess is triggered before a message reaches its
	// target agent. Use for validation, auditing or instrumentation.
	CallbackBeforeProcess CallbackType = "before_process"

	// CallbackAfterProcess is triggered after the agent replied. Use
	// for metrics collection or post-processing.
	CallbackAfterProcess CallbackType = "after_process"

	// CallbackOnAlert is triggered when the reply is a failure alert.
	// Use for alerting or recovery mechanisms.
	CallbackOnAlert CallbackType = "on_alert"
)

// CallbackContext carries the routing context to callback executions.
type CallbackContext struct {
	// Request is the message being routed.
	Request core.Message

	// Response is the agent's reply. Nil for before-process callbacks.
	Response *core.Message

	// AgentID is the registry name of the target agent.
	AgentID string

	// CallbackType indicates which lifecycle point triggered this
	// execution, so shared implementations can branch on phase.
	CallbackType CallbackType

	// Metadata provides extensible storage for custom callback data.
	Metadata map[string]any
}

// Callback is a routing lifecycle hook.
//
// Implementations should be fast (they run synchronously on the routing
// path), avoid panics and not rely on mutable state between invocations.
type Callback interface {
	// Type returns the lifecycle point this callback handles.
	Type() CallbackType

	// Execute performs the callback logic. For before-process callbacks
	// a returned error aborts the send.
	Execute(ctx context.Context, cbCtx *CallbackContext) error
}

// FunctionCallback wraps a plain function as a Callback.
//
// Example:
//
//	audit := engine.NewFunctionCallback(
//	    engine.CallbackBeforeProcess,
//	    func(ctx context.Context, cbCtx *engine.CallbackContext) error {
//	        log.Printf("routing %s to %s", cbCtx.Request.ID, cbCtx.AgentID)
//	        return nil
//	    },
//	)
type FunctionCallback struct {
	callbackType CallbackType
	fn           func(ctx context.Context, cbCtx *CallbackContext) error
}

// NewFunctionCallback creates a function-based callback for the given
// lifecycle point.
func NewFunctionCallback(
	callbackType CallbackType,
	fn func(ctx context.Context, cbCtx *CallbackContext) error,
) *FunctionCallback {
	return &FunctionCallback{
		callbackType: callbackType,
		fn:           fn,
	}
}

// Type returns the lifecycle point this callback handles.
func (c *FunctionCallback) Type() CallbackType {
	return c.callbackType
}

// Execute calls the wrapped function.
func (c *FunctionCallback) Execute(ctx context.Context, cbCtx *CallbackContext) error {
	return c.fn(ctx, cbCtx)
}

// CallbackManager holds the registered callbacks and runs them at the
// appropriate lifecycle points.
//
// Callbacks execute in registration order; the first error stops the
// remaining callbacks of that point. Registration is not synchronized,
// so register everything before routing begins.
type CallbackManager struct {
	callbacks map[CallbackType][]Callback
}

// NewCallbackManager creates an empty callback manager.
func NewCallbackManager() *CallbackManager {
	return &CallbackManager{
		callbacks: make(map[CallbackType][]Callback),
	}
}

// Register adds a callback under its Type. Multiple callbacks per type
// run in registration order.
func (cm *CallbackManager) Register(callback Callback) {
	callbackType := callback.Type()
	cm.callbacks[callbackType] = append(cm.callbacks[callbackType], callback)
}

// Execute runs all callbacks registered for the given type. Returns the
// first callback error, or nil when all succeed.
func (cm *CallbackManager) Execute(
	ctx context.Context,
	callbackType CallbackType,
	cbCtx *CallbackContext,
) error {
	callbacks, exists := cm.callbacks[callbackType]
	if !exists {
		return nil
	}

	for _, callback := range callbacks {
		if err := callback.Execute(ctx, cbCtx); err != nil {
			return err
		}
	}

	return nil
}
