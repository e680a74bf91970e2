package tool

import (
	"context"
	"sync"

	"github.com/hupe1980/trademesh/logging"
)

// RegistryOptions configures optional behavior of a Registry.
type RegistryOptions struct {
	// Logger receives registration and lookup events.
	Logger logging.Logger
}

// WithRegistryLogger sets the registry logger.
func WithRegistryLogger(logger logging.Logger) func(o *RegistryOptions) {
	return func(o *RegistryOptions) {
		o.Logger = logger
	}
}

// Registry is an explicit, name-indexed collection of tools. It is threaded
// through constructors and the stdio tool server rather than living as an
// ambient global.
//
// A Registry is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	tools  map[string]Tool
	order  []string
	logger logging.Logger
}

// NewRegistry creates an empty tool registry.
func NewRegistry(optFns ...func(o *RegistryOptions)) *Registry {
	opts := RegistryOptions{
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Registry{
		tools:  make(map[string]Tool),
		logger: opts.Logger,
	}
}

// Register adds a tool, replacing any existing tool with the same name.
func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[t.Name()]; !exists {
		r.order = append(r.order, t.Name())
	}

	r.tools[t.Name()] = t

	r.logger.Debug("tool registered", "tool", t.Name())
}

// Get returns the tool registered under name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tools[name]

	return t, ok
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.order))
	copy(names, r.order)

	return names
}

// Tools returns the registered tools in registration order.
func (r *Registry) Tools() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		tools = append(tools, r.tools[name])
	}

	return tools
}

// Execute looks up a tool by name and calls it. An unknown name yields a
// *ToolError with code NOT_FOUND.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) (any, error) {
	t, ok := r.Get(name)
	if !ok {
		r.logger.Warn("tool not found", "tool", name)

		return nil, NewToolError(name, "tool not found", CodeNotFound)
	}

	return t.Call(ctx, args)
}
