package agent

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/trademesh/core"
	"github.com/hupe1980/trademesh/logging"
	"github.com/hupe1980/trademesh/model"
)

// HandlerFunc is the role-specific processing logic invoked by Base for
// every non-heartbeat message. It returns the reply or an error; errors
// are converted into alert responses by Base.
type HandlerFunc func(ctx context.Context, msg core.Message) (core.Message, error)

// Options configure a Base agent instance.
//
// Use functional options with the role constructors to override defaults.
type Options struct {
	Description  string
	Instructions Instruction
	Tools        []string
	Model        model.Model
	Limiter      *model.Limiter
	Logger       logging.Logger
	MaxMemory    int
}

// WithLogger sets the structured logger used for processing failures.
func WithLogger(l logging.Logger) func(o *Options) {
	return func(o *Options) { o.Logger = l }
}

// WithModel attaches a reasoning model the agent can consult.
func WithModel(m model.Model) func(o *Options) {
	return func(o *Options) { o.Model = m }
}

// WithLimiter bounds the agent's model usage.
func WithLimiter(l *model.Limiter) func(o *Options) {
	return func(o *Options) { o.Limiter = l }
}

// WithTools overrides the agent's declared tool names.
func WithTools(tools ...string) func(o *Options) {
	return func(o *Options) { o.Tools = tools }
}

// WithMaxMemory bounds the number of retained memory records.
func WithMaxMemory(n int) func(o *Options) {
	return func(o *Options) { o.MaxMemory = n }
}

// Base bundles the shared message lifecycle for trading agents: status
// transitions, memory recording and handler error conversion. Embed it in
// concrete role implementations and supply a handler. All exported
// methods are goroutine-safe.
//
// An agent has two identities: name is the registry key used for routing
// (e.g. "portfolio_manager"), displayName is the human-readable role name
// carried as the source of its replies (e.g. "PortfolioManager").
type Base struct {
	name         string
	displayName  string
	layer        string
	description  string
	instructions Instruction
	tools        []string
	llm          model.Model
	limiter      *model.Limiter
	logger       logging.Logger
	handler      HandlerFunc

	mu        sync.RWMutex
	state     core.AgentState
	memKeys   []string // insertion order of memory records, for eviction
	maxMemory int
}

// NewBase constructs a Base for the given routing name, display name and
// layer. The handler is the role logic; a nil handler yields an echo
// agent that acknowledges every message.
func NewBase(name, displayName, layer string, handler HandlerFunc, optFns ...func(o *Options)) *Base {
	opts := Options{
		Description: fmt.Sprintf("%s layer trading agent", layer),
		MaxMemory:   1024,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	b := &Base{
		name:         name,
		displayName:  displayName,
		layer:        layer,
		description:  opts.Description,
		instructions: opts.Instructions,
		tools:        append([]string{}, opts.Tools...),
		llm:          opts.Model,
		limiter:      opts.Limiter,
		logger:       opts.Logger,
		handler:      handler,
		state:        core.NewAgentState(name, displayName, layer),
		maxMemory:    opts.MaxMemory,
	}
	if b.handler == nil {
		b.handler = b.acknowledge
	}
	return b
}

// Name returns the registry name used for routing.
func (b *Base) Name() string { return b.name }

// Layer returns the layer this agent belongs to.
func (b *Base) Layer() string { return b.layer }

// Description returns a detailed description of this agent's purpose.
func (b *Base) Description() string { return b.description }

// Tools returns a copy of the agent's declared tool names.
func (b *Base) Tools() []string { return append([]string{}, b.tools...) }

// Instructions resolves the agent's instruction template against state.
func (b *Base) Instructions(state map[string]any) (string, error) {
	return b.instructions.Resolve(state)
}

// Model returns the attached reasoning model, or nil.
func (b *Base) Model() model.Model { return b.llm }

// State returns a snapshot of the agent's runtime state.
func (b *Base) State() core.AgentState {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state.Snapshot()
}

// Process handles one message: it marks the agent processing, records the
// message into memory, runs the role handler and returns its reply. A
// handler error moves the agent to the error status and is converted into
// an alert response targeting the sender. Heartbeats are answered
// immediately and never recorded.
func (b *Base) Process(ctx context.Context, msg core.Message) core.Message {
	if msg.Kind == core.KindHeartbeat {
		reply := core.NewResponse(msg, b.layer, b.displayName, core.Payload{
			"status": "alive",
			"agent":  b.displayName,
		})
		reply.Kind = core.KindHeartbeat
		return reply
	}

	b.setStatus(core.StatusProcessing)
	b.remember(msg)

	resp, err := b.handler(ctx, msg)
	if err != nil {
		b.logger.Error("agent processing error", "agent", b.displayName, "error", err)
		b.setStatus(core.StatusError)
		return core.NewErrorAlert(msg, b.layer, b.displayName, err.Error())
	}

	b.setStatus(core.StatusIdle)
	return resp
}

// Respond builds the reply to req authored by this agent's identity.
func (b *Base) Respond(req core.Message, payload core.Payload) core.Message {
	return core.NewResponse(req, b.layer, b.displayName, payload)
}

// Generate consults the attached model, honoring the usage limiter.
// Returns an error when no model is attached.
func (b *Base) Generate(ctx context.Context, req model.Request) (string, error) {
	if b.llm == nil {
		return "", fmt.Errorf("agent %s has no model attached", b.name)
	}
	if b.limiter != nil {
		if err := b.limiter.Acquire(ctx); err != nil {
			return "", err
		}
	}
	return model.Complete(ctx, b.llm, req)
}

// MemoryRecord returns the memory entry recorded for the given message
// ID, if present.
func (b *Base) MemoryRecord(msgID string) (map[string]any, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	rec, ok := b.state.Memory[msgID].(map[string]any)
	return rec, ok
}

// acknowledge is the default handler: it confirms receipt.
func (b *Base) acknowledge(_ context.Context, msg core.Message) (core.Message, error) {
	return b.Respond(msg, core.Payload{"status": "received", "agent": b.displayName}), nil
}

func (b *Base) setStatus(s core.AgentStatus) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state.Status = s
	b.state.LastActivity = time.Now().UTC()
}

// remember stores the received message keyed by its ID, evicting the
// oldest record when the memory budget is exceeded.
func (b *Base) remember(msg core.Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := msg.ID
	if _, exists := b.state.Memory[key]; !exists {
		b.memKeys = append(b.memKeys, key)
	}
	b.state.Memory[key] = map[string]any{
		"received":     msg.Dump(),
		"processed_at": time.Now().UTC().Format(time.RFC3339Nano),
	}

	for b.maxMemory > 0 && len(b.memKeys) > b.maxMemory {
		oldest := b.memKeys[0]
		b.memKeys = b.memKeys[1:]
		delete(b.state.Memory, oldest)
	}
}
