package engine

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/trademesh/core"
	"github.com/hupe1980/trademesh/logging"
	"github.com/hupe1980/trademesh/observability"
)

// Config defines tuning parameters for the Engine's routing behavior.
//
// Additional concerns such as heartbeat scheduling are configured on
// their own components rather than expanding this struct.
type Config struct {
	// MaxConcurrentBroadcasts limits how many agents a Broadcast fans
	// out to simultaneously. Set to 0 for unlimited.
	MaxConcurrentBroadcasts int

	// MessageHistorySize bounds the number of recently routed messages
	// retained for inspection. Older messages are evicted; the routed
	// total keeps counting. Set to 0 to disable retention.
	MessageHistorySize int
}

// DefaultConfig provides production-ready defaults: broadcasts bounded
// to 10 concurrent deliveries and a 1000-message history window.
var DefaultConfig = Config{
	MaxConcurrentBroadcasts: 10,
	MessageHistorySize:      1000,
}

// Options configures an Engine instance using the functional options
// pattern.
//
// Example:
//
//	eng := engine.New(
//	    engine.WithConfig(customConfig),
//	    engine.WithLogger(myLogger),
//	)
type Options struct {
	// Config contains operational parameters for routing behavior.
	// Defaults to DefaultConfig if not specified.
	Config Config

	// Logger provides structured logging for routing decisions.
	// Defaults to NoOp logger if nil.
	Logger logging.Logger

	// Callbacks hook into the message lifecycle. Defaults to an empty
	// manager.
	Callbacks *CallbackManager
}

// WithConfig overrides the engine configuration.
func WithConfig(cfg Config) func(o *Options) {
	return func(o *Options) { o.Config = cfg }
}

// WithLogger sets the structured logger.
func WithLogger(l logging.Logger) func(o *Options) {
	return func(o *Options) { o.Logger = l }
}

// WithCallbacks installs a callback manager for lifecycle hooks.
func WithCallbacks(cm *CallbackManager) func(o *Options) {
	return func(o *Options) { o.Callbacks = cm }
}

// Engine is the layer registry and message router at the center of
// TradeMesh. It keeps the authoritative name->agent registry, delivers
// messages point-to-point or layer-wide, and maintains the message bus
// window that feeds status reporting.
//
// Routing semantics:
//   - Send validates the message, then delivers it to the named target
//     agent and returns the agent's reply.
//   - A send to an unknown agent is answered with a high-priority alert
//     from the coordination layer's system identity. The alert keeps the
//     original target so operators can see which address failed; the
//     original message ID travels in the metadata.
//   - Broadcast fans a message out to every agent of a layer and
//     collects replies in registration order.
//
// All methods are safe for concurrent use.
type Engine struct {
	config    Config
	logger    logging.Logger
	callbacks *CallbackManager

	registry *registry
	bus      *messageBus

	started time.Time
}

// New creates an Engine ready for agent registration.
//
// The engine starts in the "initialized" state and moves to "ready" when
// the first agent is registered. Register the six trading roles (or any
// custom core.Agent set) before routing messages.
func New(optFns ...func(o *Options)) *Engine {
	opts := Options{
		Config: DefaultConfig,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.Callbacks == nil {
		opts.Callbacks = NewCallbackManager()
	}

	return &Engine{
		config:    opts.Config,
		logger:    opts.Logger,
		callbacks: opts.Callbacks,
		registry:  newRegistry(),
		bus:       newMessageBus(opts.Config.MessageHistorySize),
		started:   time.Now().UTC(),
	}
}

// Register adds an agent to the registry under its Name(). Registering a
// second agent with the same name replaces the first.
func (e *Engine) Register(a core.Agent) {
	e.registry.add(a)
	e.logger.Info("agent registered", "agent", a.Name(), "layer", a.Layer())
}

// GetAgent retrieves a registered agent by name.
func (e *Engine) GetAgent(name string) (core.Agent, bool) {
	return e.registry.get(name)
}

// AgentNames returns the registered agent names in registration order.
func (e *Engine) AgentNames() []string {
	return e.registry.names()
}

// Send delivers msg to its target agent and returns the reply.
//
// The error return covers malformed messages and context cancellation;
// a send to an unknown agent yields the "Agent not found" alert reply,
// never an error. Handler failures inside the agent come back as
// alert-kind replies per the core.Agent contract.
func (e *Engine) Send(ctx context.Context, msg core.Message) (core.Message, error) {
	if err := msg.Validate(); err != nil {
		return core.Message{}, fmt.Errorf("invalid message: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return core.Message{}, err
	}

	e.bus.record(msg)

	target, ok := e.registry.get(msg.TargetAgent)
	if !ok {
		alert := e.unknownAgentAlert(msg)
		e.bus.record(alert)
		e.logger.Warn("message to unknown agent",
			"target", msg.TargetAgent,
			"message_id", msg.ID,
		)
		observability.RecordMessage(msg.TargetAgent, string(msg.Kind), 0)
		observability.RecordAgentFailure(msg.TargetAgent)
		return alert, nil
	}

	cbCtx := &CallbackContext{
		Request:      msg,
		AgentID:      target.Name(),
		CallbackType: CallbackBeforeProcess,
	}
	if err := e.callbacks.Execute(ctx, CallbackBeforeProcess, cbCtx); err != nil {
		return core.Message{}, fmt.Errorf("before-process callback: %w", err)
	}

	start := time.Now()
	resp := target.Process(ctx, msg)
	duration := time.Since(start)

	e.bus.record(resp)
	observability.RecordMessage(target.Name(), string(msg.Kind), duration)

	if resp.Failed() {
		observability.RecordAgentFailure(target.Name())
		e.logger.Warn("agent replied with failure alert",
			"agent", target.Name(),
			"message_id", msg.ID,
			"error", resp.Payload.String("error"),
		)
		alertCtx := &CallbackContext{
			Request:      msg,
			Response:     &resp,
			AgentID:      target.Name(),
			CallbackType: CallbackOnAlert,
		}
		if err := e.callbacks.Execute(ctx, CallbackOnAlert, alertCtx); err != nil {
			e.logger.Warn("on-alert callback failed", "error", err)
		}
	} else {
		e.logger.Debug("message routed",
			"agent", target.Name(),
			"kind", string(msg.Kind),
			"duration", duration.String(),
		)
	}

	afterCtx := &CallbackContext{
		Request:      msg,
		Response:     &resp,
		AgentID:      target.Name(),
		CallbackType: CallbackAfterProcess,
	}
	if err := e.callbacks.Execute(ctx, CallbackAfterProcess, afterCtx); err != nil {
		e.logger.Warn("after-process callback failed", "error", err)
	}

	return resp, nil
}

// Broadcast delivers msg to every agent of the target layer and returns
// the replies in registration order. Each delivery gets its own message
// copy with a fresh ID and the member agent as target, so replies
// correlate per member.
//
// Deliveries run concurrently, bounded by MaxConcurrentBroadcasts. The
// first delivery error cancels the remaining sends.
func (e *Engine) Broadcast(ctx context.Context, layer string, msg core.Message) ([]core.Message, error) {
	members := e.registry.layerMembers(layer)
	if len(members) == 0 {
		return nil, fmt.Errorf("no agents registered in layer %s", layer)
	}

	replies := make([]core.Message, len(members))

	g, gctx := errgroup.WithContext(ctx)
	if e.config.MaxConcurrentBroadcasts > 0 {
		g.SetLimit(e.config.MaxConcurrentBroadcasts)
	}

	for i, member := range members {
		g.Go(func() error {
			m := msg.Clone()
			m.ID = core.NewID()
			m.TargetLayer = member.Layer()
			m.TargetAgent = member.Name()

			reply, err := e.Send(gctx, m)
			if err != nil {
				return fmt.Errorf("broadcast to %s: %w", member.Name(), err)
			}
			replies[i] = reply
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return replies, nil
}

// History returns the retained window of recently routed messages,
// oldest first.
func (e *Engine) History() []core.Message {
	return e.bus.window()
}

// RoutedTotal returns the total number of messages that have passed
// through the engine, including evicted ones.
func (e *Engine) RoutedTotal() int {
	return e.bus.total()
}

// unknownAgentAlert synthesizes the reply for a send to an unregistered
// agent. The target identity stays the original message's target; the
// original message ID is carried in the metadata.
func (e *Engine) unknownAgentAlert(msg core.Message) core.Message {
	alert := core.NewMessage(
		core.LayerCoordination, core.SystemAgent,
		msg.TargetLayer, msg.TargetAgent,
		core.KindAlert, core.PriorityHigh,
		core.Payload{"error": "Agent not found"},
	)
	alert.Metadata = map[string]any{core.MetaOriginalMessageID: msg.ID}
	return alert
}
