// Package trademesh provides a high-level façade over the core Engine and
// service abstractions (sessions, workspace & logging) enabling rapid
// construction of layered trading agent systems. Most applications interact
// with this package by:
//  1. Creating a System via New() (optionally overriding default in‑memory services)
//  2. Running the five-stage trading workflow (RunTradingWorkflow) or routing
//     messages directly (Send, Broadcast)
//  3. Registering additional agents beyond the six built-in trading roles
//
// The façade delegates orchestration to engine.Engine and workflow.Runner
// while keeping setup and usage ergonomics concise. All defaults are safe for
// local development and testing; production deployments typically supply a
// Redis session store, a filesystem workspace and a structured logger, most
// conveniently through NewFromConfig.
package trademesh

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/hupe1980/trademesh/agent"
	"github.com/hupe1980/trademesh/config"
	"github.com/hupe1980/trademesh/core"
	"github.com/hupe1980/trademesh/engine"
	"github.com/hupe1980/trademesh/logging"
	"github.com/hupe1980/trademesh/model"
	openaimodel "github.com/hupe1980/trademesh/model/openai"
	"github.com/hupe1980/trademesh/session"
	"github.com/hupe1980/trademesh/workflow"
	"github.com/hupe1980/trademesh/workspace"
)

// Options configures the System instance.
type Options struct {
	// Engine configuration (broadcast concurrency, message history)
	EngineConfig engine.Config

	// Stores (default to in-memory implementations if not provided)
	SessionStore session.Store
	Workspace    workspace.Store

	// Model is attached to the six built-in trading roles. Nil keeps the
	// roles on their deterministic handlers.
	Model model.Model

	// HeartbeatSchedule is a cron spec such as "@every 30s" probing agent
	// liveness once Start is called. Empty disables the monitor.
	HeartbeatSchedule string

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// System is the high-level façade aggregating the engine, the workflow
// driver and the six built-in trading roles.
type System struct {
	opts      Options
	engine    *engine.Engine
	runner    *workflow.Runner
	heartbeat *engine.HeartbeatMonitor
	scheduler *agent.TaskScheduler
}

// New creates a System with the six trading roles registered. Any unset
// service is initialized with an in-memory implementation.
func New(optFns ...func(o *Options)) *System {
	opts := Options{
		EngineConfig: engine.DefaultConfig,
		SessionStore: session.NewInMemoryStore(),
		Workspace:    workspace.NewInMemoryStore(),
		Logger:       logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	eng := engine.New(func(o *engine.Options) {
		o.Config = opts.EngineConfig
		o.Logger = opts.Logger
	})

	s := &System{opts: opts, engine: eng}
	s.registerRoles()

	s.runner = workflow.NewRunner(eng,
		workflow.WithLogger(opts.Logger),
		workflow.WithSessionStore(opts.SessionStore),
	)

	if opts.HeartbeatSchedule != "" {
		s.heartbeat = engine.NewHeartbeatMonitor(eng,
			engine.WithHeartbeatSchedule(opts.HeartbeatSchedule),
			engine.WithHeartbeatLogger(opts.Logger),
		)
	}

	return s
}

// NewFromConfig wires a System from application configuration: a Redis
// session store when an address is configured, a filesystem workspace
// under the configured directory and an OpenAI-compatible model when an
// API key is present.
func NewFromConfig(cfg *config.Config, optFns ...func(o *Options)) (*System, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var sessions session.Store = session.NewInMemoryStore()
	if cfg.Redis.Addr != "" {
		store, err := session.NewRedisStore(session.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
			TTL:      cfg.Redis.TTL.Std(),
		})
		if err != nil {
			return nil, fmt.Errorf("redis session store: %w", err)
		}
		sessions = store
	}

	ws, err := workspace.NewFilesystemStore(cfg.Workspace)
	if err != nil {
		return nil, fmt.Errorf("workspace store: %w", err)
	}

	var llm model.Model
	if cfg.Model.APIKey != "" {
		client := openai.NewClient(
			option.WithAPIKey(cfg.Model.APIKey),
			option.WithBaseURL(cfg.Model.BaseURL),
		)
		llm = openaimodel.NewModelFromClient(&client, func(o *openaimodel.Options) {
			o.Model = cfg.Model.Name
			o.Temperature = cfg.Model.Temperature
		})
	}

	return New(append([]func(o *Options){func(o *Options) {
		o.SessionStore = sessions
		o.Workspace = ws
		o.Model = llm
		o.HeartbeatSchedule = cfg.HeartbeatSchedule
	}}, optFns...)...), nil
}

// registerRoles builds the six built-in trading roles and registers them
// with the engine.
func (s *System) registerRoles() {
	roleOpts := []func(o *agent.Options){agent.WithLogger(s.opts.Logger)}
	if s.opts.Model != nil {
		roleOpts = append(roleOpts, agent.WithModel(s.opts.Model))
	}

	s.scheduler = agent.NewTaskScheduler(roleOpts...)

	for _, a := range []core.Agent{
		agent.NewPortfolioManager(roleOpts...),
		agent.NewRiskManager(roleOpts...),
		agent.NewStrategyResearch(roleOpts...),
		agent.NewOrderExecution(roleOpts...),
		agent.NewRealTimeRisk(roleOpts...),
		s.scheduler,
	} {
		s.engine.Register(a)
	}
}

// RegisterAgent adds an agent to the underlying engine. Registering an
// agent under a built-in role name replaces that role.
func (s *System) RegisterAgent(a core.Agent) { s.engine.Register(a) }

// RunTradingWorkflow executes the five-stage pipeline over one market
// snapshot and returns the aggregate result. Inspect the result's
// Success flag and Errors list; the run itself never returns an error.
func (s *System) RunTradingWorkflow(ctx context.Context, marketData core.Payload) workflow.Result {
	return s.runner.Run(ctx, marketData)
}

// Send routes one message through the engine and returns the reply.
func (s *System) Send(ctx context.Context, msg core.Message) (core.Message, error) {
	return s.engine.Send(ctx, msg)
}

// Broadcast delivers msg to every agent of the given layer and returns
// the replies in registration order.
func (s *System) Broadcast(ctx context.Context, layer string, msg core.Message) ([]core.Message, error) {
	return s.engine.Broadcast(ctx, layer, msg)
}

// SystemStatus reports the live status snapshot of the whole mesh.
func (s *System) SystemStatus() engine.SystemStatus { return s.engine.SystemStatus() }

// Start launches background components, currently the heartbeat monitor.
// Calling Start without a configured heartbeat schedule is a no-op.
func (s *System) Start() error {
	if s.heartbeat == nil {
		return nil
	}
	return s.heartbeat.Start()
}

// Stop shuts down background components started by Start and waits for
// in-flight work to finish.
func (s *System) Stop() {
	if s.heartbeat != nil {
		s.heartbeat.Stop()
	}
}

// Engine exposes the underlying engine, mainly for wiring tools and
// observability.
func (s *System) Engine() *engine.Engine { return s.engine }

// Sessions exposes the store holding workflow run records.
func (s *System) Sessions() session.Store { return s.opts.SessionStore }

// Workspace exposes the artifact store shared with tool adapters.
func (s *System) Workspace() workspace.Store { return s.opts.Workspace }

// Scheduler exposes the built-in task scheduler role.
func (s *System) Scheduler() *agent.TaskScheduler { return s.scheduler }
