package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/hupe1980/trademesh/core"
	"github.com/hupe1980/trademesh/logging"
	"github.com/hupe1980/trademesh/observability"
)

// HeartbeatOptions configure the heartbeat monitor.
type HeartbeatOptions struct {
	// Schedule is a cron spec or descriptor (e.g. "@every 30s")
	// controlling how often agents are probed.
	Schedule string

	// Timeout bounds one full heartbeat round.
	Timeout time.Duration

	// Logger receives per-round results. Defaults to NoOpLogger.
	Logger logging.Logger
}

// HeartbeatMonitor periodically probes every registered agent with a
// heartbeat message and tracks which agents answer. Results drive the
// trademesh_agent_up gauge and the engine log.
//
// The monitor sends from the coordination layer's system identity, the
// same origin the workflow driver uses, so agents see a consistent
// sender for infrastructure traffic.
type HeartbeatMonitor struct {
	engine *Engine
	cron   *cron.Cron
	entry  cron.EntryID

	schedule string
	timeout  time.Duration
	logger   logging.Logger
}

// NewHeartbeatMonitor builds a monitor for the given engine. Call Start
// to begin probing.
func NewHeartbeatMonitor(e *Engine, optFns ...func(o *HeartbeatOptions)) *HeartbeatMonitor {
	opts := HeartbeatOptions{
		Schedule: "@every 30s",
		Timeout:  10 * time.Second,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	return &HeartbeatMonitor{
		engine:   e,
		cron:     cron.New(),
		schedule: opts.Schedule,
		timeout:  opts.Timeout,
		logger:   opts.Logger,
	}
}

// WithHeartbeatSchedule overrides the probe schedule.
func WithHeartbeatSchedule(spec string) func(o *HeartbeatOptions) {
	return func(o *HeartbeatOptions) { o.Schedule = spec }
}

// WithHeartbeatLogger sets the monitor logger.
func WithHeartbeatLogger(l logging.Logger) func(o *HeartbeatOptions) {
	return func(o *HeartbeatOptions) { o.Logger = l }
}

// Start schedules heartbeat rounds until Stop is called.
func (h *HeartbeatMonitor) Start() error {
	entry, err := h.cron.AddFunc(h.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
		defer cancel()
		h.Beat(ctx)
	})
	if err != nil {
		return fmt.Errorf("invalid heartbeat schedule %q: %w", h.schedule, err)
	}
	h.entry = entry
	h.cron.Start()
	h.logger.Info("heartbeat monitor started", "schedule", h.schedule)
	return nil
}

// Stop cancels the schedule and waits for an in-flight round to finish.
func (h *HeartbeatMonitor) Stop() {
	ctx := h.cron.Stop()
	<-ctx.Done()
	h.logger.Info("heartbeat monitor stopped")
}

// Beat runs one probe round synchronously and returns the names of
// agents that failed to answer.
func (h *HeartbeatMonitor) Beat(ctx context.Context) []string {
	var down []string

	for _, name := range h.engine.AgentNames() {
		agent, ok := h.engine.GetAgent(name)
		if !ok {
			continue
		}

		probe := core.NewMessage(
			core.LayerCoordination, core.SystemAgent,
			agent.Layer(), name,
			core.KindHeartbeat, core.PriorityLow,
			core.Payload{},
		)

		reply, err := h.engine.Send(ctx, probe)
		alive := err == nil && reply.Payload.String("status") == "alive"

		observability.SetAgentUp(name, alive)
		if !alive {
			down = append(down, name)
			h.logger.Warn("agent missed heartbeat", "agent", name, "error", err)
		}
	}

	if len(down) == 0 {
		h.logger.Debug("heartbeat round complete", "agents", len(h.engine.AgentNames()))
	}
	return down
}
