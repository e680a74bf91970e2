package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/trademesh/agent"
	"github.com/hupe1980/trademesh/core"
	"github.com/hupe1980/trademesh/logging"
	"github.com/hupe1980/trademesh/observability"
	"github.com/hupe1980/trademesh/session"
	"github.com/hupe1980/trademesh/trading"
)

// Stage names tag the workflow_step metadata on every stage request and
// label the per-stage duration metrics.
const (
	StageStrategicDecision  = "strategic_decision"
	StageRiskAssessment     = "risk_assessment"
	StageStrategyGeneration = "strategy_generation"
	StageOrderExecution     = "order_execution"
	StageRiskMonitoring     = "risk_monitoring"
)

// Options configures a Runner instance using the functional options
// pattern.
type Options struct {
	// Logger provides structured logging for stage progress. Defaults to
	// NoOp logger if nil.
	Logger logging.Logger

	// Sessions records every stage request and reply plus the final
	// result, keyed by run ID. Defaults to an in-memory store.
	Sessions session.Store
}

// WithLogger sets the structured logger.
func WithLogger(l logging.Logger) func(o *Options) {
	return func(o *Options) { o.Logger = l }
}

// WithSessionStore sets the store that keeps run records.
func WithSessionStore(s session.Store) func(o *Options) {
	return func(o *Options) { o.Sessions = s }
}

// Runner drives the fixed five-stage trading pipeline over a market
// snapshot, threading each stage's payload into the next:
//
//  1. portfolio_manager decides the strategic allocation.
//  2. risk_manager assesses the allocation.
//  3. strategy_research generates signals from the snapshot and the
//     assessed risk limits.
//  4. order_execution plans the order, only when the signal is BUY.
//  5. realtime_risk monitors the allocation.
//
// Stages run strictly sequentially. A stage fails when the router
// returns an error or the reply is an alert; failure aborts the
// remaining stages, flips the aggregate's success flag and appends the
// error text. Results captured before the failure stay visible. There
// is no retry, no per-stage timeout and no rollback.
type Runner struct {
	router   core.Router
	logger   logging.Logger
	sessions session.Store
}

// NewRunner creates a workflow runner on top of a message router,
// usually an engine with the six trading roles registered.
func NewRunner(router core.Router, optFns ...func(o *Options)) *Runner {
	opts := Options{}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	if opts.Sessions == nil {
		opts.Sessions = session.NewInMemoryStore()
	}

	return &Runner{
		router:   router,
		logger:   opts.Logger,
		sessions: opts.Sessions,
	}
}

// Run executes the pipeline over one market snapshot and returns the
// aggregate. Run never returns an error; callers inspect the aggregate's
// Success flag and Errors list. The run is recorded in the session store
// under a fresh run ID, retrievable via Sessions.
func (r *Runner) Run(ctx context.Context, marketData core.Payload) Result {
	runID := core.NewID()
	started := time.Now()
	result := newResult()

	r.logger.Info("trading workflow started", "run_id", runID)

	strategic, err := r.stage(ctx, runID, StageStrategicDecision,
		core.LayerStrategic, agent.PortfolioManagerName, core.KindQuery, core.PriorityHigh,
		core.Payload{"market_data": marketData})
	if err != nil {
		return r.fail(ctx, runID, started, result, err)
	}
	result.PortfolioAllocation = strategic

	risk, err := r.stage(ctx, runID, StageRiskAssessment,
		core.LayerStrategic, agent.RiskManagerName, core.KindQuery, core.PriorityHigh,
		core.Payload{"portfolio": strategic})
	if err != nil {
		return r.fail(ctx, runID, started, result, err)
	}
	result.RiskAssessment = risk

	riskLimits := risk.Map("risk_metrics")
	if riskLimits == nil {
		riskLimits = core.Payload{}
	}

	strategy, err := r.stage(ctx, runID, StageStrategyGeneration,
		core.LayerTactical, agent.StrategyResearchName, core.KindQuery, core.PriorityMedium,
		core.Payload{
			"market_data": marketData,
			"risk_limits": riskLimits,
		})
	if err != nil {
		return r.fail(ctx, runID, started, result, err)
	}
	result.StrategyRecommendation = strategy

	signals := strategy.Map("signals")
	if signals.String("signal") == trading.SignalBuy {
		price := 100.0
		if _, ok := signals["entry_price"]; ok {
			price = signals.Float("entry_price")
		}

		execution, err := r.stage(ctx, runID, StageOrderExecution,
			core.LayerExecution, agent.OrderExecutionName, core.KindCommand, core.PriorityMedium,
			core.Payload{"order": core.Payload{
				"symbol":   "AAPL",
				"side":     trading.SideBuy,
				"quantity": 100,
				"price":    price,
			}})
		if err != nil {
			return r.fail(ctx, runID, started, result, err)
		}
		result.ExecutionPlan = execution
	}

	monitoring, err := r.stage(ctx, runID, StageRiskMonitoring,
		core.LayerMonitoring, agent.RealTimeRiskName, core.KindQuery, core.PriorityMedium,
		core.Payload{"portfolio": strategic})
	if err != nil {
		return r.fail(ctx, runID, started, result, err)
	}
	result.RiskMonitoring = monitoring

	return r.finish(ctx, runID, started, result)
}

// stage sends one workflow request and returns the reply payload. Alert
// replies count as stage failures, covering both handler faults and
// unroutable targets.
func (r *Runner) stage(ctx context.Context, runID, name, dstLayer, dstAgent string, kind core.MessageKind, priority core.Priority, payload core.Payload) (core.Payload, error) {
	msg := core.NewMessage(core.LayerCoordination, core.SystemAgent, dstLayer, dstAgent, kind, priority, payload)
	msg.Metadata[core.MetaWorkflowStep] = name

	stageStart := time.Now()
	r.record(ctx, runID, msg)

	reply, err := r.router.Send(ctx, msg)
	observability.RecordWorkflowStage(name, time.Since(stageStart))
	if err != nil {
		return nil, fmt.Errorf("%s stage: %w", name, err)
	}

	r.record(ctx, runID, reply)

	if reply.IsAlert() {
		return nil, fmt.Errorf("%s stage: %s", name, reply.Payload.String("error"))
	}

	r.logger.Debug("workflow stage completed",
		"run_id", runID,
		"stage", name,
		"agent", dstAgent,
		"duration", time.Since(stageStart),
	)

	return reply.Payload, nil
}

func (r *Runner) finish(ctx context.Context, runID string, started time.Time, result Result) Result {
	r.saveResult(ctx, runID, result)
	observability.RecordWorkflowRun("success")

	r.logger.Info("trading workflow completed",
		"run_id", runID,
		"duration", time.Since(started),
	)

	return result
}

func (r *Runner) fail(ctx context.Context, runID string, started time.Time, result Result, err error) Result {
	result.Success = false
	result.Errors = append(result.Errors, err.Error())

	r.saveResult(ctx, runID, result)
	observability.RecordWorkflowRun("failure")

	r.logger.Error("trading workflow failed",
		"run_id", runID,
		"duration", time.Since(started),
		"error", err,
	)

	return result
}

// record appends a run message to the session store. Recording is best
// effort; a store failure must not abort the trading pipeline.
func (r *Runner) record(ctx context.Context, runID string, msg core.Message) {
	if err := r.sessions.AppendMessage(ctx, runID, msg); err != nil {
		r.logger.Warn("session recording failed", "run_id", runID, "error", err)
	}
}

func (r *Runner) saveResult(ctx context.Context, runID string, result Result) {
	if err := r.sessions.SetState(ctx, runID, "result", result); err != nil {
		r.logger.Warn("session result recording failed", "run_id", runID, "error", err)
	}
}

// Sessions exposes the store holding run records.
func (r *Runner) Sessions() session.Store { return r.sessions }
