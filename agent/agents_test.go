package agent

import (
	"context"
	"testing"

	"github.com/hupe1980/trademesh/core"
	"github.com/hupe1980/trademesh/internal/testutil"
	"github.com/hupe1980/trademesh/trading"
	"github.com/stretchr/testify/assert"
)

func TestPortfolioManager_AllocationRequest(t *testing.T) {
	pm := NewPortfolioManager()

	assert.Equal(t, PortfolioManagerName, pm.Name())
	assert.Equal(t, core.LayerStrategic, pm.Layer())
	assert.Equal(t, []string{"search", "browser-use", "think"}, pm.Tools())

	msg := testutil.NewMessageBuilder().
		Target(core.LayerStrategic, PortfolioManagerName).
		Query().
		Priority(core.PriorityHigh).
		Set("query", "current_allocation").
		Build()

	resp := pm.Process(context.Background(), msg)

	assert.Equal(t, core.KindResponse, resp.Kind)
	assert.Equal(t, "PortfolioManager", resp.SourceAgent)
	assert.Equal(t, core.PriorityHigh, resp.Priority)

	allocation := resp.Payload.Map("allocation")
	assert.Equal(t, 0.6, allocation.Float("stocks"))
	assert.Equal(t, 0.3, allocation.Float("bonds"))
	assert.Equal(t, 0.1, allocation.Float("cash"))
	assert.Equal(t, 0.05, allocation.Float("rebalance_trigger"))

	assert.Equal(t, 0.08, resp.Payload.Float("expected_return"))
	assert.Equal(t, 0.15, resp.Payload.Float("expected_volatility"))
	assert.Equal(t, 0.53, resp.Payload.Float("sharpe_ratio"))
	assert.NotEmpty(t, resp.Payload.String("timestamp"))

	var parsed trading.Allocation
	assert.NoError(t, trading.FromPayload(allocation, &parsed))
}

func TestPortfolioManager_NonQueryAcknowledged(t *testing.T) {
	pm := NewPortfolioManager()

	msg := testutil.NewMessageBuilder().
		Target(core.LayerStrategic, PortfolioManagerName).
		Command().
		Build()

	resp := pm.Process(context.Background(), msg)

	assert.Equal(t, core.KindResponse, resp.Kind)
	assert.Equal(t, "received", resp.Payload.String("status"))
	assert.Equal(t, "PortfolioManager", resp.Payload.String("agent"))
}

func TestRiskManager_Assessment(t *testing.T) {
	rm := NewRiskManager()

	msg := testutil.NewMessageBuilder().
		Target(core.LayerStrategic, RiskManagerName).
		Query().
		Set("query", "portfolio_risk").
		Build()

	resp := rm.Process(context.Background(), msg)

	assert.Equal(t, "RiskManager", resp.SourceAgent)
	assert.Equal(t, "within_limits", resp.Payload.String("risk_status"))

	metrics := resp.Payload.Map("risk_metrics")
	assert.Equal(t, 0.02, metrics.Float("portfolio_var"))
	assert.Equal(t, 0.035, metrics.Float("expected_shortfall"))
	assert.Equal(t, 0.15, metrics.Float("max_drawdown"))
	assert.Equal(t, 1.1, metrics.Float("beta"))

	limits := metrics.Map("risk_limits")
	assert.Equal(t, 0.1, limits.Float("max_position_size"))
	assert.Equal(t, 0.25, limits.Float("max_sector_exposure"))
	assert.Equal(t, 0.05, limits.Float("stop_loss"))

	recs, ok := resp.Payload["recommendations"].([]string)
	assert.True(t, ok)
	assert.Len(t, recs, 3)
}

func TestStrategyResearch_DefaultStrategy(t *testing.T) {
	sr := NewStrategyResearch()

	msg := testutil.NewMessageBuilder().
		Target(core.LayerTactical, StrategyResearchName).
		Query().
		Build()

	resp := sr.Process(context.Background(), msg)

	assert.Equal(t, "StrategyResearch", resp.SourceAgent)
	assert.Equal(t, "momentum", resp.Payload.String("strategy_type"))

	signals := resp.Payload.Map("signals")
	assert.Equal(t, trading.SignalBuy, signals.String("signal"))
	assert.Equal(t, 0.75, signals.Float("confidence"))
	assert.Equal(t, 100.0, signals.Float("entry_price"))
	assert.Equal(t, 95.0, signals.Float("stop_loss"))
	assert.Equal(t, 110.0, signals.Float("take_profit"))
	assert.Equal(t, 0.05, signals.Float("position_size"))

	stats := resp.Payload.Map("backtest_stats")
	assert.Equal(t, 1.2, stats.Float("sharpe_ratio"))
	assert.Equal(t, 0.08, stats.Float("max_drawdown"))
	assert.Equal(t, 0.65, stats.Float("win_rate"))
	assert.Equal(t, 1.5, stats.Float("profit_factor"))
}

func TestStrategyResearch_RequestedStrategyEchoed(t *testing.T) {
	sr := NewStrategyResearch()

	msg := testutil.NewMessageBuilder().
		Target(core.LayerTactical, StrategyResearchName).
		Query().
		Set("strategy_type", "mean_reversion").
		Build()

	resp := sr.Process(context.Background(), msg)

	assert.Equal(t, "mean_reversion", resp.Payload.String("strategy_type"))
}

func TestOrderExecution_DefaultOrder(t *testing.T) {
	oe := NewOrderExecution()

	msg := testutil.NewMessageBuilder().
		Target(core.LayerExecution, OrderExecutionName).
		Command().
		Build()

	resp := oe.Process(context.Background(), msg)

	assert.Equal(t, "OrderExecution", resp.SourceAgent)
	assert.Equal(t, "pending_execution", resp.Payload.String("status"))
	assert.Equal(t, "2024-01-01T10:30:00Z", resp.Payload.String("estimated_completion"))

	plan := resp.Payload.Map("execution_plan")
	assert.Equal(t, "AAPL", plan.String("symbol"))
	assert.Equal(t, trading.SideBuy, plan.String("side"))
	assert.Equal(t, 100, plan.Int("quantity"))
	assert.Equal(t, 100.0, plan.Float("price"))
	assert.Equal(t, "LIMIT", plan.String("order_type"))
	assert.Equal(t, "VWAP", plan.String("algorithm"))
	assert.NotEmpty(t, plan.String("order_id"))
}

func TestOrderExecution_ExplicitOrder(t *testing.T) {
	oe := NewOrderExecution()

	msg := testutil.NewMessageBuilder().
		Target(core.LayerExecution, OrderExecutionName).
		Command().
		Set("order", map[string]any{
			"symbol":   "MSFT",
			"side":     trading.SideSell,
			"quantity": 50,
			"price":    420.5,
		}).
		Build()

	resp := oe.Process(context.Background(), msg)

	plan := resp.Payload.Map("execution_plan")
	assert.Equal(t, "MSFT", plan.String("symbol"))
	assert.Equal(t, trading.SideSell, plan.String("side"))
	assert.Equal(t, 50, plan.Int("quantity"))
	assert.Equal(t, 420.5, plan.Float("price"))
}

func TestOrderExecution_InvalidOrderBecomesAlert(t *testing.T) {
	oe := NewOrderExecution()

	msg := testutil.NewMessageBuilder().
		Target(core.LayerExecution, OrderExecutionName).
		Command().
		Set("order", map[string]any{"quantity": -5}).
		Build()

	resp := oe.Process(context.Background(), msg)

	assert.True(t, resp.IsAlert())
	assert.True(t, resp.Failed())
	assert.Equal(t, core.StatusError, oe.State().Status)
}

func TestRealTimeRisk_Monitoring(t *testing.T) {
	rr := NewRealTimeRisk()

	msg := testutil.NewMessageBuilder().
		Target(core.LayerMonitoring, RealTimeRiskName).
		Query().
		Build()

	resp := rr.Process(context.Background(), msg)

	assert.Equal(t, "RealTimeRisk", resp.SourceAgent)
	assert.True(t, resp.Payload.Bool("action_required"))
	assert.Equal(t, "2024-01-01T10:05:00Z", resp.Payload.String("next_check"))

	status := resp.Payload.Map("risk_status")
	assert.Equal(t, 0.018, status.Float("current_var"))
	assert.Equal(t, "PASSED", status.String("exposure_check"))
	assert.Equal(t, 0.65, status.Float("margin_usage"))

	alerts, ok := status["alerts"].([]any)
	assert.True(t, ok)
	assert.Len(t, alerts, 1)

	first, ok := alerts[0].(core.Payload)
	assert.True(t, ok)
	assert.Equal(t, "POSITION_SIZE", first.String("type"))
	assert.Equal(t, trading.SeverityMedium, first.String("severity"))
}
