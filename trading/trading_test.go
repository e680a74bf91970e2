package trading

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/trademesh/core"
)

func TestAllocation_Validate(t *testing.T) {
	good := Allocation{Stocks: 0.6, Bonds: 0.3, Cash: 0.1, RebalanceTrigger: 0.05}
	assert.NoError(t, good.Validate())

	overweight := Allocation{Stocks: 0.7, Bonds: 0.3, Cash: 0.2, RebalanceTrigger: 0.05}
	assert.Error(t, overweight.Validate(), "weights above 1 must be rejected")

	negative := Allocation{Stocks: -0.1, Bonds: 0.3, Cash: 0.1}
	assert.Error(t, negative.Validate())

	outOfRange := Allocation{Stocks: 1.5, Bonds: 0, Cash: 0}
	assert.Error(t, outOfRange.Validate())
}

func TestTradingSignal_Validate(t *testing.T) {
	buy := TradingSignal{
		Signal:       SignalBuy,
		Confidence:   0.75,
		EntryPrice:   Float64(100.0),
		StopLoss:     Float64(95.0),
		TakeProfit:   Float64(110.0),
		PositionSize: Float64(0.05),
	}
	assert.NoError(t, buy.Validate())
	assert.True(t, buy.IsActionable())

	hold := TradingSignal{Signal: SignalHold, Confidence: 0.5, Reason: String("choppy market")}
	assert.NoError(t, hold.Validate())
	assert.False(t, hold.IsActionable())

	bad := TradingSignal{Signal: "WAIT", Confidence: 0.5}
	assert.Error(t, bad.Validate())

	overconfident := TradingSignal{Signal: SignalSell, Confidence: 1.5}
	assert.Error(t, overconfident.Validate())
}

func TestOrderPlan_DefaultsAndValidate(t *testing.T) {
	plan := NewOrderPlan("AAPL", SideBuy, 100, 100.0)
	assert.NotEmpty(t, plan.OrderID)
	assert.Equal(t, "LIMIT", plan.OrderType)
	assert.Equal(t, "VWAP", plan.Algorithm)
	assert.Zero(t, plan.ExpectedSlippage)
	assert.Zero(t, plan.EstimatedFees)
	assert.NoError(t, plan.Validate())

	noQty := NewOrderPlan("AAPL", SideBuy, 0, 100.0)
	assert.Error(t, noQty.Validate())

	noSymbol := NewOrderPlan("", SideSell, 10, 50.0)
	assert.Error(t, noSymbol.Validate())

	badSide := NewOrderPlan("AAPL", "SHORT", 10, 50.0)
	assert.Error(t, badSide.Validate())
}

func TestTask_DefaultsAndValidate(t *testing.T) {
	task := NewTask("rebalance", core.PriorityHigh, map[string]any{"scope": "all"})
	assert.NotEmpty(t, task.TaskID)
	assert.Equal(t, TaskQueued, task.Status)
	assert.False(t, task.CreatedAt.IsZero())
	assert.NoError(t, task.Validate())

	task.Status = "paused"
	assert.Error(t, task.Validate())

	nilPayload := NewTask("default", core.PriorityLow, nil)
	assert.NotNil(t, nilPayload.Payload)
}

func TestAlert_Validate(t *testing.T) {
	alert := NewAlert("POSITION_SIZE", SeverityMedium, "Tech sector exposure approaching limit")
	assert.NoError(t, alert.Validate())
	assert.False(t, alert.Timestamp.IsZero())

	alert.Severity = "SEVERE"
	assert.Error(t, alert.Validate())
}

func TestRiskMetrics_Validate(t *testing.T) {
	metrics := RiskMetrics{
		PortfolioVaR:      0.02,
		ExpectedShortfall: 0.035,
		MaxDrawdown:       0.15,
		Beta:              1.1,
		RiskLimits: map[string]float64{
			"max_position_size":   0.10,
			"max_sector_exposure": 0.25,
			"stop_loss":           0.05,
		},
	}
	assert.NoError(t, metrics.Validate())

	metrics.PortfolioVaR = -0.01
	assert.Error(t, metrics.Validate())

	short := RiskMetrics{Beta: -0.5}
	assert.NoError(t, short.Validate(), "beta is unconstrained")
}

func TestPayloadRoundTrip(t *testing.T) {
	alloc := Allocation{Stocks: 0.6, Bonds: 0.3, Cash: 0.1, RebalanceTrigger: 0.05}

	p, err := ToPayload(alloc)
	assert.NoError(t, err)
	assert.Equal(t, 0.6, p.Float("stocks"))
	assert.Equal(t, 0.05, p.Float("rebalance_trigger"))

	var parsed Allocation
	assert.NoError(t, FromPayload(p, &parsed))
	assert.Equal(t, alloc, parsed)

	p["stocks"] = 1.5
	var invalid Allocation
	assert.Error(t, FromPayload(p, &invalid), "validation must run on parse")
}

func TestSampleMarketData(t *testing.T) {
	data := SampleMarketData()
	assert.Equal(t, 4500.0, data.Map("sp500").Float("price"))
	assert.Equal(t, 18.5, data.Map("volatility").Float("vix"))
	assert.Equal(t, -0.02, data.Map("sector_performance").Float("energy"))
}
