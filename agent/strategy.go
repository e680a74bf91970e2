package agent

import (
	"context"

	"github.com/hupe1980/trademesh/core"
	"github.com/hupe1980/trademesh/trading"
)

// StrategyResearchName is the registry name of the strategy research agent.
const StrategyResearchName = "strategy_research"

// StrategyResearch is the tactical layer agent responsible for developing
// trading strategies and signals. It answers every message with a signal
// for the requested strategy type plus its backtest statistics.
type StrategyResearch struct {
	*Base
}

// NewStrategyResearch constructs the strategy research agent.
func NewStrategyResearch(optFns ...func(o *Options)) *StrategyResearch {
	sr := &StrategyResearch{}
	sr.Base = NewBase(StrategyResearchName, "StrategyResearch", core.LayerTactical, sr.handle,
		prepend(optFns,
			func(o *Options) {
				o.Instructions = NewInstructionFromText(strategyInstructions)
				o.Tools = []string{"search", "think", "code", "browser-use"}
			},
		)...,
	)
	return sr
}

func (a *StrategyResearch) handle(_ context.Context, msg core.Message) (core.Message, error) {
	strategyType := msg.Payload.String("strategy_type")
	if strategyType == "" {
		strategyType = "momentum"
	}

	signal := trading.TradingSignal{
		Signal:       trading.SignalBuy,
		Confidence:   0.75,
		EntryPrice:   trading.Float64(100.0),
		StopLoss:     trading.Float64(95.0),
		TakeProfit:   trading.Float64(110.0),
		PositionSize: trading.Float64(0.05),
	}
	if err := signal.Validate(); err != nil {
		return core.Message{}, err
	}

	stats := trading.BacktestStats{
		SharpeRatio:  1.2,
		MaxDrawdown:  0.08,
		WinRate:      0.65,
		ProfitFactor: 1.5,
	}
	if err := stats.Validate(); err != nil {
		return core.Message{}, err
	}

	return a.Respond(msg, core.Payload{
		"strategy_type":  strategyType,
		"signals":        trading.MustPayload(signal),
		"backtest_stats": trading.MustPayload(stats),
	}), nil
}
