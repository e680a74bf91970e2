package trading

import "fmt"

// Signal directions.
const (
	SignalBuy  = "BUY"
	SignalSell = "SELL"
	SignalHold = "HOLD"
)

// TradingSignal is a directional recommendation from strategy research.
// Price fields are only meaningful for BUY/SELL signals and stay nil for
// HOLD; Reason explains HOLD decisions.
type TradingSignal struct {
	Signal       string   `json:"signal" validate:"oneof=BUY SELL HOLD"`
	Confidence   float64  `json:"confidence" validate:"min=0,max=1"`
	EntryPrice   *float64 `json:"entry_price" validate:"omitempty,min=0"`
	StopLoss     *float64 `json:"stop_loss" validate:"omitempty,min=0"`
	TakeProfit   *float64 `json:"take_profit" validate:"omitempty,min=0"`
	PositionSize *float64 `json:"position_size" validate:"omitempty,min=0,max=1"`
	Reason       *string  `json:"reason,omitempty"`
}

// Validate checks the direction literal and value ranges.
func (s TradingSignal) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("trading signal: %w", err)
	}
	return nil
}

// IsActionable reports whether the signal calls for placing an order.
func (s TradingSignal) IsActionable() bool {
	return s.Signal == SignalBuy || s.Signal == SignalSell
}

// BacktestStats summarizes a strategy backtest. Sharpe may be negative;
// drawdown and profit factor are non-negative and win rate is a fraction.
type BacktestStats struct {
	SharpeRatio  float64 `json:"sharpe_ratio"`
	MaxDrawdown  float64 `json:"max_drawdown" validate:"min=0"`
	WinRate      float64 `json:"win_rate" validate:"min=0,max=1"`
	ProfitFactor float64 `json:"profit_factor" validate:"min=0"`
}

// Validate checks the backtest value ranges.
func (b BacktestStats) Validate() error {
	if err := validate.Struct(b); err != nil {
		return fmt.Errorf("backtest stats: %w", err)
	}
	return nil
}

// Float64 returns a pointer to v, for the optional signal price fields.
func Float64(v float64) *float64 { return &v }

// String returns a pointer to s, for the optional Reason field.
func String(s string) *string { return &s }
