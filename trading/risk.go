package trading

import "fmt"

// RiskMetrics is the portfolio risk picture produced by the risk manager.
// VaR, expected shortfall and max drawdown are non-negative fractions of
// portfolio value; beta is unconstrained. RiskLimits carries named limit
// values such as max_position_size or stop_loss.
type RiskMetrics struct {
	PortfolioVaR      float64            `json:"portfolio_var" validate:"min=0"`
	ExpectedShortfall float64            `json:"expected_shortfall" validate:"min=0"`
	MaxDrawdown       float64            `json:"max_drawdown" validate:"min=0"`
	Beta              float64            `json:"beta"`
	RiskLimits        map[string]float64 `json:"risk_limits"`
}

// Validate checks the non-negativity constraints.
func (r RiskMetrics) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("risk metrics: %w", err)
	}
	return nil
}
