package trading

import "fmt"

// Allocation is a portfolio asset allocation. Each weight is a fraction
// of the total portfolio; stocks, bonds and cash together may not exceed
// the whole portfolio. RebalanceTrigger is the drift threshold that
// prompts rebalancing.
type Allocation struct {
	Stocks           float64 `json:"stocks" validate:"min=0,max=1"`
	Bonds            float64 `json:"bonds" validate:"min=0,max=1"`
	Cash             float64 `json:"cash" validate:"min=0,max=1"`
	RebalanceTrigger float64 `json:"rebalance_trigger" validate:"min=0,max=1"`
}

// Validate checks the per-field ranges and that the asset weights sum to
// at most 1.
func (a Allocation) Validate() error {
	if err := validate.Struct(a); err != nil {
		return fmt.Errorf("allocation: %w", err)
	}
	if total := a.Stocks + a.Bonds + a.Cash; total > 1 {
		return fmt.Errorf("allocation: weights sum to %.4f, must be <= 1", total)
	}
	return nil
}
