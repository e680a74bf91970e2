package trading

import (
	"fmt"

	"github.com/hupe1980/trademesh/core"
)

// Order sides.
const (
	SideBuy  = "BUY"
	SideSell = "SELL"
)

// OrderPlan is an executable order prepared by the execution layer. It
// defaults to a LIMIT order worked with a VWAP algorithm; slippage and
// fee estimates start at zero until an execution venue refines them.
type OrderPlan struct {
	OrderID          string  `json:"order_id" validate:"required,uuid4"`
	Symbol           string  `json:"symbol" validate:"min=1"`
	Side             string  `json:"side" validate:"oneof=BUY SELL"`
	Quantity         int     `json:"quantity" validate:"gt=0"`
	OrderType        string  `json:"order_type"`
	Price            float64 `json:"price" validate:"gt=0"`
	Algorithm        string  `json:"algorithm"`
	ExpectedSlippage float64 `json:"expected_slippage"`
	EstimatedFees    float64 `json:"estimated_fees"`
}

// NewOrderPlan builds an order plan with a fresh order ID and the
// LIMIT/VWAP defaults.
func NewOrderPlan(symbol, side string, quantity int, price float64) OrderPlan {
	return OrderPlan{
		OrderID:   core.NewID(),
		Symbol:    symbol,
		Side:      side,
		Quantity:  quantity,
		OrderType: "LIMIT",
		Price:     price,
		Algorithm: "VWAP",
	}
}

// Validate checks order identity, side and positive quantity/price.
func (o OrderPlan) Validate() error {
	if err := validate.Struct(o); err != nil {
		return fmt.Errorf("order plan: %w", err)
	}
	return nil
}
