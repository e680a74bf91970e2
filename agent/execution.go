package agent

import (
	"context"

	"github.com/hupe1980/trademesh/core"
	"github.com/hupe1980/trademesh/trading"
)

// OrderExecutionName is the registry name of the order execution agent.
const OrderExecutionName = "order_execution"

// OrderExecution is the execution layer agent responsible for optimizing
// trade execution quality. It turns an order request into a validated
// execution plan; missing order fields fall back to the AAPL/BUY/100
// defaults.
type OrderExecution struct {
	*Base
}

// NewOrderExecution constructs the order execution agent.
func NewOrderExecution(optFns ...func(o *Options)) *OrderExecution {
	oe := &OrderExecution{}
	oe.Base = NewBase(OrderExecutionName, "OrderExecution", core.LayerExecution, oe.handle,
		prepend(optFns,
			func(o *Options) {
				o.Instructions = NewInstructionFromText(executionInstructions)
				o.Tools = []string{"browser-use", "code"}
			},
		)...,
	)
	return oe
}

func (a *OrderExecution) handle(_ context.Context, msg core.Message) (core.Message, error) {
	order := msg.Payload.Map("order")

	symbol := order.String("symbol")
	if symbol == "" {
		symbol = "AAPL"
	}
	side := order.String("side")
	if side == "" {
		side = trading.SideBuy
	}
	quantity := 100
	if _, ok := order["quantity"]; ok {
		quantity = order.Int("quantity")
	}
	price := 100.0
	if _, ok := order["price"]; ok {
		price = order.Float("price")
	}

	plan := trading.NewOrderPlan(symbol, side, quantity, price)
	if err := plan.Validate(); err != nil {
		return core.Message{}, err
	}

	return a.Respond(msg, core.Payload{
		"execution_plan":       trading.MustPayload(plan),
		"status":               "pending_execution",
		"estimated_completion": "2024-01-01T10:30:00Z",
	}), nil
}
