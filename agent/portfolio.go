package agent

import (
	"context"
	"time"

	"github.com/hupe1980/trademesh/core"
	"github.com/hupe1980/trademesh/trading"
)

// PortfolioManagerName is the registry name of the portfolio manager.
const PortfolioManagerName = "portfolio_manager"

// PortfolioManager is the strategic layer agent responsible for investment
// strategy and asset allocation decisions. Queries yield an allocation
// recommendation with expected return, volatility and Sharpe ratio;
// any other kind is acknowledged.
type PortfolioManager struct {
	*Base
}

// NewPortfolioManager constructs the portfolio manager agent.
func NewPortfolioManager(optFns ...func(o *Options)) *PortfolioManager {
	pm := &PortfolioManager{}
	pm.Base = NewBase(PortfolioManagerName, "PortfolioManager", core.LayerStrategic, pm.handle,
		prepend(optFns,
			func(o *Options) {
				o.Instructions = NewInstructionFromText(portfolioInstructions)
				o.Tools = []string{"search", "browser-use", "think"}
			},
		)...,
	)
	return pm
}

func (a *PortfolioManager) handle(ctx context.Context, msg core.Message) (core.Message, error) {
	if msg.Kind != core.KindQuery {
		return a.acknowledge(ctx, msg)
	}

	allocation := trading.Allocation{
		Stocks:           0.6,
		Bonds:            0.3,
		Cash:             0.1,
		RebalanceTrigger: 0.05,
	}
	if err := allocation.Validate(); err != nil {
		return core.Message{}, err
	}

	return a.Respond(msg, core.Payload{
		"allocation":          trading.MustPayload(allocation),
		"expected_return":     0.08,
		"expected_volatility": 0.15,
		"sharpe_ratio":        0.53,
		"timestamp":           time.Now().UTC().Format(time.RFC3339Nano),
	}), nil
}

// prepend returns defaults followed by the caller's options so callers can
// override role defaults such as tools.
func prepend(optFns []func(o *Options), defaults ...func(o *Options)) []func(o *Options) {
	return append(defaults, optFns...)
}
