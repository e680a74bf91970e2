package agent

import (
	"context"

	"github.com/hupe1980/trademesh/core"
	"github.com/hupe1980/trademesh/trading"
)

// RiskManagerName is the registry name of the risk manager.
const RiskManagerName = "risk_manager"

// RiskManager is the strategic layer agent responsible for assessing and
// controlling portfolio risk. Every message yields a risk assessment with
// metrics, limit status and recommendations.
type RiskManager struct {
	*Base
}

// NewRiskManager constructs the risk manager agent.
func NewRiskManager(optFns ...func(o *Options)) *RiskManager {
	rm := &RiskManager{}
	rm.Base = NewBase(RiskManagerName, "RiskManager", core.LayerStrategic, rm.handle,
		prepend(optFns,
			func(o *Options) {
				o.Instructions = NewInstructionFromText(riskInstructions)
				o.Tools = []string{"search", "think", "document"}
			},
		)...,
	)
	return rm
}

func (a *RiskManager) handle(_ context.Context, msg core.Message) (core.Message, error) {
	metrics := trading.RiskMetrics{
		PortfolioVaR:      0.02, // 2% daily VaR
		ExpectedShortfall: 0.035,
		MaxDrawdown:       0.15,
		Beta:              1.1,
		RiskLimits: map[string]float64{
			"max_position_size":   0.1,
			"max_sector_exposure": 0.25,
			"stop_loss":           0.05,
		},
	}
	if err := metrics.Validate(); err != nil {
		return core.Message{}, err
	}

	return a.Respond(msg, core.Payload{
		"risk_metrics": trading.MustPayload(metrics),
		"risk_status":  "within_limits",
		"recommendations": []string{
			"Consider reducing tech sector exposure",
			"Implement tighter stop-losses",
			"Increase cash allocation",
		},
	}), nil
}
