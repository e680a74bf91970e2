package agent

import (
	"context"

	"github.com/hupe1980/trademesh/core"
	"github.com/hupe1980/trademesh/trading"
)

// RealTimeRiskName is the registry name of the real-time risk monitor.
const RealTimeRiskName = "realtime_risk"

// RealTimeRisk is the monitoring layer agent responsible for live risk
// checks. Every message yields the current risk picture: VaR, exposure
// and margin checks plus any raised alerts.
type RealTimeRisk struct {
	*Base
}

// NewRealTimeRisk constructs the real-time risk monitoring agent.
func NewRealTimeRisk(optFns ...func(o *Options)) *RealTimeRisk {
	rr := &RealTimeRisk{}
	rr.Base = NewBase(RealTimeRiskName, "RealTimeRisk", core.LayerMonitoring, rr.handle,
		prepend(optFns,
			func(o *Options) {
				o.Instructions = NewInstructionFromText(monitoringInstructions)
				o.Tools = []string{"think", "document"}
			},
		)...,
	)
	return rr
}

func (a *RealTimeRisk) handle(_ context.Context, msg core.Message) (core.Message, error) {
	alert := trading.NewAlert("POSITION_SIZE", trading.SeverityMedium, "Tech sector exposure approaching limit")
	if err := alert.Validate(); err != nil {
		return core.Message{}, err
	}

	alerts := []any{trading.MustPayload(alert)}
	riskStatus := core.Payload{
		"current_var":    0.018,
		"exposure_check": "PASSED",
		"margin_usage":   0.65,
		"alerts":         alerts,
	}

	return a.Respond(msg, core.Payload{
		"risk_status":     riskStatus,
		"action_required": len(alerts) > 0,
		"next_check":      "2024-01-01T10:05:00Z",
	}), nil
}
