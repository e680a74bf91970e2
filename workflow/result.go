package workflow

import (
	"github.com/hupe1980/trademesh/core"
)

// Result aggregates the payloads produced by one trading workflow run,
// one field per pipeline stage. A field stays nil when its stage never
// ran, either because an earlier stage failed or because the execution
// stage was skipped on a non-BUY signal. Nil fields marshal as JSON
// null so downstream consumers can distinguish "skipped" from "empty".
//
// The driver populates the aggregate incrementally and never mutates it
// after Run returns. Callers inspect Success instead of handling errors;
// Errors lists what went wrong in occurrence order.
type Result struct {
	PortfolioAllocation    core.Payload `json:"portfolio_allocation"`
	RiskAssessment         core.Payload `json:"risk_assessment"`
	StrategyRecommendation core.Payload `json:"strategy_recommendation"`
	ExecutionPlan          core.Payload `json:"execution_plan"`
	RiskMonitoring         core.Payload `json:"risk_monitoring"`
	Success                bool         `json:"success"`
	Errors                 []string     `json:"errors"`
}

// newResult returns the optimistic starting aggregate: success until a
// stage proves otherwise, no errors yet.
func newResult() Result {
	return Result{
		Success: true,
		Errors:  []string{},
	}
}
