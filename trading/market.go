package trading

import "github.com/hupe1980/trademesh/core"

// SampleMarketData returns a static market snapshot for demos and tests:
// index level, rates, volatility and sector performance.
func SampleMarketData() core.Payload {
	return core.Payload{
		"sp500":      map[string]any{"price": 4500.0, "change": 0.02},
		"bond_yield": map[string]any{"ten_year": 0.045, "change": -0.001},
		"volatility": map[string]any{"vix": 18.5},
		"sector_performance": map[string]any{
			"tech":    0.03,
			"finance": 0.01,
			"energy":  -0.02,
		},
	}
}
