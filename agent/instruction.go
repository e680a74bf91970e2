package agent

import "github.com/hupe1980/trademesh/internal/util"

// InstructionProvider supplies dynamic instruction text at runtime.
// Implementations can derive instructions from workflow state, market
// context, environment, etc.
type InstructionProvider interface {
	Instruction(state map[string]any) (string, error)
}

// InstructionFunc is a functional adapter to allow ordinary functions to be
// used as providers.
type InstructionFunc func(state map[string]any) (string, error)

// Instruction implements InstructionProvider.
func (f InstructionFunc) Instruction(state map[string]any) (string, error) { return f(state) }

// Instruction represents either a static instruction template or a dynamic
// provider. Static text may contain {{.key}} placeholders resolved from
// the state map.
type Instruction struct {
	text     string
	provider InstructionProvider
}

// NewInstructionFromText creates an Instruction from a static template.
func NewInstructionFromText(text string) Instruction { return Instruction{text: text} }

// NewInstructionFromProvider creates an Instruction from a dynamic provider.
func NewInstructionFromProvider(p InstructionProvider) Instruction {
	return Instruction{provider: p}
}

// NewInstructionFromFunc creates an Instruction from a function.
func NewInstructionFromFunc(f func(state map[string]any) (string, error)) Instruction {
	return Instruction{provider: InstructionFunc(f)}
}

// IsStatic returns true if the instruction is backed by a static template.
func (i Instruction) IsStatic() bool { return i.provider == nil }

// Resolve returns the instruction text, invoking the provider or rendering
// template placeholders as needed.
func (i Instruction) Resolve(state map[string]any) (string, error) {
	if i.provider != nil {
		return i.provider.Instruction(state)
	}
	return util.RenderTemplate(i.text, state)
}

// Role instructions for the built-in trading agents.
const (
	portfolioInstructions = `You are a portfolio management expert responsible for overall investment strategy and asset allocation decisions.
Key responsibilities:
1. Develop investment strategies based on macro analysis
2. Optimize asset allocation weights
3. Control overall portfolio risk
4. Evaluate investment performance and attribution analysis

Based on market information and risk parameters, provide optimal asset allocation recommendations.`

	riskInstructions = `You are a risk management expert responsible for assessing and controlling portfolio risk.
Key responsibilities:
1. Calculate VaR and expected tail loss
2. Set risk limits and warning thresholds
3. Conduct stress testing and scenario analysis
4. Monitor risk concentration

Based on current positions and market conditions, provide comprehensive risk assessment reports.`

	strategyInstructions = `You are a strategy research expert responsible for developing trading strategies and signals.
Key responsibilities:
1. Research and develop trading strategies
2. Generate trading signals based on technical and fundamental analysis
3. Conduct backtesting and performance evaluation
4. Tune strategy parameters while minimizing transaction costs

Based on historical data and market characteristics, provide feasible trading strategy recommendations with clear reasoning.`

	executionInstructions = `You are an order execution expert responsible for optimizing trade execution quality.
Key responsibilities:
1. Select optimal execution algorithms
2. Manage order routing and splitting
3. Minimize market impact costs
4. Monitor execution quality and slippage

Based on trading signals and market conditions, develop optimal execution plans.`

	monitoringInstructions = `You are a real-time risk monitoring expert responsible for monitoring trading risks.
Key responsibilities:
1. Calculate risk indicators in real-time
2. Monitor risk limits and thresholds
3. Detect abnormal trading behavior
4. Trigger risk alerts and emergency measures

Based on real-time data, provide risk monitoring reports and early warning information.`

	schedulerInstructions = `You are a task scheduling expert responsible for coordinating work across agent layers.
Key responsibilities:
1. Task priority management
2. Resource allocation and load balancing
3. Failure detection and recovery
4. Performance monitoring and optimization

Based on system load and task requirements, develop optimal scheduling plans.`
)
