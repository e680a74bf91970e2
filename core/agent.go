package core

import "context"

// Agent defines the core interface that every trading role in TradeMesh
// must implement.
//
// Agents are the processing units of the system. They receive a Message,
// run their role-specific logic, and return a response Message. The
// Process contract is total: handler failures are converted into
// alert-kind responses inside the agent, so callers always receive a
// well-formed message and never a propagated error.
//
// Implementations must:
//   - Return a response targeting the request's source identity
//   - Convert internal failures into alert responses (never panic through)
//   - Keep their AgentState consistent with the idle/processing/error
//     lifecycle
//   - Respect context cancellation on long-running handlers
type Agent interface {
	Name() string
	Layer() string
	Description() string
	Process(ctx context.Context, msg Message) Message
	State() AgentState
}
