// Package agent contains the trading role agents of TradeMesh and the
// shared base they embed. The package focuses on three concerns:
//
//  1. Shared message lifecycle plumbing (Base: status transitions, memory
//     recording, handler error conversion)
//  2. The six trading roles across five layers: PortfolioManager and
//     RiskManager (strategic), StrategyResearch (tactical), OrderExecution
//     (execution), RealTimeRisk (monitoring), TaskScheduler (coordination)
//  3. Role instruction templates resolved at runtime (Instruction)
//
// Design principles:
//   - Total processing: Process always returns a well-formed reply; handler
//     failures become alert responses, never propagated errors
//   - Explicit wiring via functional options (logger, model, limiter, tools)
//   - Observability: every failure is logged with the agent identity
//
// Execution Model:
//   - The engine delivers messages to Process by registry name
//   - Base records each non-heartbeat message into the agent's private
//     memory before the role handler runs
//   - Role handlers produce response payloads; Base owns status and errors
//
// The package intentionally keeps routing, persistence and tool execution
// in their respective packages to avoid cyclic deps.
package agent
