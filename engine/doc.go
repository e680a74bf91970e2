// Package engine implements the layer registry and message router for
// TradeMesh.
//
// The Engine is the central coordination hub connecting the trading
// agents across the five layers. It keeps the authoritative name->agent
// registry, delivers messages point-to-point and layer-wide, retains a
// bounded message bus window, and reports the live system status.
//
// # Core Responsibilities
//
// Agent Management:
//   - Thread-safe agent registry with name-based lookup
//   - Registration-order iteration for deterministic status reports
//     and broadcasts
//
// Message Routing:
//   - Point-to-point delivery (Send) returning the target's reply
//   - Layer-wide fan-out (Broadcast) with bounded concurrency
//   - Unknown targets answered with an "Agent not found" alert from
//     the coordination layer's system identity, never an error
//
// Operations:
//   - Live per-agent state snapshots via SystemStatus
//   - Bounded message history with a monotonic routed total
//   - Cron-scheduled heartbeat probing driving the agent_up gauge
//   - Callback hooks around message processing
//
// # Usage
//
// Basic setup:
//
//	eng := engine.New(engine.WithLogger(logger))
//	eng.Register(agent.NewPortfolioManager())
//	eng.Register(agent.NewRiskManager())
//
// Routing:
//
//	reply, err := eng.Send(ctx, msg)
//	if err != nil {
//	    return err // malformed message or cancelled context
//	}
//	if reply.Failed() {
//	    // handler failure or unknown target, inspect reply payload
//	}
//
// Heartbeats:
//
//	hb := engine.NewHeartbeatMonitor(eng,
//	    engine.WithHeartbeatSchedule("@every 30s"))
//	if err := hb.Start(); err != nil {
//	    return err
//	}
//	defer hb.Stop()
//
// # Error Handling
//
// Send separates transport faults from processing faults. Malformed
// messages and cancelled contexts return errors; everything that reaches
// an agent comes back as a message, with handler failures encoded as
// alert-kind replies. Callers inspect reply.Failed() rather than
// handling routing errors for business failures.
package engine
