// Package core provides the foundational domain types and interfaces used by
// TradeMesh. It defines the core abstractions for:
//
//   - Messages (immutable layer-to-layer communication records)
//   - Agents (named workers bound to an organizational layer)
//   - Agent state (lifecycle status + per-agent working memory)
//   - Routers (point-to-point delivery and layer-wide fan-out)
//
// The package intentionally keeps implementation concerns (persistence, engine
// orchestration, concrete agents) out of scope, exposing small interfaces to
// enable custom backends and extensions. All exported identifiers include
// concise documentation to aid discoverability and external consumption.
package core
