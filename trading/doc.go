// Package trading defines the validated value objects exchanged between
// TradeMesh agents: allocations, risk metrics, trading signals, order
// plans, alerts and scheduler tasks.
//
// Every type carries struct-level validation tags and a Validate method;
// ToPayload / FromPayload convert between typed values and the free-form
// message payloads they travel in. Constraints are enforced at the
// boundary where a typed value is parsed out of a payload, so agents can
// trust fields once a value passed validation.
package trading
