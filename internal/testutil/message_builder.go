package testutil

import (
	"github.com/hupe1980/trademesh/core"
)

// MessageBuilder provides a fluent helper for constructing messages in tests.
// Example:
//
//	msg := NewMessageBuilder().Target(core.LayerStrategic, "portfolio_manager").Query().Build()
//
// Chain only the parts you need; sensible defaults are applied: the
// system identity as source, query kind and medium priority.
type MessageBuilder struct {
	srcLayer, srcAgent string
	dstLayer, dstAgent string
	kind               core.MessageKind
	priority           core.Priority
	payload            core.Payload
	metadata           map[string]any
	id                 string
}

// NewMessageBuilder creates a builder with the system source identity.
func NewMessageBuilder() *MessageBuilder {
	return &MessageBuilder{
		srcLayer: core.LayerCoordination,
		srcAgent: core.SystemAgent,
		kind:     core.KindQuery,
		priority: core.PriorityMedium,
		payload:  core.Payload{},
	}
}

// Source sets the source identity (chainable).
func (b *MessageBuilder) Source(layer, agent string) *MessageBuilder {
	b.srcLayer, b.srcAgent = layer, agent
	return b
}

// Target sets the target identity (chainable).
func (b *MessageBuilder) Target(layer, agent string) *MessageBuilder {
	b.dstLayer, b.dstAgent = layer, agent
	return b
}

// ID overrides the auto-generated message ID (chainable). Use mainly in tests where determinism matters.
func (b *MessageBuilder) ID(id string) *MessageBuilder { b.id = id; return b }

// Query sets the query kind (chainable).
func (b *MessageBuilder) Query() *MessageBuilder { b.kind = core.KindQuery; return b }

// Command sets the command kind (chainable).
func (b *MessageBuilder) Command() *MessageBuilder { b.kind = core.KindCommand; return b }

// Heartbeat sets the heartbeat kind (chainable).
func (b *MessageBuilder) Heartbeat() *MessageBuilder { b.kind = core.KindHeartbeat; return b }

// Kind sets an arbitrary kind (chainable).
func (b *MessageBuilder) Kind(k core.MessageKind) *MessageBuilder { b.kind = k; return b }

// Priority sets the priority (chainable).
func (b *MessageBuilder) Priority(p core.Priority) *MessageBuilder { b.priority = p; return b }

// Set stores a payload key/value pair (chainable).
func (b *MessageBuilder) Set(key string, val any) *MessageBuilder {
	b.payload[key] = val
	return b
}

// Payload replaces the whole payload (chainable).
func (b *MessageBuilder) Payload(p core.Payload) *MessageBuilder { b.payload = p; return b }

// Meta stores a metadata key/value pair (chainable).
func (b *MessageBuilder) Meta(key string, val any) *MessageBuilder {
	if b.metadata == nil {
		b.metadata = map[string]any{}
	}
	b.metadata[key] = val
	return b
}

// Build constructs the core.Message value.
func (b *MessageBuilder) Build() core.Message {
	msg := core.NewMessage(b.srcLayer, b.srcAgent, b.dstLayer, b.dstAgent, b.kind, b.priority, b.payload)
	if b.id != "" {
		msg.ID = b.id
	}
	for k, v := range b.metadata {
		msg.Metadata[k] = v
	}
	return msg
}
