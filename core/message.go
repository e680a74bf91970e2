package core

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MessageKind classifies the intent of an inter-agent message.
type MessageKind string

const (
	// KindCommand instructs the target agent to perform an action.
	KindCommand MessageKind = "command"
	// KindQuery requests information or a decision from the target agent.
	KindQuery MessageKind = "query"
	// KindResponse answers a previously received command or query.
	KindResponse MessageKind = "response"
	// KindAlert signals an abnormal condition, including synthesized
	// failure responses.
	KindAlert MessageKind = "alert"
	// KindHeartbeat is a liveness probe between the engine and agents.
	KindHeartbeat MessageKind = "heartbeat"
)

// Valid reports whether the kind is one of the five defined values.
func (k MessageKind) Valid() bool {
	switch k {
	case KindCommand, KindQuery, KindResponse, KindAlert, KindHeartbeat:
		return true
	}
	return false
}

// Priority orders messages and tasks. Rank gives the semantic ordering;
// the string value is the wire form.
type Priority string

const (
	// PriorityHigh marks urgent traffic (strategic decisions, alerts).
	PriorityHigh Priority = "high"
	// PriorityMedium is the default for tactical and execution traffic.
	PriorityMedium Priority = "medium"
	// PriorityLow marks background traffic.
	PriorityLow Priority = "low"
)

// Rank returns the numeric ordering of a priority. Higher means more
// urgent. Unknown priorities rank below low so they never jump a queue.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// Valid reports whether the priority is one of the defined levels.
func (p Priority) Valid() bool { return p.Rank() > 0 }

// Layer names for the five conceptual layers of the system. Layers group
// agents by responsibility; routing is per-agent, the layer is carried for
// reporting and correlation.
const (
	LayerStrategic    = "strategic"
	LayerTactical     = "tactical"
	LayerExecution    = "execution"
	LayerMonitoring   = "monitoring"
	LayerCoordination = "coordination"
)

// SystemAgent is the reserved source identity used by the engine and the
// workflow driver when they originate messages themselves.
const SystemAgent = "system"

// Payload is a free-form mapping carried by messages. Accessor helpers
// tolerate missing keys and wrong types by returning zero values, which
// keeps payload threading code free of repetitive assertions.
type Payload map[string]any

// String returns the string value for key, or "" when absent.
func (p Payload) String(key string) string {
	if v, ok := p[key].(string); ok {
		return v
	}
	return ""
}

// Float returns the numeric value for key, accepting float64, int or
// json.Number-decoded values, or 0 when absent.
func (p Payload) Float(key string) float64 {
	switch v := p[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

// Int returns the integer value for key, or 0 when absent.
func (p Payload) Int(key string) int {
	switch v := p[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// Bool returns the boolean value for key, or false when absent.
func (p Payload) Bool(key string) bool {
	if v, ok := p[key].(bool); ok {
		return v
	}
	return false
}

// Map returns the nested mapping for key, or nil when absent.
func (p Payload) Map(key string) Payload {
	switch v := p[key].(type) {
	case Payload:
		return v
	case map[string]any:
		return Payload(v)
	}
	return nil
}

// Clone returns a shallow copy of the payload. Nested maps are shared;
// callers that mutate nested values should deep-copy themselves.
func (p Payload) Clone() Payload {
	if p == nil {
		return nil
	}
	cp := make(Payload, len(p))
	for k, v := range p {
		cp[k] = v
	}
	return cp
}

// Message is the fixed-schema unit of communication between agents, the
// engine and the workflow driver. After construction it should be treated
// as immutable by everything except its creator. It captures:
//   - Correlation (ID, Metadata back-references)
//   - Routing (source and target layer/agent pairs)
//   - Intent (Kind) and urgency (Priority)
//   - Free-form Payload and Metadata mappings
//   - High precision UTC timestamp
//
// Every message has exactly one source and one target agent. Response
// messages carry a "response_to" metadata entry holding the originating
// message ID so callers can correlate without a request table.
type Message struct {
	ID          string         `json:"id"`
	Timestamp   time.Time      `json:"timestamp"`
	SourceLayer string         `json:"source_layer"`
	SourceAgent string         `json:"source_agent"`
	TargetLayer string         `json:"target_layer"`
	TargetAgent string         `json:"target_agent"`
	Kind        MessageKind    `json:"kind"`
	Priority    Priority       `json:"priority"`
	Payload     Payload        `json:"payload"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// MetaResponseTo is the metadata key linking a response to its request.
const MetaResponseTo = "response_to"

// MetaOriginalMessageID is the metadata key used by engine-synthesized
// alerts to reference the message that could not be delivered.
const MetaOriginalMessageID = "original_message_id"

// MetaWorkflowStep is the metadata key tagging the workflow stage that
// produced a message.
const MetaWorkflowStep = "workflow_step"

// NewMessage creates a message between two agents. The ID is generated and
// the timestamp is set to the current UTC time. A nil payload becomes an
// empty map so handlers can read from it without nil checks.
func NewMessage(srcLayer, srcAgent, dstLayer, dstAgent string, kind MessageKind, priority Priority, payload Payload) Message {
	if payload == nil {
		payload = Payload{}
	}
	return Message{
		ID:          NewID(),
		Timestamp:   time.Now().UTC(),
		SourceLayer: srcLayer,
		SourceAgent: srcAgent,
		TargetLayer: dstLayer,
		TargetAgent: dstAgent,
		Kind:        kind,
		Priority:    priority,
		Payload:     payload,
		Metadata:    map[string]any{},
	}
}

// NewResponse constructs the reply to req authored by the given responder
// identity: source becomes the responder's layer/agent, target becomes the
// request's source, the priority is copied from the request and metadata
// records the originating message ID under "response_to".
func NewResponse(req Message, srcLayer, srcAgent string, payload Payload) Message {
	m := NewMessage(srcLayer, srcAgent, req.SourceLayer, req.SourceAgent, KindResponse, req.Priority, payload)
	m.Metadata[MetaResponseTo] = req.ID
	return m
}

// NewErrorAlert constructs the alert-kind reply an agent returns when its
// handler fails. The payload carries the error text and a failed marker;
// targeting and correlation follow the NewResponse contract.
func NewErrorAlert(req Message, srcLayer, srcAgent, errMsg string) Message {
	m := NewResponse(req, srcLayer, srcAgent, Payload{
		"error":  errMsg,
		"status": "failed",
	})
	m.Kind = KindAlert
	return m
}

// NewID generates a new unique identifier for messages, tasks and
// sessions.
//
// Returns a string representation of a new UUID.
func NewID() string { return uuid.NewString() }

// Validate checks the structural invariants of a message: one source and
// one target agent, a defined kind and a defined priority. Payload and
// metadata contents are free-form and not inspected.
func (m Message) Validate() error {
	if m.SourceAgent == "" || m.SourceLayer == "" {
		return fmt.Errorf("message %s: missing source identity", m.ID)
	}
	if m.TargetAgent == "" || m.TargetLayer == "" {
		return fmt.Errorf("message %s: missing target identity", m.ID)
	}
	if !m.Kind.Valid() {
		return fmt.Errorf("message %s: unknown kind %q", m.ID, m.Kind)
	}
	if !m.Priority.Valid() {
		return fmt.Errorf("message %s: unknown priority %q", m.ID, m.Priority)
	}
	return nil
}

// ResponseTo returns the request ID a response message refers to, if any.
func (m Message) ResponseTo() (string, bool) {
	v, ok := m.Metadata[MetaResponseTo].(string)
	return v, ok
}

// WorkflowStep returns the workflow stage tag carried in metadata, if any.
func (m Message) WorkflowStep() (string, bool) {
	v, ok := m.Metadata[MetaWorkflowStep].(string)
	return v, ok
}

// IsAlert reports whether the message signals an abnormal condition.
func (m Message) IsAlert() bool { return m.Kind == KindAlert }

// Failed reports whether the message is a synthesized failure response
// (an alert whose payload carries the failed marker).
func (m Message) Failed() bool {
	return m.Kind == KindAlert && m.Payload.String("status") == "failed"
}

// Clone returns a copy of the message with its own payload and metadata
// maps so the original cannot be mutated through the copy.
func (m Message) Clone() Message {
	cp := m
	cp.Payload = m.Payload.Clone()
	if m.Metadata != nil {
		cp.Metadata = make(map[string]any, len(m.Metadata))
		for k, v := range m.Metadata {
			cp.Metadata[k] = v
		}
	}
	return cp
}

// UnixSeconds returns the timestamp as fractional seconds since Unix epoch.
// Useful for metrics & numeric serialization paths.
func (m Message) UnixSeconds() float64 { return float64(m.Timestamp.UnixNano()) / 1e9 }

// Dump returns the message as a generic mapping using its wire keys, for
// memory records and status reports.
func (m Message) Dump() map[string]any {
	raw, err := json.Marshal(m)
	if err != nil {
		return map[string]any{"id": m.ID}
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return map[string]any{"id": m.ID}
	}
	return out
}
