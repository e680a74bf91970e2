package core

import (
	"encoding/json"
	"time"
)

// AgentStatus is the lifecycle state of an agent.
type AgentStatus string

const (
	// StatusIdle means the agent is ready for the next message.
	StatusIdle AgentStatus = "idle"
	// StatusProcessing means the agent is handling a message.
	StatusProcessing AgentStatus = "processing"
	// StatusError means the agent's last handler invocation failed.
	StatusError AgentStatus = "error"
	// StatusMaintenance means the agent is administratively paused.
	StatusMaintenance AgentStatus = "maintenance"
)

// AgentState tracks the runtime condition of a single agent. It is
// mutated only by its owning agent; everything else sees copies. The
// Memory mapping is the agent's private ledger of received messages keyed
// by message ID.
//
// Lifecycle: idle -> processing -> idle on success,
// idle -> processing -> error on handler failure.
type AgentState struct {
	ID           string         `json:"agent_id"`
	Name         string         `json:"name"`
	Layer        string         `json:"layer"`
	Status       AgentStatus    `json:"status"`
	LastActivity time.Time      `json:"last_activity"`
	Memory       map[string]any `json:"-"`
}

// MarshalJSON reports the memory entry count instead of the recorded
// messages, keeping status documents small. Memory contents stay private
// to the owning agent.
func (s AgentState) MarshalJSON() ([]byte, error) {
	type wire struct {
		ID           string      `json:"agent_id"`
		Name         string      `json:"name"`
		Layer        string      `json:"layer"`
		Status       AgentStatus `json:"status"`
		LastActivity time.Time   `json:"last_activity"`
		MemorySize   int         `json:"memory_size"`
	}
	return json.Marshal(wire{
		ID:           s.ID,
		Name:         s.Name,
		Layer:        s.Layer,
		Status:       s.Status,
		LastActivity: s.LastActivity,
		MemorySize:   len(s.Memory),
	})
}

// NewAgentState returns an idle state for the given identity with an
// empty memory mapping.
func NewAgentState(id, name, layer string) AgentState {
	return AgentState{
		ID:           id,
		Name:         name,
		Layer:        layer,
		Status:       StatusIdle,
		LastActivity: time.Now().UTC(),
		Memory:       map[string]any{},
	}
}

// Snapshot returns a copy of the state with its own memory map, safe to
// hand across goroutine boundaries.
func (s AgentState) Snapshot() AgentState {
	cp := s
	cp.Memory = make(map[string]any, len(s.Memory))
	for k, v := range s.Memory {
		cp.Memory[k] = v
	}
	return cp
}

// MemorySize returns the number of recorded memory entries.
func (s AgentState) MemorySize() int { return len(s.Memory) }
