package engine

import (
	"time"

	"github.com/hupe1980/trademesh/core"
)

// SystemStatus is a point-in-time snapshot of the whole mesh: per-agent
// runtime states, layer membership and message bus depth.
type SystemStatus struct {
	SystemStatus     string                     `json:"system_status"`
	TotalAgents      int                        `json:"total_agents"`
	Layers           map[string][]string        `json:"layers"`
	AgentStates      map[string]core.AgentState `json:"agent_states"`
	MessageBusLength int                        `json:"message_bus_length"`
	Uptime           string                     `json:"uptime"`
	Timestamp        time.Time                  `json:"timestamp"`
}

// SystemStatus reports the current system snapshot. Agent states are
// queried live from each registered agent, so status, last activity and
// memory usage reflect actual processing history rather than the values
// captured at registration.
func (e *Engine) SystemStatus() SystemStatus {
	agents := e.registry.all()

	status := "initialized"
	if len(agents) > 0 {
		status = "ready"
	}

	states := make(map[string]core.AgentState, len(agents))
	layers := make(map[string][]string)
	for _, a := range agents {
		states[a.Name()] = a.State()
		layers[a.Layer()] = append(layers[a.Layer()], a.Name())
	}

	return SystemStatus{
		SystemStatus:     status,
		TotalAgents:      len(agents),
		Layers:           layers,
		AgentStates:      states,
		MessageBusLength: e.bus.total(),
		Uptime:           time.Since(e.started).Round(time.Millisecond).String(),
		Timestamp:        time.Now().UTC(),
	}
}
