package engine

import (
	"context"
	"testing"

	"github.com/hupe1980/trademesh/agent"
	"github.com/hupe1980/trademesh/core"
	"github.com/stretchr/testify/assert"
)

// silentAgent never answers heartbeats with an alive status.
type silentAgent struct{ state core.AgentState }

func (s *silentAgent) Name() string        { return "silent" }
func (s *silentAgent) Layer() string       { return core.LayerMonitoring }
func (s *silentAgent) Description() string { return "agent that ignores heartbeats" }
func (s *silentAgent) State() core.AgentState {
	return s.state
}

func (s *silentAgent) Process(_ context.Context, msg core.Message) core.Message {
	return core.NewResponse(msg, s.Layer(), s.Name(), core.Payload{"status": "busy"})
}

func TestHeartbeatMonitor_AllAlive(t *testing.T) {
	e := New()
	e.Register(agent.NewPortfolioManager())
	e.Register(agent.NewTaskScheduler())

	hb := NewHeartbeatMonitor(e)

	down := hb.Beat(context.Background())
	assert.Empty(t, down)
}

func TestHeartbeatMonitor_ReportsUnresponsive(t *testing.T) {
	e := New()
	e.Register(agent.NewRiskManager())
	e.Register(&silentAgent{state: core.NewAgentState("silent", "Silent", core.LayerMonitoring)})

	hb := NewHeartbeatMonitor(e)

	down := hb.Beat(context.Background())
	assert.Equal(t, []string{"silent"}, down)
}

func TestHeartbeatMonitor_DoesNotPolluteMemory(t *testing.T) {
	e := New()
	pm := agent.NewPortfolioManager()
	e.Register(pm)

	hb := NewHeartbeatMonitor(e)
	hb.Beat(context.Background())

	// Heartbeat probes must not be recorded as processed messages.
	assert.Equal(t, 0, pm.State().MemorySize())
}

func TestHeartbeatMonitor_InvalidSchedule(t *testing.T) {
	e := New()
	hb := NewHeartbeatMonitor(e, WithHeartbeatSchedule("not a schedule"))

	err := hb.Start()
	assert.Error(t, err)
}
