package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/hupe1980/trademesh/agent"
	"github.com/hupe1980/trademesh/core"
	"github.com/hupe1980/trademesh/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func newTestEngine(optFns ...func(o *Options)) *Engine {
	e := New(optFns...)
	e.Register(agent.NewPortfolioManager())
	e.Register(agent.NewRiskManager())
	e.Register(agent.NewStrategyResearch())
	return e
}

func TestEngine_SendToRegisteredAgent(t *testing.T) {
	e := newTestEngine()

	msg := testutil.NewMessageBuilder().
		Target(core.LayerStrategic, agent.PortfolioManagerName).
		Query().
		Priority(core.PriorityHigh).
		Build()

	resp, err := e.Send(context.Background(), msg)

	assert.NoError(t, err)
	assert.Equal(t, core.KindResponse, resp.Kind)
	assert.Equal(t, "PortfolioManager", resp.SourceAgent)
	assert.NotNil(t, resp.Payload.Map("allocation"))
}

func TestEngine_SendToUnknownAgent(t *testing.T) {
	e := newTestEngine()

	msg := testutil.NewMessageBuilder().
		Target(core.LayerExecution, "ghost_agent").
		Query().
		Build()

	resp, err := e.Send(context.Background(), msg)

	assert.NoError(t, err, "unknown target must yield an alert reply, not an error")
	assert.Equal(t, core.KindAlert, resp.Kind)
	assert.Equal(t, core.PriorityHigh, resp.Priority)
	assert.Equal(t, core.LayerCoordination, resp.SourceLayer)
	assert.Equal(t, core.SystemAgent, resp.SourceAgent)
	assert.Equal(t, "Agent not found", resp.Payload.String("error"))

	// The alert keeps the unreachable address as its target.
	assert.Equal(t, core.LayerExecution, resp.TargetLayer)
	assert.Equal(t, "ghost_agent", resp.TargetAgent)
	assert.Equal(t, msg.ID, resp.Metadata[core.MetaOriginalMessageID])
}

func TestEngine_SendInvalidMessage(t *testing.T) {
	e := newTestEngine()

	msg := testutil.NewMessageBuilder().
		Target(core.LayerStrategic, agent.PortfolioManagerName).
		Kind(core.MessageKind("telegram")).
		Build()

	_, err := e.Send(context.Background(), msg)
	assert.Error(t, err)
}

func TestEngine_SendCancelledContext(t *testing.T) {
	e := newTestEngine()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	msg := testutil.NewMessageBuilder().
		Target(core.LayerStrategic, agent.PortfolioManagerName).
		Build()

	_, err := e.Send(ctx, msg)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_Broadcast(t *testing.T) {
	e := newTestEngine()

	msg := testutil.NewMessageBuilder().
		Target(core.LayerStrategic, "").
		Query().
		Build()

	replies, err := e.Broadcast(context.Background(), core.LayerStrategic, msg)

	assert.NoError(t, err)
	assert.Len(t, replies, 2)

	// Registration order: portfolio manager first, then risk manager.
	assert.Equal(t, "PortfolioManager", replies[0].SourceAgent)
	assert.Equal(t, "RiskManager", replies[1].SourceAgent)
}

func TestEngine_BroadcastEmptyLayer(t *testing.T) {
	e := newTestEngine()

	msg := testutil.NewMessageBuilder().Build()

	_, err := e.Broadcast(context.Background(), core.LayerMonitoring, msg)
	assert.Error(t, err)
}

func TestEngine_MessageBusWindow(t *testing.T) {
	e := newTestEngine(WithConfig(Config{
		MaxConcurrentBroadcasts: 10,
		MessageHistorySize:      3,
	}))

	for i := 0; i < 3; i++ {
		msg := testutil.NewMessageBuilder().
			Target(core.LayerStrategic, agent.RiskManagerName).
			Query().
			Build()
		_, err := e.Send(context.Background(), msg)
		assert.NoError(t, err)
	}

	// 3 sends record 3 requests and 3 replies; the window retains 3.
	assert.Equal(t, 6, e.RoutedTotal())
	assert.Len(t, e.History(), 3)
}

func TestEngine_SystemStatus(t *testing.T) {
	e := newTestEngine()

	msg := testutil.NewMessageBuilder().
		Target(core.LayerStrategic, agent.PortfolioManagerName).
		Query().
		Build()
	_, err := e.Send(context.Background(), msg)
	assert.NoError(t, err)

	status := e.SystemStatus()

	assert.Equal(t, "ready", status.SystemStatus)
	assert.Equal(t, 3, status.TotalAgents)
	assert.Equal(t, 2, status.MessageBusLength)
	assert.NotEmpty(t, status.Uptime)

	assert.ElementsMatch(t,
		[]string{agent.PortfolioManagerName, agent.RiskManagerName},
		status.Layers[core.LayerStrategic],
	)

	// Agent states are live: the processed message shows up in memory.
	pmState := status.AgentStates[agent.PortfolioManagerName]
	assert.Equal(t, core.StatusIdle, pmState.Status)
	assert.Equal(t, 1, pmState.MemorySize())
}

func TestEngine_SystemStatusEmpty(t *testing.T) {
	e := New()
	status := e.SystemStatus()

	assert.Equal(t, "initialized", status.SystemStatus)
	assert.Equal(t, 0, status.TotalAgents)
}

func TestEngine_BeforeProcessCallbackAborts(t *testing.T) {
	cm := NewCallbackManager()
	cm.Register(NewFunctionCallback(CallbackBeforeProcess,
		func(_ context.Context, _ *CallbackContext) error {
			return errors.New("rejected by policy")
		},
	))

	e := newTestEngine(WithCallbacks(cm))

	msg := testutil.NewMessageBuilder().
		Target(core.LayerStrategic, agent.PortfolioManagerName).
		Query().
		Build()

	_, err := e.Send(context.Background(), msg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "rejected by policy")
}

func TestEngine_AfterProcessCallbackObserves(t *testing.T) {
	var seen []string
	cm := NewCallbackManager()
	cm.Register(NewFunctionCallback(CallbackAfterProcess,
		func(_ context.Context, cbCtx *CallbackContext) error {
			seen = append(seen, cbCtx.AgentID)
			return nil
		},
	))

	e := newTestEngine(WithCallbacks(cm))

	msg := testutil.NewMessageBuilder().
		Target(core.LayerStrategic, agent.RiskManagerName).
		Query().
		Build()

	_, err := e.Send(context.Background(), msg)
	assert.NoError(t, err)
	assert.Equal(t, []string{agent.RiskManagerName}, seen)
}
