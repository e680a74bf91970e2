package trademesh

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/trademesh/agent"
	"github.com/hupe1980/trademesh/config"
	"github.com/hupe1980/trademesh/core"
	"github.com/hupe1980/trademesh/session"
)

func sampleSnapshot() core.Payload {
	return core.Payload{
		"symbols":          []string{"AAPL", "GOOGL", "MSFT"},
		"market_condition": "volatile",
		"vix":              25.5,
	}
}

func TestSystem_RegistersTradingRoles(t *testing.T) {
	sys := New()

	status := sys.SystemStatus()
	assert.Equal(t, "ready", status.SystemStatus)
	assert.Equal(t, 6, status.TotalAgents)
	assert.Contains(t, status.Layers[core.LayerStrategic], agent.PortfolioManagerName)
	assert.Contains(t, status.Layers[core.LayerStrategic], agent.RiskManagerName)
	assert.Contains(t, status.Layers[core.LayerCoordination], agent.TaskSchedulerName)
}

func TestSystem_RunTradingWorkflow(t *testing.T) {
	sys := New()

	result := sys.RunTradingWorkflow(context.Background(), sampleSnapshot())

	assert.True(t, result.Success)
	assert.Empty(t, result.Errors)
	assert.NotNil(t, result.PortfolioAllocation["allocation"])
	assert.Equal(t, "within_limits", result.RiskAssessment.String("risk_status"))
	assert.NotNil(t, result.StrategyRecommendation["signals"])
	assert.NotNil(t, result.ExecutionPlan["execution_plan"])
	assert.NotNil(t, result.RiskMonitoring["risk_status"])
}

func TestSystem_WorkflowRecordsSession(t *testing.T) {
	store := session.NewInMemoryStore()
	sys := New(func(o *Options) {
		o.SessionStore = store
	})

	result := sys.RunTradingWorkflow(context.Background(), sampleSnapshot())
	assert.True(t, result.Success)

	ids, err := store.List(context.Background())
	assert.NoError(t, err)
	assert.Len(t, ids, 1)

	run, err := store.Get(context.Background(), ids[0])
	assert.NoError(t, err)
	// Five stages, one request and one reply each.
	assert.Equal(t, 10, run.MessageCount())
	assert.Contains(t, run.State, "result")
}

func TestSystem_SendRoutesToAgents(t *testing.T) {
	sys := New()

	msg := core.NewMessage(
		core.LayerCoordination, core.SystemAgent,
		core.LayerCoordination, agent.TaskSchedulerName,
		core.KindCommand, core.PriorityHigh,
		core.Payload{"task": core.Payload{"type": "rebalance"}},
	)

	reply, err := sys.Send(context.Background(), msg)
	assert.NoError(t, err)
	assert.Equal(t, 1, reply.Payload.Int("queue_position"))
	assert.Len(t, sys.Scheduler().Tasks(), 1)
}

func TestSystem_RegisterAgentReplacesRole(t *testing.T) {
	sys := New()

	replacement := agent.NewBase(agent.RiskManagerName, "RiskManager", core.LayerStrategic,
		func(_ context.Context, msg core.Message) (core.Message, error) {
			return core.NewResponse(msg, core.LayerStrategic, "RiskManager",
				core.Payload{"risk_status": "halted"}), nil
		})
	sys.RegisterAgent(replacement)
	assert.Equal(t, 6, sys.SystemStatus().TotalAgents)

	msg := core.NewMessage(
		core.LayerCoordination, core.SystemAgent,
		core.LayerStrategic, agent.RiskManagerName,
		core.KindQuery, core.PriorityHigh, nil,
	)
	reply, err := sys.Send(context.Background(), msg)
	assert.NoError(t, err)
	assert.Equal(t, "halted", reply.Payload.String("risk_status"))
}

func TestSystem_BroadcastReachesLayer(t *testing.T) {
	sys := New()

	msg := core.NewMessage(
		core.LayerCoordination, core.SystemAgent,
		core.LayerStrategic, "",
		core.KindQuery, core.PriorityMedium, nil,
	)

	replies, err := sys.Broadcast(context.Background(), core.LayerStrategic, msg)
	assert.NoError(t, err)
	assert.Len(t, replies, 2)
}

func TestSystem_StartWithoutHeartbeatIsNoOp(t *testing.T) {
	sys := New()
	assert.NoError(t, sys.Start())
	sys.Stop()
}

func TestNewFromConfig_RejectsInvalidConfig(t *testing.T) {
	cfg := config.FromEnv()
	cfg.Model.Temperature = 5.0

	_, err := NewFromConfig(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestNewFromConfig_InMemorySessionsWithoutRedis(t *testing.T) {
	cfg := config.FromEnv()
	cfg.Redis.Addr = ""
	cfg.Workspace = t.TempDir()
	cfg.Model.APIKey = ""

	sys, err := NewFromConfig(cfg)
	assert.NoError(t, err)
	assert.NotNil(t, sys.Sessions())
	assert.NotNil(t, sys.Workspace())
	assert.Equal(t, 6, sys.SystemStatus().TotalAgents)
}
