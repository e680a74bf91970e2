package tool

import (
	"context"
	"fmt"

	"github.com/hupe1980/trademesh/core"
)

// askAgentTool routes a one-off query to a named trading agent.
type askAgentTool struct {
	router core.Router
}

// NewAskAgentTool constructs the agent query tool instance.
func NewAskAgentTool(router core.Router) Tool { return &askAgentTool{router: router} }

func (t *askAgentTool) Name() string { return "ask_agent" }

func (t *askAgentTool) Description() string {
	return "Send a query to a trading agent by layer and name and return its response payload. Use when a decision needs data owned by a different desk."
}

func (t *askAgentTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"layer": map[string]any{"type": "string", "description": "Target agent layer"},
			"agent": map[string]any{"type": "string", "description": "Target agent name"},
			"payload": map[string]any{"type": "object", "description": "Query payload forwarded to the agent"},
		},
		"required": []string{"layer", "agent"},
	}
}

func (t *askAgentTool) Call(ctx context.Context, args map[string]any) (any, error) {
	rawLayer, ok := args["layer"]
	if !ok {
		return nil, fmt.Errorf("missing required field 'layer'")
	}
	layer, ok := rawLayer.(string)
	if !ok || layer == "" {
		return nil, fmt.Errorf("field 'layer' must be non-empty string")
	}

	rawAgent, ok := args["agent"]
	if !ok {
		return nil, fmt.Errorf("missing required field 'agent'")
	}
	agentName, ok := rawAgent.(string)
	if !ok || agentName == "" {
		return nil, fmt.Errorf("field 'agent' must be non-empty string")
	}

	payload := core.Payload{}
	if m, ok := args["payload"].(map[string]any); ok {
		payload = core.Payload(m)
	}

	msg := core.NewMessage(core.LayerCoordination, core.SystemAgent, layer, agentName, core.KindQuery, core.PriorityMedium, payload)

	reply, err := t.router.Send(ctx, msg)
	if err != nil {
		return nil, err
	}

	if reply.IsAlert() {
		return nil, NewToolError(t.Name(), reply.Payload.String("error"), CodeExecution)
	}

	return map[string]any{"agent": agentName, "layer": layer, "response": map[string]any(reply.Payload)}, nil
}
