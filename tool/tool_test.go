package tool

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/trademesh/core"
	"github.com/hupe1980/trademesh/internal/util"
	"github.com/hupe1980/trademesh/workspace"
)

// -------------------- Schema & Validation Tests --------------------

type sampleSchema struct {
	A string `json:"a" description:"Field A"`
	B *int   `json:"b" description:"Optional pointer field"`
	C int    `json:"c,omitempty" description:"Omit empty field"`
}

func TestCreateSchema(t *testing.T) {
	schema := util.CreateSchema(sampleSchema{})
	props, ok := schema["properties"].(map[string]any)
	assert.True(t, ok)
	// Properties present
	assert.Contains(t, props, "a")
	assert.Contains(t, props, "b")
	assert.Contains(t, props, "c")
	// Required only includes non-pointer, non-omitempty exported fields
	req, ok := schema["required"].([]string)
	assert.True(t, ok)
	assert.ElementsMatch(t, []string{"a"}, req)
}

func TestValidateParameters(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"x": map[string]any{"type": "integer"},
		},
		// Use []any to mirror possible JSON decoded schema shape
		"required": []any{"x"},
	}

	// Success
	err := util.ValidateParameters(map[string]any{"x": 5}, schema)
	assert.NoError(t, err)

	// Missing required
	err = util.ValidateParameters(map[string]any{}, schema)
	assert.Error(t, err)
	if vErr, ok := err.(*ValidationError); ok {
		assert.Equal(t, "x", vErr.Field)
	} else {
		t.Fatalf("expected ValidationError, got %T", err)
	}

	// Wrong type
	err = util.ValidateParameters(map[string]any{"x": "not-int"}, schema)
	assert.Error(t, err)
	if vErr, ok := err.(*ValidationError); ok {
		assert.Contains(t, vErr.Message, "expected type integer")
	} else {
		t.Fatalf("expected ValidationError, got %T", err)
	}

	// Hand-written schemas declare required as []string
	schema["required"] = []string{"x"}
	assert.NoError(t, util.ValidateParameters(map[string]any{"x": 5}, schema))
	assert.Error(t, util.ValidateParameters(map[string]any{}, schema))
}

// -------------------- FunctionTool Tests --------------------

func TestFunctionTool_Success(t *testing.T) {
	params := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"a": map[string]any{"type": "number"},
			"b": map[string]any{"type": "number"},
		},
		"required": []string{"a", "b"},
	}

	sumTool := NewFunctionTool("sum", "Add numbers", params, func(_ context.Context, args map[string]any) (any, error) {
		a := args["a"].(float64)
		b := args["b"].(float64)
		return a + b, nil
	})

	result, err := sumTool.Call(context.Background(), map[string]any{"a": 2.0, "b": 3.0})
	assert.NoError(t, err)
	assert.Equal(t, 5.0, result)
}

func TestFunctionTool_ValidationError(t *testing.T) {
	params := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"a": map[string]any{"type": "number"},
		},
		"required": []any{"a"},
	}
	tTool := NewFunctionTool("test", "Test", params, func(_ context.Context, _ map[string]any) (any, error) {
		return 0, nil
	})
	_, err := tTool.Call(context.Background(), map[string]any{})
	assert.Error(t, err)
	toolErr, ok := err.(*ToolError)
	assert.True(t, ok)
	assert.Equal(t, CodeValidation, toolErr.Code)
}

func TestFunctionTool_ExecutionError(t *testing.T) {
	params := map[string]any{"type": "object", "properties": map[string]any{}}
	execTool := NewFunctionTool("fail", "Fails", params, func(_ context.Context, _ map[string]any) (any, error) {
		return nil, errors.New("boom")
	})
	_, err := execTool.Call(context.Background(), map[string]any{})
	assert.Error(t, err)
	toolErr, ok := err.(*ToolError)
	assert.True(t, ok)
	assert.Equal(t, CodeExecution, toolErr.Code)
}

func TestFunctionTool_PreservesToolErrorCode(t *testing.T) {
	params := map[string]any{"type": "object", "properties": map[string]any{}}
	quotaTool := NewFunctionTool("quota", "Fails with custom code", params, func(_ context.Context, _ map[string]any) (any, error) {
		return nil, NewToolError("quota", "daily quota exceeded", "QUOTA_EXCEEDED")
	})
	_, err := quotaTool.Call(context.Background(), map[string]any{})
	assert.Error(t, err)
	toolErr, ok := err.(*ToolError)
	assert.True(t, ok)
	assert.Equal(t, "QUOTA_EXCEEDED", toolErr.Code)
}

// -------------------- WorkspaceManagerTool Tests --------------------

func TestWorkspaceManagerTool_SaveLoadList(t *testing.T) {
	wm := NewWorkspaceManagerTool(workspace.NewInMemoryStore())
	ctx := context.Background()

	res, err := wm.Call(ctx, map[string]any{
		"operation": "save_file",
		"run_id":    "run-1",
		"file_name": "notes.md",
		"data":      "AAPL looks overbought",
	})
	assert.NoError(t, err)
	m := res.(map[string]any)
	assert.Equal(t, "notes.md", m["file_name"])
	assert.Equal(t, true, m["success"])

	res, err = wm.Call(ctx, map[string]any{
		"operation": "load_file",
		"run_id":    "run-1",
		"file_name": "notes.md",
	})
	assert.NoError(t, err)
	lm := res.(map[string]any)
	assert.Equal(t, "AAPL looks overbought", lm["data"])

	res, err = wm.Call(ctx, map[string]any{"operation": "list_files", "run_id": "run-1"})
	assert.NoError(t, err)
	fm := res.(map[string]any)
	assert.Equal(t, []string{"notes.md"}, fm["files"])
	assert.Equal(t, 1, fm["count"])
}

func TestWorkspaceManagerTool_DefaultRun(t *testing.T) {
	store := workspace.NewInMemoryStore()
	wm := NewWorkspaceManagerTool(store)

	_, err := wm.Call(context.Background(), map[string]any{
		"operation": "save_file",
		"file_name": "scratch.txt",
		"data":      "x",
	})
	assert.NoError(t, err)

	data, err := store.Get(DefaultWorkspaceRun, "scratch.txt")
	assert.NoError(t, err)
	assert.Equal(t, "x", string(data))
}

func TestWorkspaceManagerTool_Errors(t *testing.T) {
	wm := NewWorkspaceManagerTool(workspace.NewInMemoryStore())
	ctx := context.Background()

	_, err := wm.Call(ctx, map[string]any{"operation": "teleport"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown operation")

	_, err = wm.Call(ctx, map[string]any{"operation": "save_file"})
	assert.Error(t, err)

	_, err = wm.Call(ctx, map[string]any{"operation": "load_file", "file_name": "missing.md"})
	assert.Error(t, err)

	_, err = wm.Call(ctx, map[string]any{"operation": "delete_file", "file_name": "missing.md"})
	assert.Error(t, err)
}

// -------------------- Registry Tests --------------------

func TestRegistry_RegisterAndExecute(t *testing.T) {
	reg := NewRegistry()
	params := map[string]any{"type": "object", "properties": map[string]any{}}

	reg.Register(NewFunctionTool("ping", "Ping", params, func(_ context.Context, _ map[string]any) (any, error) {
		return "pong", nil
	}))
	reg.Register(NewFunctionTool("echo", "Echo", params, func(_ context.Context, args map[string]any) (any, error) {
		return args, nil
	}))

	assert.Equal(t, []string{"ping", "echo"}, reg.Names())
	assert.Len(t, reg.Tools(), 2)

	got, ok := reg.Get("ping")
	assert.True(t, ok)
	assert.Equal(t, "ping", got.Name())

	result, err := reg.Execute(context.Background(), "ping", map[string]any{})
	assert.NoError(t, err)
	assert.Equal(t, "pong", result)
}

func TestRegistry_ExecuteUnknownTool(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.Execute(context.Background(), "nope", map[string]any{})
	assert.Error(t, err)
	toolErr, ok := err.(*ToolError)
	assert.True(t, ok)
	assert.Equal(t, CodeNotFound, toolErr.Code)
	assert.Equal(t, "nope", toolErr.Tool)
}

func TestRegistry_RegisterReplacesByName(t *testing.T) {
	reg := NewRegistry()
	params := map[string]any{"type": "object", "properties": map[string]any{}}

	reg.Register(NewFunctionTool("dup", "v1", params, func(_ context.Context, _ map[string]any) (any, error) {
		return 1, nil
	}))
	reg.Register(NewFunctionTool("dup", "v2", params, func(_ context.Context, _ map[string]any) (any, error) {
		return 2, nil
	}))

	assert.Equal(t, []string{"dup"}, reg.Names())

	result, err := reg.Execute(context.Background(), "dup", map[string]any{})
	assert.NoError(t, err)
	assert.Equal(t, 2, result)
}

// -------------------- AskAgentTool Tests --------------------

type stubRouter struct {
	reply core.Message
	err   error
	sent  []core.Message
}

func (r *stubRouter) Register(_ core.Agent) {}

func (r *stubRouter) Send(_ context.Context, msg core.Message) (core.Message, error) {
	r.sent = append(r.sent, msg)
	return r.reply, r.err
}

func (r *stubRouter) Broadcast(_ context.Context, _ string, _ core.Message) ([]core.Message, error) {
	return nil, nil
}

func TestAskAgentTool_Success(t *testing.T) {
	router := &stubRouter{
		reply: core.NewMessage(core.LayerStrategic, "risk_manager", core.LayerCoordination, core.SystemAgent,
			core.KindResponse, core.PriorityMedium, core.Payload{"risk_status": "within_limits"}),
	}
	askTool := NewAskAgentTool(router)

	res, err := askTool.Call(context.Background(), map[string]any{
		"layer": core.LayerStrategic,
		"agent": "risk_manager",
	})
	assert.NoError(t, err)

	m := res.(map[string]any)
	assert.Equal(t, "risk_manager", m["agent"])

	response := m["response"].(map[string]any)
	assert.Equal(t, "within_limits", response["risk_status"])

	assert.Len(t, router.sent, 1)
	assert.Equal(t, core.KindQuery, router.sent[0].Kind)
	assert.Equal(t, core.SystemAgent, router.sent[0].SourceAgent)
}

func TestAskAgentTool_AlertReply(t *testing.T) {
	alert := core.NewMessage(core.LayerCoordination, core.SystemAgent, core.LayerCoordination, core.SystemAgent,
		core.KindAlert, core.PriorityHigh, core.Payload{"error": "Agent not found: ghost"})
	askTool := NewAskAgentTool(&stubRouter{reply: alert})

	_, err := askTool.Call(context.Background(), map[string]any{
		"layer": core.LayerExecution,
		"agent": "ghost",
	})
	assert.Error(t, err)
	toolErr, ok := err.(*ToolError)
	assert.True(t, ok)
	assert.Equal(t, CodeExecution, toolErr.Code)
	assert.Contains(t, toolErr.Message, "Agent not found")
}

func TestAskAgentTool_MissingFields(t *testing.T) {
	askTool := NewAskAgentTool(&stubRouter{})

	_, err := askTool.Call(context.Background(), map[string]any{"agent": "risk_manager"})
	assert.Error(t, err)

	_, err = askTool.Call(context.Background(), map[string]any{"layer": core.LayerStrategic, "agent": ""})
	assert.Error(t, err)
}

// -------------------- Envelope Tests --------------------

func TestEnvelope(t *testing.T) {
	var e Envelope
	assert.False(t, e.ExecutionSuccessful)

	e.Succeed()
	assert.True(t, e.ExecutionSuccessful)
	assert.Empty(t, e.Errors)

	e.Fail(errors.New("first"), nil, errors.New("second"))
	assert.False(t, e.ExecutionSuccessful)
	assert.Equal(t, []string{"first", "second"}, e.Errors)

	e.Failf("code %d", 42)
	assert.Equal(t, "code 42", e.Errors[2])
}

// -------------------- ToolError Formatting --------------------

func TestToolErrorFormatting(t *testing.T) {
	err := NewToolError("demo", "something failed", "E123")
	assert.Contains(t, err.Error(), "E123")
	assert.Contains(t, err.Error(), "demo")
}

