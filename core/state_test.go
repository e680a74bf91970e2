package core

import (
	"encoding/json"
	"testing"
)

func TestAgentState_SnapshotIsolation(t *testing.T) {
	s := NewAgentState("portfolio_manager", "PortfolioManager", LayerStrategic)
	if s.Status != StatusIdle || s.LastActivity.IsZero() || s.Memory == nil {
		t.Fatalf("NewAgentState not initialized: %+v", s)
	}

	s.Memory["msg-1"] = map[string]any{"received": "x"}

	snap := s.Snapshot()
	snap.Memory["msg-2"] = "y"
	snap.Status = StatusError

	if s.MemorySize() != 1 {
		t.Errorf("snapshot memory write leaked into original: %+v", s.Memory)
	}
	if s.Status != StatusIdle {
		t.Errorf("snapshot status write leaked into original: %v", s.Status)
	}
}

func TestAgentState_MarshalReportsMemorySize(t *testing.T) {
	s := NewAgentState("risk_manager", "RiskManager", LayerStrategic)
	s.Memory["msg-1"] = map[string]any{"received": "a"}
	s.Memory["msg-2"] = map[string]any{"received": "b"}

	raw, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if doc["memory_size"] != float64(2) {
		t.Errorf("expected memory_size 2, got %v", doc["memory_size"])
	}
	if _, leaked := doc["memory_usage"]; leaked {
		t.Error("memory contents should not appear in the wire form")
	}
	if doc["status"] != "idle" || doc["layer"] != LayerStrategic {
		t.Errorf("wire fields wrong: %v", doc)
	}
}
