package queue

import (
	"context"
	"testing"

	"github.com/jalleo/nodion/pkg/models"
	"github.com/jalleo/nodion/pkg/protocol"
)

func TestNewNode_RequiresQueue(t *testing.T) {
	if _, err := NewNode("trigger-1", map[string]any{}, nil); err == nil {
		t.Error("Expected error for missing queue")
	}

	if _, err := NewNode("trigger-1", map[string]any{"queue": ""}, nil); err == nil {
		t.Error("Expected error for empty queue")
	}
}

func TestNewNode_ParsesConnection(t *testing.T) {
	node, err := NewNode("trigger-1", map[string]any{
		"queue": "signals",
		"connection": map[string]any{
			"addr":     "redis.internal:6380",
			"password": "secret",
			"db":       "2",
			"ignored":  42,
		},
	}, nil)
	if err != nil {
		t.Fatalf("Failed to create node: %v", err)
	}

	if node.queue != "signals" {
		t.Errorf("Expected queue signals, got %q", node.queue)
	}

	if node.connection["addr"] != "redis.internal:6380" || node.connection["db"] != "2" {
		t.Errorf("Unexpected connection config: %v", node.connection)
	}

	if _, ok := node.connection["ignored"]; ok {
		t.Error("Non-string connection values must be dropped")
	}
}

func TestDecodeMessage(t *testing.T) {
	tests := []struct {
		name    string
		message string
		check   func(t *testing.T, payload map[string]any)
	}{
		{
			name:    "json object",
			message: `{"symbol": "ETH-USD", "price": 1850.5}`,
			check: func(t *testing.T, payload map[string]any) {
				t.Helper()

				if payload["symbol"] != "ETH-USD" || payload["price"] != 1850.5 {
					t.Errorf("Expected parsed fields, got %v", payload)
				}

				if payload["timestamp"] == nil {
					t.Error("Expected a stamped timestamp")
				}
			},
		},
		{
			name:    "json with timestamp kept",
			message: `{"timestamp": "2025-06-01T12:00:00Z"}`,
			check: func(t *testing.T, payload map[string]any) {
				t.Helper()

				if payload["timestamp"] != "2025-06-01T12:00:00Z" {
					t.Errorf("Existing timestamp must be kept, got %v", payload["timestamp"])
				}
			},
		},
		{
			name:    "raw string",
			message: "sell now",
			check: func(t *testing.T, payload map[string]any) {
				t.Helper()

				if payload["message"] != "sell now" {
					t.Errorf("Expected raw message wrapper, got %v", payload)
				}

				if payload["timestamp"] == nil {
					t.Error("Expected a stamped timestamp")
				}
			},
		},
		{
			name:    "json array falls back to raw",
			message: `[1, 2, 3]`,
			check: func(t *testing.T, payload map[string]any) {
				t.Helper()

				if payload["message"] != "[1, 2, 3]" {
					t.Errorf("Non-object JSON must fall back to raw, got %v", payload)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, decodeMessage(tt.message))
		})
	}
}

func TestNode_Execute_EmitsCapturedPayload(t *testing.T) {
	node, err := NewNode("trigger-1", map[string]any{"queue": "signals"}, nil)
	if err != nil {
		t.Fatalf("Failed to create node: %v", err)
	}

	ectx := &models.ExecutionContext{
		ExecutionID: "exec-test",
		Payload:     map[string]any{"symbol": "ETH-USD"},
	}

	result := node.Execute(context.Background(), ectx, nil)

	if !result.Success {
		t.Fatalf("Expected success, got error: %s", result.Error)
	}

	if v, ok := result.Outputs[protocol.OutputPortFired]; !ok || v != true {
		t.Errorf("Expected fired port, got outputs: %v", result.Outputs)
	}
}

func TestNode_ImplementsTriggerNode(t *testing.T) {
	node, err := NewNode("trigger-1", map[string]any{"queue": "signals"}, nil)
	if err != nil {
		t.Fatalf("Failed to create node: %v", err)
	}

	var _ protocol.TriggerNode = node
}
