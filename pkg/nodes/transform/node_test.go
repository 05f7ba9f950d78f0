package transform

import (
	"context"
	"testing"

	"github.com/jalleo/nodion/pkg/models"
	"github.com/jalleo/nodion/pkg/protocol"
)

func TestNode_Execute_ReshapesPayloadIntoObject(t *testing.T) {
	node, err := NewNode("tf-1", map[string]any{
		"expression": `{"symbol": "{{.payload.symbol}}", "price": {{.payload.current_price}}, "alert": true}`,
	})
	if err != nil {
		t.Fatalf("Failed to create node: %v", err)
	}

	ectx := &models.ExecutionContext{
		ExecutionID: "exec-test",
		Payload:     map[string]any{"symbol": "ETH-USD", "current_price": 1850.5},
	}

	result := node.Execute(context.Background(), ectx, nil)

	if !result.Success {
		t.Fatalf("Expected success, got error: %s", result.Error)
	}

	if v, ok := result.Outputs[protocol.OutputPortDone]; !ok || v != true {
		t.Errorf("Expected done port to fire, got outputs: %v", result.Outputs)
	}

	transformed, ok := result.Outputs[protocol.OutputPortResult].(map[string]any)
	if !ok {
		t.Fatalf("Expected structured result, got %T", result.Outputs[protocol.OutputPortResult])
	}

	if transformed["symbol"] != "ETH-USD" || transformed["price"] != 1850.5 || transformed["alert"] != true {
		t.Errorf("Unexpected transformed object: %v", transformed)
	}
}

func TestNode_Execute_ScalarResult(t *testing.T) {
	node, err := NewNode("tf-1", map[string]any{"expression": "{{.variables.threshold}}"})
	if err != nil {
		t.Fatalf("Failed to create node: %v", err)
	}

	ectx := &models.ExecutionContext{
		ExecutionID: "exec-test",
		Variables:   map[string]any{"threshold": 2.0},
	}

	result := node.Execute(context.Background(), ectx, nil)

	if result.Outputs[protocol.OutputPortResult] != 2.0 {
		t.Errorf("Expected numeric result 2.0, got %v", result.Outputs[protocol.OutputPortResult])
	}
}

func TestNode_Execute_ReadsUpstreamInputs(t *testing.T) {
	node, err := NewNode("tf-1", map[string]any{"expression": "{{.inputs.in}}"})
	if err != nil {
		t.Fatalf("Failed to create node: %v", err)
	}

	result := node.Execute(context.Background(), &models.ExecutionContext{ExecutionID: "exec-test"}, map[string]any{"in": "forwarded"})

	if result.Outputs[protocol.OutputPortResult] != "forwarded" {
		t.Errorf("Expected forwarded input, got %v", result.Outputs[protocol.OutputPortResult])
	}
}

func TestNode_Execute_RenderFailureFailsNode(t *testing.T) {
	node, err := NewNode("tf-1", map[string]any{"expression": "{{.payload.symbol"})
	if err != nil {
		t.Fatalf("Failed to create node: %v", err)
	}

	result := node.Execute(context.Background(), &models.ExecutionContext{ExecutionID: "exec-test"}, nil)

	if result.Success {
		t.Fatal("Expected failure for unparsable expression")
	}
}

func TestNewNode_RequiresExpression(t *testing.T) {
	if _, err := NewNode("tf-1", map[string]any{}); err == nil {
		t.Error("Expected error for missing expression")
	}
}
