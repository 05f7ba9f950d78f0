package loop

import (
	"context"
	"testing"

	"github.com/jalleo/nodion/pkg/models"
)

func freshContext() *models.ExecutionContext {
	return &models.ExecutionContext{
		ExecutionID: "exec-test",
		Iterations:  make(map[string]int),
	}
}

func TestNode_Execute_IteratesUntilBudgetSpent(t *testing.T) {
	node, err := NewNode("loop-1", map[string]any{"max_iterations": 3.0})
	if err != nil {
		t.Fatalf("Failed to create node: %v", err)
	}

	ectx := freshContext()

	for want := 1; want <= 3; want++ {
		result := node.Execute(context.Background(), ectx, nil)

		if !result.Success {
			t.Fatalf("Visit %d: expected success, got error: %s", want, result.Error)
		}

		count, ok := result.Outputs[OutputPortIteration]
		if !ok {
			t.Fatalf("Visit %d: expected iteration port, got outputs: %v", want, result.Outputs)
		}

		if count != want {
			t.Errorf("Visit %d: expected count %d, got %v", want, want, count)
		}

		if _, ok := result.Outputs[OutputPortComplete]; ok {
			t.Errorf("Visit %d: complete must not fire within the budget", want)
		}
	}

	// The visit after the budget leaves through complete.
	result := node.Execute(context.Background(), ectx, nil)

	if _, ok := result.Outputs[OutputPortComplete]; !ok {
		t.Fatalf("Expected complete port after the budget, got outputs: %v", result.Outputs)
	}

	if _, ok := result.Outputs[OutputPortIteration]; ok {
		t.Error("Iteration port must not fire once the budget is spent")
	}

	if result.Outputs["iterations"] != 3 {
		t.Errorf("Expected iterations total 3, got %v", result.Outputs["iterations"])
	}
}

func TestNode_Execute_BudgetIsPerExecution(t *testing.T) {
	node, err := NewNode("loop-1", map[string]any{"max_iterations": 1.0})
	if err != nil {
		t.Fatalf("Failed to create node: %v", err)
	}

	first := freshContext()

	if result := node.Execute(context.Background(), first, nil); result.Outputs[OutputPortIteration] != 1 {
		t.Fatalf("Expected first visit to iterate, got %v", result.Outputs)
	}

	if result := node.Execute(context.Background(), first, nil); result.Outputs[OutputPortComplete] != true {
		t.Fatalf("Expected second visit to complete, got %v", result.Outputs)
	}

	// A new execution context starts with a fresh budget.
	second := freshContext()

	if result := node.Execute(context.Background(), second, nil); result.Outputs[OutputPortIteration] != 1 {
		t.Errorf("Expected fresh budget in a new execution, got %v", result.Outputs)
	}
}

func TestNewNode_RejectsBadConfig(t *testing.T) {
	tests := []struct {
		name string
		data map[string]any
	}{
		{name: "zero budget", data: map[string]any{"max_iterations": 0.0}},
		{name: "negative budget", data: map[string]any{"max_iterations": -5.0}},
		{name: "over the cap", data: map[string]any{"max_iterations": 100000.0}},
		{name: "non-numeric", data: map[string]any{"max_iterations": "many"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewNode("loop-1", tt.data); err == nil {
				t.Errorf("Expected constructor error for %v", tt.data)
			}
		})
	}
}
