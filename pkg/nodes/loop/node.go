// Package loop provides the loop utility node, the only legal way to
// close a cycle in a workflow graph.
package loop

import (
	"context"
	"fmt"

	"github.com/jalleo/nodion/pkg/models"
	"github.com/jalleo/nodion/pkg/protocol"
)

// Output ports. A traversal re-enters the cycle through the iteration
// port until the budget is spent, then leaves through complete.
const (
	OutputPortIteration = "iteration"
	OutputPortComplete  = "complete"
)

const maxBudget = 10000

// Node implements the loop utility.
type Node struct {
	id            string
	maxIterations int
}

// NewNode creates a loop node.
func NewNode(id string, data map[string]any) (*Node, error) {
	merged, err := protocol.MergeDefaults(data, defaultData())
	if err != nil {
		return nil, err
	}

	budget, ok := intValue(merged["max_iterations"])
	if !ok {
		return nil, fmt.Errorf("max_iterations must be a number, got %T", merged["max_iterations"])
	}

	if budget < 1 || budget > maxBudget {
		return nil, fmt.Errorf("max_iterations must be between 1 and %d, got %d", maxBudget, budget)
	}

	return &Node{id: id, maxIterations: budget}, nil
}

func defaultData() map[string]any {
	return map[string]any{"max_iterations": 10.0}
}

func intValue(v any) (int, bool) {
	switch value := v.(type) {
	case int:
		return value, true
	case int64:
		return int(value), true
	case float64:
		return int(value), true
	default:
		return 0, false
	}
}

// ID returns the node ID.
func (n *Node) ID() string {
	return n.id
}

// Type returns the node type.
func (n *Node) Type() string {
	return models.NodeTypeLoop
}

// Category returns the node category.
func (n *Node) Category() models.Category {
	return models.CategoryUtility
}

// InputPorts returns the input ports for the node.
func (n *Node) InputPorts() []models.Port {
	return protocol.ExecInputPorts()
}

// OutputPorts returns the output ports for the node.
func (n *Node) OutputPorts() []models.Port {
	return []models.Port{
		{ID: OutputPortIteration, Kind: models.PortKindExecution, Description: "Fires once per iteration while the budget lasts, carrying the iteration count"},
		{ID: OutputPortComplete, Kind: models.PortKindExecution, Description: "Fires once the iteration budget is spent"},
	}
}

// DefaultData returns the configuration defaults.
func (n *Node) DefaultData() map[string]any {
	return defaultData()
}

// Execute spends one unit of the iteration budget. Each visit within the
// budget fires the iteration port with the 1-based count; the visit after
// the budget fires complete instead.
func (n *Node) Execute(_ context.Context, ectx *models.ExecutionContext, _ map[string]any) models.ExecutionResult {
	count := ectx.NextIteration(n.id)

	if count <= n.maxIterations {
		return protocol.Succeed(map[string]any{
			OutputPortIteration: count,
		})
	}

	return protocol.Succeed(map[string]any{
		OutputPortComplete: true,
		"iterations":       n.maxIterations,
	})
}

// Validate checks the node configuration.
func (n *Node) Validate() *models.ValidationReport {
	report := models.NewValidationReport()

	if n.maxIterations > 1000 {
		report.AddWarning(fmt.Sprintf("budget of %d iterations runs the cycle body %d times per trigger event", n.maxIterations, n.maxIterations))
	}

	return report
}
