// Package delay provides the delay utility node.
package delay

import (
	"context"
	"fmt"
	"time"

	"github.com/jalleo/nodion/pkg/models"
	"github.com/jalleo/nodion/pkg/protocol"
)

const maxDuration = time.Hour

// Node implements the delay utility.
type Node struct {
	id       string
	duration time.Duration
}

// NewNode creates a delay node. The duration is given either as a number
// of seconds or as a Go duration string like "250ms".
func NewNode(id string, data map[string]any) (*Node, error) {
	merged, err := protocol.MergeDefaults(data, defaultData())
	if err != nil {
		return nil, err
	}

	duration, err := parseDuration(merged["duration"])
	if err != nil {
		return nil, err
	}

	if duration <= 0 || duration > maxDuration {
		return nil, fmt.Errorf("duration must be in (0, %s], got %s", maxDuration, duration)
	}

	return &Node{id: id, duration: duration}, nil
}

func defaultData() map[string]any {
	return map[string]any{"duration": 1.0}
}

func parseDuration(v any) (time.Duration, error) {
	switch value := v.(type) {
	case string:
		d, err := time.ParseDuration(value)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q: %w", value, err)
		}

		return d, nil
	case float64:
		return time.Duration(value * float64(time.Second)), nil
	case int:
		return time.Duration(value) * time.Second, nil
	case int64:
		return time.Duration(value) * time.Second, nil
	default:
		return 0, fmt.Errorf("duration must be seconds or a duration string, got %T", v)
	}
}

// ID returns the node ID.
func (n *Node) ID() string {
	return n.id
}

// Type returns the node type.
func (n *Node) Type() string {
	return models.NodeTypeDelay
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
		{ID: protocol.OutputPortDone, Kind: models.PortKindExecution, Description: "Fires after the delay elapsed"},
	}
}

// DefaultData returns the configuration defaults.
func (n *Node) DefaultData() map[string]any {
	return defaultData()
}

// Execute sleeps for the configured duration. Cancelling the context fails
// the node, aborting the traversal.
func (n *Node) Execute(ctx context.Context, _ *models.ExecutionContext, _ map[string]any) models.ExecutionResult {
	timer := time.NewTimer(n.duration)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return protocol.Failf("delay interrupted: %v", ctx.Err())
	case <-timer.C:
		return protocol.Succeed(map[string]any{
			protocol.OutputPortDone: true,
			"waited_ms":             n.duration.Milliseconds(),
		})
	}
}

// Validate checks the node configuration.
func (n *Node) Validate() *models.ValidationReport {
	report := models.NewValidationReport()

	if n.duration > 5*time.Minute {
		report.AddWarning(fmt.Sprintf("delay of %s blocks the traversal for its full duration", n.duration))
	}

	return report
}
