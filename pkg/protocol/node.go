// Package protocol defines the interfaces and contracts for pluggable nodes.
package protocol

import (
	"context"

	"github.com/jalleo/nodion/pkg/models"
)

// Node is the capability every executable node type implements. Instances
// are constructed per execution by the registry; implementations must not
// share mutable state between instances.
//
// Execute never returns a Go error. Failures travel inside the
// ExecutionResult: Success=false fails the whole execution, while action
// nodes downgrade their errors to output data (see RunAction).
type Node interface {
	// ID returns the node instance ID within its workflow.
	ID() string

	// Type returns the registered node type, e.g. "condition:price-multiple".
	Type() string

	// Category returns the behavioral category of the node type.
	Category() models.Category

	// InputPorts declares the input connection points.
	InputPorts() []models.Port

	// OutputPorts declares the output connection points.
	OutputPorts() []models.Port

	// DefaultData returns the configuration defaults for the type. The
	// registry merges instance data over these at construction.
	DefaultData() map[string]any

	// Execute runs the node against the traversal state. Outputs are keyed
	// by output port ID; only present-and-truthy ports fire connections.
	Execute(ctx context.Context, ectx *models.ExecutionContext, inputs map[string]any) models.ExecutionResult

	// Validate checks the node's configuration. It is advisory: the engine
	// never calls it on the execution path.
	Validate() *models.ValidationReport
}
