// Package transform provides the data transformation utility node.
package transform

import (
	"context"
	"errors"

	"github.com/jalleo/nodion/pkg/models"
	"github.com/jalleo/nodion/pkg/protocol"
	"github.com/jalleo/nodion/pkg/template"
)

// Node implements the transform utility.
type Node struct {
	id         string
	expression string
}

// NewNode creates a transform node.
func NewNode(id string, data map[string]any) (*Node, error) {
	expression, ok := data["expression"].(string)
	if !ok || expression == "" {
		return nil, errors.New("missing required field 'expression'")
	}

	return &Node{id: id, expression: expression}, nil
}

// ID returns the node ID.
func (n *Node) ID() string {
	return n.id
}

// Type returns the node type.
func (n *Node) Type() string {
	return models.NodeTypeTransform
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
		{ID: protocol.OutputPortDone, Kind: models.PortKindExecution, Description: "Fires after the transformation"},
		{ID: protocol.OutputPortResult, Kind: models.PortKindData, Description: "The transformed value"},
	}
}

// DefaultData returns the configuration defaults.
func (n *Node) DefaultData() map[string]any {
	return map[string]any{}
}

// Execute renders the expression against the execution state. Rendered
// JSON comes out as structured data, so a template can reshape the payload
// into a new object.
func (n *Node) Execute(_ context.Context, ectx *models.ExecutionContext, inputs map[string]any) models.ExecutionResult {
	value, err := template.RenderWithContext(n.expression, ectx, inputs)
	if err != nil {
		return protocol.Failf("transformation failed: %v", err)
	}

	return protocol.Succeed(map[string]any{
		protocol.OutputPortDone:   true,
		protocol.OutputPortResult: value,
	})
}

// Validate checks the expression template.
func (n *Node) Validate() *models.ValidationReport {
	report := models.NewValidationReport()

	if err := template.Check(n.expression); err != nil {
		report.AddError(err.Error())
	}

	return report
}
