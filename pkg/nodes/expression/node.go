// Package expression provides a general-purpose condition node that
// evaluates a Go template against the execution state and applies
// truthiness rules to the result.
package expression

import (
	"context"
	"errors"

	"github.com/jalleo/nodion/pkg/models"
	"github.com/jalleo/nodion/pkg/protocol"
	"github.com/jalleo/nodion/pkg/template"
)

// Node implements the expression condition.
type Node struct {
	id         string
	expression string
}

// NewNode creates an expression condition node.
func NewNode(id string, data map[string]any) (*Node, error) {
	expr, ok := data["expression"].(string)
	if !ok || expr == "" {
		return nil, errors.New("missing required field 'expression'")
	}

	return &Node{id: id, expression: expr}, nil
}

// ID returns the node ID.
func (n *Node) ID() string {
	return n.id
}

// Type returns the node type.
func (n *Node) Type() string {
	return models.NodeTypeExpression
}

// Category returns the node category.
func (n *Node) Category() models.Category {
	return models.CategoryCondition
}

// InputPorts returns the input ports for the node.
func (n *Node) InputPorts() []models.Port {
	return protocol.ExecInputPorts()
}

// OutputPorts returns the output ports for the node.
func (n *Node) OutputPorts() []models.Port {
	return protocol.ConditionOutputPorts()
}

// DefaultData returns the configuration defaults.
func (n *Node) DefaultData() map[string]any {
	return map[string]any{}
}

// Execute renders the expression and routes by its truthiness.
func (n *Node) Execute(ctx context.Context, ectx *models.ExecutionContext, inputs map[string]any) models.ExecutionResult {
	return protocol.RunCondition(ctx, n.id, ectx, inputs, n.evaluate)
}

func (n *Node) evaluate(_ context.Context, ectx *models.ExecutionContext, inputs map[string]any) (bool, error) {
	rendered, err := template.RenderWithContext(n.expression, ectx, inputs)
	if err != nil {
		return false, err
	}

	return protocol.Truthy(rendered), nil
}

// Validate checks that the expression parses as a template.
func (n *Node) Validate() *models.ValidationReport {
	report := models.NewValidationReport()

	if err := template.Check(n.expression); err != nil {
		report.AddError(err.Error())
	}

	return report
}
