package expression

import (
	"context"

	"github.com/jalleo/nodion/pkg/models"
	"github.com/jalleo/nodion/pkg/protocol"
)

// Factory creates expression condition nodes.
type Factory struct{}

// NewFactory creates a new expression node factory.
func NewFactory() protocol.NodeFactory {
	return &Factory{}
}

// Create builds an expression node from configuration data.
func (f *Factory) Create(_ context.Context, id string, data map[string]any) (protocol.Node, error) {
	return NewNode(id, data)
}

// ID returns the node type handled by this factory.
func (f *Factory) ID() string {
	return models.NodeTypeExpression
}

// Category returns the node category.
func (f *Factory) Category() models.Category {
	return models.CategoryCondition
}

// Name returns a human readable name.
func (f *Factory) Name() string {
	return "Expression"
}

// Description explains what the node does.
func (f *Factory) Description() string {
	return "Evaluates a template expression against execution state and routes by its truthiness"
}

// Schema returns the JSON schema for the node configuration.
func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"$schema":     "http://json-schema.org/draft-07/schema#",
		"title":       "Expression Condition Configuration",
		"description": "Configuration for evaluating a template expression as a condition",
		"type":        "object",
		"properties": map[string]any{
			"expression": map[string]any{
				"type":        "string",
				"description": "Template expression rendered against variables, payload and node inputs; the result is tested for truthiness",
				"minLength":   1,
				"examples": []string{
					"{{.payload.price}}",
					"{{gt (index .variables \"threshold\") 10.0}}",
					"{{.inputs.in}}",
				},
			},
		},
		"required": []string{"expression"},
	}
}
