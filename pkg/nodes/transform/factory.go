package transform

import (
	"context"

	"github.com/jalleo/nodion/pkg/models"
	"github.com/jalleo/nodion/pkg/protocol"
)

// Factory creates transform nodes.
type Factory struct{}

// NewFactory creates a new transform node factory.
func NewFactory() protocol.NodeFactory {
	return &Factory{}
}

// Create builds a transform node from configuration data.
func (f *Factory) Create(_ context.Context, id string, data map[string]any) (protocol.Node, error) {
	return NewNode(id, data)
}

// ID returns the node type handled by this factory.
func (f *Factory) ID() string {
	return models.NodeTypeTransform
}

// Category returns the node category.
func (f *Factory) Category() models.Category {
	return models.CategoryUtility
}

// Name returns a human readable name.
func (f *Factory) Name() string {
	return "Transform"
}

// Description explains what the node does.
func (f *Factory) Description() string {
	return "Reshapes execution data with a template expression"
}

// Schema returns the JSON schema for the node configuration.
func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"$schema":     "http://json-schema.org/draft-07/schema#",
		"title":       "Transform Configuration",
		"description": "Configuration for reshaping data with a template",
		"type":        "object",
		"properties": map[string]any{
			"expression": map[string]any{
				"type":        "string",
				"description": "Template producing the transformed value; JSON output becomes structured data",
				"minLength":   1,
				"examples": []string{
					`{"symbol": "{{.payload.symbol}}", "alert": true}`,
					"{{.payload.current_price}}",
				},
			},
		},
		"required": []string{"expression"},
	}
}
