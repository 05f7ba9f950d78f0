package delay

import (
	"context"

	"github.com/jalleo/nodion/pkg/models"
	"github.com/jalleo/nodion/pkg/protocol"
)

// Factory creates delay nodes.
type Factory struct{}

// NewFactory creates a new delay node factory.
func NewFactory() protocol.NodeFactory {
	return &Factory{}
}

// Create builds a delay node from configuration data.
func (f *Factory) Create(_ context.Context, id string, data map[string]any) (protocol.Node, error) {
	return NewNode(id, data)
}

// ID returns the node type handled by this factory.
func (f *Factory) ID() string {
	return models.NodeTypeDelay
}

// Category returns the node category.
func (f *Factory) Category() models.Category {
	return models.CategoryUtility
}

// Name returns a human readable name.
func (f *Factory) Name() string {
	return "Delay"
}

// Description explains what the node does.
func (f *Factory) Description() string {
	return "Pauses the traversal for a fixed duration"
}

// Schema returns the JSON schema for the node configuration.
func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"$schema":     "http://json-schema.org/draft-07/schema#",
		"title":       "Delay Configuration",
		"description": "Configuration for pausing the traversal",
		"type":        "object",
		"properties": map[string]any{
			"duration": map[string]any{
				"description": "How long to wait: a number of seconds or a duration string",
				"default":     1,
				"oneOf": []map[string]any{
					{"type": "number", "exclusiveMinimum": 0},
					{"type": "string", "pattern": `^[0-9]+(\.[0-9]+)?(ns|us|µs|ms|s|m|h)$`},
				},
				"examples": []any{1, 0.5, "250ms", "2s"},
			},
		},
	}
}
