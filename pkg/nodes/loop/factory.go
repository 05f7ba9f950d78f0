package loop

import (
	"context"

	"github.com/jalleo/nodion/pkg/models"
	"github.com/jalleo/nodion/pkg/protocol"
)

// Factory creates loop nodes.
type Factory struct{}

// NewFactory creates a new loop node factory.
func NewFactory() protocol.NodeFactory {
	return &Factory{}
}

// Create builds a loop node from configuration data.
func (f *Factory) Create(_ context.Context, id string, data map[string]any) (protocol.Node, error) {
	return NewNode(id, data)
}

// ID returns the node type handled by this factory.
func (f *Factory) ID() string {
	return models.NodeTypeLoop
}

// Category returns the node category.
func (f *Factory) Category() models.Category {
	return models.CategoryUtility
}

// Name returns a human readable name.
func (f *Factory) Name() string {
	return "Loop"
}

// Description explains what the node does.
func (f *Factory) Description() string {
	return "Bounds a cycle: repeats the iteration branch up to a budget, then continues through complete"
}

// Schema returns the JSON schema for the node configuration.
func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"$schema":     "http://json-schema.org/draft-07/schema#",
		"title":       "Loop Configuration",
		"description": "Configuration for bounding a graph cycle",
		"type":        "object",
		"properties": map[string]any{
			"max_iterations": map[string]any{
				"type":        "number",
				"description": "How many times the iteration branch runs per execution",
				"default":     10,
				"minimum":     1,
				"maximum":     maxBudget,
				"examples":    []int{3, 10, 100},
			},
		},
	}
}
