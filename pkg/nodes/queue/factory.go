package queue

import (
	"context"
	"log/slog"

	"github.com/jalleo/nodion/pkg/models"
	"github.com/jalleo/nodion/pkg/protocol"
)

// Factory creates queue trigger nodes.
type Factory struct {
	logger *slog.Logger
}

// NewFactory creates a queue trigger factory.
func NewFactory(logger *slog.Logger) protocol.NodeFactory {
	return &Factory{logger: logger}
}

// Create builds a queue trigger node from configuration data.
func (f *Factory) Create(_ context.Context, id string, data map[string]any) (protocol.Node, error) {
	return NewNode(id, data, f.logger)
}

// ID returns the node type handled by this factory.
func (f *Factory) ID() string {
	return models.NodeTypeQueueTrigger
}

// Category returns the node category.
func (f *Factory) Category() models.Category {
	return models.CategoryTrigger
}

// Name returns a human readable name.
func (f *Factory) Name() string {
	return "Queue (Redis)"
}

// Description explains what the node does.
func (f *Factory) Description() string {
	return "Fires an execution for every message popped from a Redis list"
}

// Schema returns the JSON schema for the node configuration.
func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"$schema":     "http://json-schema.org/draft-07/schema#",
		"title":       "Queue Trigger Configuration",
		"description": "Configuration for consuming a Redis list as a trigger source",
		"type":        "object",
		"properties": map[string]any{
			"queue": map[string]any{
				"type":        "string",
				"description": "Redis list key to consume",
				"minLength":   1,
				"examples":    []string{"nodion:signals", "alerts"},
			},
			"connection": map[string]any{
				"type":        "object",
				"description": "Redis connection settings",
				"properties": map[string]any{
					"addr":     map[string]any{"type": "string", "description": "Redis address", "default": "localhost:6379"},
					"password": map[string]any{"type": "string", "description": "Redis password"},
					"db":       map[string]any{"type": "string", "description": "Redis database number"},
				},
			},
		},
		"required": []string{"queue"},
	}
}
