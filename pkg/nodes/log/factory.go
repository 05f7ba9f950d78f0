package log

import (
	"context"
	"log/slog"

	"github.com/jalleo/nodion/pkg/models"
	"github.com/jalleo/nodion/pkg/protocol"
)

// Factory creates log nodes.
type Factory struct {
	logger *slog.Logger
}

// NewFactory creates a log node factory writing through the given logger.
func NewFactory(logger *slog.Logger) protocol.NodeFactory {
	return &Factory{logger: logger}
}

// Create builds a log node from configuration data.
func (f *Factory) Create(_ context.Context, id string, data map[string]any) (protocol.Node, error) {
	return NewNode(id, data, f.logger)
}

// ID returns the node type handled by this factory.
func (f *Factory) ID() string {
	return models.NodeTypeLog
}

// Category returns the node category.
func (f *Factory) Category() models.Category {
	return models.CategoryUtility
}

// Name returns a human readable name.
func (f *Factory) Name() string {
	return "Log"
}

// Description explains what the node does.
func (f *Factory) Description() string {
	return "Logs a templated message and records it in the execution log stream"
}

// Schema returns the JSON schema for the node configuration.
func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"$schema":     "http://json-schema.org/draft-07/schema#",
		"title":       "Log Configuration",
		"description": "Configuration for logging a message during traversal",
		"type":        "object",
		"properties": map[string]any{
			"message": map[string]any{
				"type":        "string",
				"description": "Message to log; supports templates",
				"minLength":   1,
				"examples": []string{
					"position {{.payload.symbol}} at {{.payload.current_price}}",
					"execution {{.execution.id}} reached checkpoint",
				},
			},
			"level": map[string]any{
				"type":        "string",
				"description": "Log level",
				"default":     "info",
				"enum":        []string{"debug", "info", "warn", "error"},
			},
		},
		"required": []string{"message"},
	}
}
