package schedule

import (
	"context"
	"log/slog"

	"github.com/jalleo/nodion/pkg/models"
	"github.com/jalleo/nodion/pkg/protocol"
)

// Factory creates schedule trigger nodes.
type Factory struct {
	logger *slog.Logger
}

// NewFactory creates a schedule trigger factory.
func NewFactory(logger *slog.Logger) protocol.NodeFactory {
	return &Factory{logger: logger}
}

// Create builds a schedule trigger node from configuration data.
func (f *Factory) Create(_ context.Context, id string, data map[string]any) (protocol.Node, error) {
	return NewNode(id, data, f.logger)
}

// ID returns the node type handled by this factory.
func (f *Factory) ID() string {
	return models.NodeTypeScheduleTrigger
}

// Category returns the node category.
func (f *Factory) Category() models.Category {
	return models.CategoryTrigger
}

// Name returns a human readable name.
func (f *Factory) Name() string {
	return "Schedule (Cron)"
}

// Description explains what the node does.
func (f *Factory) Description() string {
	return "Fires an execution on a cron schedule"
}

// Schema returns the JSON schema for the node configuration.
func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"$schema":     "http://json-schema.org/draft-07/schema#",
		"title":       "Schedule Trigger Configuration",
		"description": "Configuration for cron-based scheduling",
		"type":        "object",
		"properties": map[string]any{
			"cron": map[string]any{
				"type":        "string",
				"description": "Standard 5-field cron expression",
				"examples":    []string{"*/5 * * * *", "0 9 * * 1-5", "@hourly"},
			},
		},
		"required": []string{"cron"},
	}
}
