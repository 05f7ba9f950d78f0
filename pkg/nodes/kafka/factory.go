package kafka

import (
	"context"
	"log/slog"

	"github.com/jalleo/nodion/pkg/models"
	"github.com/jalleo/nodion/pkg/protocol"
)

// Factory creates Kafka trigger nodes.
type Factory struct {
	logger *slog.Logger
}

// NewFactory creates a Kafka trigger factory.
func NewFactory(logger *slog.Logger) protocol.NodeFactory {
	return &Factory{logger: logger}
}

// Create builds a Kafka trigger node from configuration data.
func (f *Factory) Create(_ context.Context, id string, data map[string]any) (protocol.Node, error) {
	return NewNode(id, data, f.logger)
}

// ID returns the node type handled by this factory.
func (f *Factory) ID() string {
	return models.NodeTypeKafkaTrigger
}

// Category returns the node category.
func (f *Factory) Category() models.Category {
	return models.CategoryTrigger
}

// Name returns a human readable name.
func (f *Factory) Name() string {
	return "Kafka Topic"
}

// Description explains what the node does.
func (f *Factory) Description() string {
	return "Fires an execution for every message consumed from a Kafka topic"
}

// Schema returns the JSON schema for the node configuration.
func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"$schema":     "http://json-schema.org/draft-07/schema#",
		"title":       "Kafka Trigger Configuration",
		"description": "Configuration for consuming a Kafka topic as a trigger source",
		"type":        "object",
		"properties": map[string]any{
			"topic": map[string]any{
				"type":        "string",
				"description": "Topic to consume",
				"minLength":   1,
				"examples":    []string{"market.signals", "position.alerts"},
			},
			"consumer_group": map[string]any{
				"type":        "string",
				"description": "Consumer group ID",
				"default":     "cg-nodion-triggers",
			},
			"brokers": map[string]any{
				"type":        "string",
				"description": "Comma-separated broker list; falls back to KAFKA_BROKERS",
				"examples":    []string{"localhost:9092", "kafka-1:9092,kafka-2:9092"},
			},
		},
		"required": []string{"topic"},
	}
}
