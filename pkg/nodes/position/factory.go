package position

import (
	"context"
	"log/slog"

	"github.com/jalleo/nodion/pkg/models"
	"github.com/jalleo/nodion/pkg/protocol"
	"github.com/jalleo/nodion/pkg/trading"
)

// Factory creates position trigger nodes bound to a feed.
type Factory struct {
	feed   trading.PositionFeed
	logger *slog.Logger
}

// NewFactory creates a position trigger factory reading from the given feed.
func NewFactory(feed trading.PositionFeed, logger *slog.Logger) protocol.NodeFactory {
	return &Factory{feed: feed, logger: logger}
}

// Create builds a position trigger node from configuration data.
func (f *Factory) Create(_ context.Context, id string, data map[string]any) (protocol.Node, error) {
	return NewNode(id, data, f.feed, f.logger)
}

// ID returns the node type handled by this factory.
func (f *Factory) ID() string {
	return models.NodeTypePositionTrigger
}

// Category returns the node category.
func (f *Factory) Category() models.Category {
	return models.CategoryTrigger
}

// Name returns a human readable name.
func (f *Factory) Name() string {
	return "Position Update"
}

// Description explains what the node does.
func (f *Factory) Description() string {
	return "Fires an execution for every update on the position feed, optionally filtered by symbol"
}

// Schema returns the JSON schema for the node configuration.
func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"$schema":     "http://json-schema.org/draft-07/schema#",
		"title":       "Position Trigger Configuration",
		"description": "Configuration for firing on position feed updates",
		"type":        "object",
		"properties": map[string]any{
			"symbol": map[string]any{
				"type":        "string",
				"description": "Only fire for updates of this symbol; empty matches all",
				"examples":    []string{"ETH-USD", "BTC-USD"},
			},
		},
	}
}
