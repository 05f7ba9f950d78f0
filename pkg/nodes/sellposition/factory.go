package sellposition

import (
	"context"

	"github.com/jalleo/nodion/pkg/models"
	"github.com/jalleo/nodion/pkg/protocol"
	"github.com/jalleo/nodion/pkg/trading"
)

// Factory creates sell-position nodes bound to a trader.
type Factory struct {
	trader trading.Trader
}

// NewFactory creates a sell-position factory using the given trader.
func NewFactory(trader trading.Trader) protocol.NodeFactory {
	return &Factory{trader: trader}
}

// Create builds a sell-position node from configuration data.
func (f *Factory) Create(_ context.Context, id string, data map[string]any) (protocol.Node, error) {
	return NewNode(id, data, f.trader)
}

// ID returns the node type handled by this factory.
func (f *Factory) ID() string {
	return models.NodeTypeSellPosition
}

// Category returns the node category.
func (f *Factory) Category() models.Category {
	return models.CategoryAction
}

// Name returns a human readable name.
func (f *Factory) Name() string {
	return "Sell Position"
}

// Description explains what the node does.
func (f *Factory) Description() string {
	return "Closes all or part of an open position at market through the configured trader"
}

// Schema returns the JSON schema for the node configuration.
func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"$schema":     "http://json-schema.org/draft-07/schema#",
		"title":       "Sell Position Configuration",
		"description": "Configuration for closing an open position",
		"type":        "object",
		"properties": map[string]any{
			"symbol": map[string]any{
				"type":        "string",
				"description": "Symbol to sell; supports templates. Defaults to the symbol in the trigger payload",
				"examples": []string{
					"ETH-USD",
					"{{.payload.symbol}}",
				},
			},
			"percentage": map[string]any{
				"type":             "number",
				"description":      "Share of the position to close, in percent",
				"exclusiveMinimum": 0,
				"maximum":          100,
				"default":          100,
				"examples":         []float64{100, 50, 25},
			},
		},
	}
}
