package pricemultiple

import (
	"context"

	"github.com/jalleo/nodion/pkg/models"
	"github.com/jalleo/nodion/pkg/protocol"
)

// Factory creates price-multiple condition nodes.
type Factory struct{}

// NewFactory creates a new factory instance.
func NewFactory() protocol.NodeFactory {
	return &Factory{}
}

// Create creates a new price-multiple node instance.
func (f *Factory) Create(ctx context.Context, id string, data map[string]any) (protocol.Node, error) {
	return NewNode(id, data)
}

// ID returns the factory ID.
func (f *Factory) ID() string {
	return models.NodeTypePriceMultiple
}

// Category returns the node category.
func (f *Factory) Category() models.Category {
	return models.CategoryCondition
}

// Name returns the factory name.
func (f *Factory) Name() string {
	return "Price Multiple"
}

// Description returns the factory description.
func (f *Factory) Description() string {
	return "Checks whether the position's current price has reached a configured multiple of its entry or liquidation price"
}

// Schema returns the JSON schema for price-multiple node configuration.
func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"min_multiple": map[string]any{
				"type":             "number",
				"description":      "Minimum price multiple that makes the condition true",
				"exclusiveMinimum": 0,
				"default":           2.0,
				"examples":         []float64{1.5, 2.0, 3.0},
			},
			"base_price": map[string]any{
				"type":        "string",
				"description": "Which position price the multiple is measured against",
				"enum":        []string{BasePriceEntry, BasePriceLiquidation},
				"default":     BasePriceEntry,
			},
		},
	}
}
