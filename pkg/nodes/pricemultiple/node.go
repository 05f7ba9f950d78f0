// Package pricemultiple provides the price-multiple condition node: it
// holds when the position's current price reaches a configured multiple of
// its base price.
package pricemultiple

import (
	"context"
	"fmt"

	"github.com/jalleo/nodion/pkg/models"
	"github.com/jalleo/nodion/pkg/protocol"
	"github.com/jalleo/nodion/pkg/trading"
)

const (
	BasePriceEntry       = "entry"
	BasePriceLiquidation = "liquidation"
)

// Node implements the price-multiple condition.
type Node struct {
	id          string
	data        map[string]any
	minMultiple float64
	basePrice   string
}

// NewNode creates a price-multiple condition node. Data keys not set fall
// back to the type defaults (2.0x over the entry price).
func NewNode(id string, data map[string]any) (*Node, error) {
	merged, err := protocol.MergeDefaults(data, defaultData())
	if err != nil {
		return nil, err
	}

	minMultiple, ok := floatValue(merged["min_multiple"])
	if !ok || minMultiple <= 0 {
		return nil, fmt.Errorf("'min_multiple' must be a positive number, got %v", merged["min_multiple"])
	}

	basePrice, _ := merged["base_price"].(string)
	if basePrice != BasePriceEntry && basePrice != BasePriceLiquidation {
		return nil, fmt.Errorf("'base_price' must be %q or %q, got %v", BasePriceEntry, BasePriceLiquidation, merged["base_price"])
	}

	return &Node{
		id:          id,
		data:        merged,
		minMultiple: minMultiple,
		basePrice:   basePrice,
	}, nil
}

func defaultData() map[string]any {
	return map[string]any{
		"min_multiple": 2.0,
		"base_price":   BasePriceEntry,
	}
}

// ID returns the node ID.
func (n *Node) ID() string {
	return n.id
}

// Type returns the node type.
func (n *Node) Type() string {
	return models.NodeTypePriceMultiple
}

// Category returns the node category.
func (n *Node) Category() models.Category {
	return models.CategoryCondition
}

// InputPorts returns the input ports for the node.
func (n *Node) InputPorts() []models.Port {
	return protocol.ExecInputPorts()
}

// OutputPorts returns the output ports for the node.
func (n *Node) OutputPorts() []models.Port {
	return protocol.ConditionOutputPorts()
}

// DefaultData returns the configuration defaults.
func (n *Node) DefaultData() map[string]any {
	return defaultData()
}

// Execute evaluates the price multiple against the execution's position
// payload and routes to the true or false port.
func (n *Node) Execute(ctx context.Context, ectx *models.ExecutionContext, inputs map[string]any) models.ExecutionResult {
	return protocol.RunCondition(ctx, n.id, ectx, inputs, n.evaluate)
}

func (n *Node) evaluate(_ context.Context, ectx *models.ExecutionContext, _ map[string]any) (bool, error) {
	if ectx == nil || len(ectx.Payload) == 0 {
		return false, fmt.Errorf("no position payload on execution %s", executionID(ectx))
	}

	pos := trading.PositionFromPayload(ectx.Payload)

	base := pos.EntryPrice
	if n.basePrice == BasePriceLiquidation {
		base = pos.LiquidationPrice
	}

	if base <= 0 {
		return false, fmt.Errorf("position %s has no %s price", pos.Symbol, n.basePrice)
	}

	if pos.CurrentPrice <= 0 {
		return false, fmt.Errorf("position %s has no current price", pos.Symbol)
	}

	return pos.CurrentPrice/base >= n.minMultiple, nil
}

// Validate checks the node configuration.
func (n *Node) Validate() *models.ValidationReport {
	report := models.NewValidationReport()

	if n.minMultiple <= 1.0 {
		report.AddWarning(fmt.Sprintf("min_multiple %v fires at or below the base price", n.minMultiple))
	}

	return report
}

func executionID(ectx *models.ExecutionContext) string {
	if ectx == nil {
		return "<nil>"
	}

	return ectx.ExecutionID
}

func floatValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
