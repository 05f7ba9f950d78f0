// Package sellposition provides the action node that closes all or part
// of an open position through the configured trader.
package sellposition

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jalleo/nodion/pkg/models"
	"github.com/jalleo/nodion/pkg/protocol"
	"github.com/jalleo/nodion/pkg/template"
	"github.com/jalleo/nodion/pkg/trading"
)

// Node implements the sell-position action.
type Node struct {
	id         string
	trader     trading.Trader
	symbol     string
	percentage float64
}

// NewNode creates a sell-position node backed by the given trader.
func NewNode(id string, data map[string]any, trader trading.Trader) (*Node, error) {
	if trader == nil {
		return nil, errors.New("sell-position node requires a trader")
	}

	merged, err := protocol.MergeDefaults(data, defaultData())
	if err != nil {
		return nil, err
	}

	percentage, ok := floatValue(merged["percentage"])
	if !ok {
		return nil, fmt.Errorf("percentage must be a number, got %T", merged["percentage"])
	}

	if percentage <= 0 || percentage > 100 {
		return nil, fmt.Errorf("percentage must be in (0, 100], got %v", percentage)
	}

	symbol, _ := merged["symbol"].(string)

	return &Node{
		id:         id,
		trader:     trader,
		symbol:     symbol,
		percentage: percentage,
	}, nil
}

func defaultData() map[string]any {
	return map[string]any{
		"symbol":     "",
		"percentage": 100.0,
	}
}

// ID returns the node ID.
func (n *Node) ID() string {
	return n.id
}

// Type returns the node type.
func (n *Node) Type() string {
	return models.NodeTypeSellPosition
}

// Category returns the node category.
func (n *Node) Category() models.Category {
	return models.CategoryAction
}

// InputPorts returns the input ports for the node.
func (n *Node) InputPorts() []models.Port {
	return protocol.ExecInputPorts()
}

// OutputPorts returns the output ports for the node.
func (n *Node) OutputPorts() []models.Port {
	return protocol.ActionOutputPorts()
}

// DefaultData returns the configuration defaults.
func (n *Node) DefaultData() map[string]any {
	return defaultData()
}

// Execute places the sell order. Trader failures route through the error
// port instead of failing the execution.
func (n *Node) Execute(ctx context.Context, ectx *models.ExecutionContext, inputs map[string]any) models.ExecutionResult {
	return protocol.RunAction(ctx, n.id, ectx, inputs, n.sell)
}

func (n *Node) sell(ctx context.Context, ectx *models.ExecutionContext, inputs map[string]any) (any, error) {
	symbol, err := n.resolveSymbol(ectx, inputs)
	if err != nil {
		return nil, err
	}

	receipt, err := n.trader.SellPosition(ctx, symbol, n.percentage)
	if err != nil {
		return nil, fmt.Errorf("sell %s failed: %w", symbol, err)
	}

	return map[string]any{
		"order_id":    receipt.OrderID,
		"symbol":      receipt.Symbol,
		"percentage":  receipt.Percentage,
		"price":       receipt.Price,
		"executed_at": receipt.ExecutedAt,
	}, nil
}

// resolveSymbol renders the configured symbol template, falling back to the
// trigger payload's position symbol when none is configured.
func (n *Node) resolveSymbol(ectx *models.ExecutionContext, inputs map[string]any) (string, error) {
	if n.symbol != "" {
		rendered, err := template.RenderWithContext(n.symbol, ectx, inputs)
		if err != nil {
			return "", fmt.Errorf("failed to render symbol: %w", err)
		}

		symbol, ok := rendered.(string)
		if !ok || strings.TrimSpace(symbol) == "" {
			return "", fmt.Errorf("symbol rendered to %v, expected a non-empty string", rendered)
		}

		return symbol, nil
	}

	if symbol, ok := ectx.Payload["symbol"].(string); ok && symbol != "" {
		return symbol, nil
	}

	return "", errors.New("no symbol configured and none found in the trigger payload")
}

// Validate checks the node configuration.
func (n *Node) Validate() *models.ValidationReport {
	report := models.NewValidationReport()

	if n.symbol == "" {
		report.AddWarning("no symbol configured; the trigger payload must carry one")
	} else if err := template.Check(n.symbol); err != nil {
		report.AddError(err.Error())
	}

	if n.percentage < 100 {
		report.AddWarning(fmt.Sprintf("partial close of %v%% leaves the position open", n.percentage))
	}

	return report
}

func floatValue(v any) (float64, bool) {
	switch value := v.(type) {
	case float64:
		return value, true
	case float32:
		return float64(value), true
	case int:
		return float64(value), true
	case int64:
		return float64(value), true
	default:
		return 0, false
	}
}
