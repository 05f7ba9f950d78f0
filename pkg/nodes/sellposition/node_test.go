package sellposition

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jalleo/nodion/pkg/models"
	"github.com/jalleo/nodion/pkg/protocol"
	"github.com/jalleo/nodion/pkg/trading"
)

type fakeTrader struct {
	err        error
	symbol     string
	percentage float64
	calls      int
}

func (f *fakeTrader) SellPosition(_ context.Context, symbol string, percentage float64) (*trading.TradeReceipt, error) {
	f.calls++
	f.symbol = symbol
	f.percentage = percentage

	if f.err != nil {
		return nil, f.err
	}

	return &trading.TradeReceipt{
		OrderID:    "order-42",
		Symbol:     symbol,
		Percentage: percentage,
		Price:      1850.5,
		ExecutedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}, nil
}

func TestNode_Execute_SellsPayloadSymbol(t *testing.T) {
	trader := &fakeTrader{}

	node, err := NewNode("sell-1", nil, trader)
	if err != nil {
		t.Fatalf("Failed to create node: %v", err)
	}

	ectx := &models.ExecutionContext{
		ExecutionID: "exec-test",
		Payload:     map[string]any{"symbol": "ETH-USD"},
	}

	result := node.Execute(context.Background(), ectx, nil)

	if !result.Success {
		t.Fatalf("Expected success, got error: %s", result.Error)
	}

	if v, ok := result.Outputs[protocol.OutputPortSuccess]; !ok || v != true {
		t.Fatalf("Expected success port to fire, got outputs: %v", result.Outputs)
	}

	if trader.symbol != "ETH-USD" || trader.percentage != 100.0 {
		t.Errorf("Expected full close of ETH-USD, got %s %v%%", trader.symbol, trader.percentage)
	}

	receipt, ok := result.Outputs[protocol.OutputPortResult].(map[string]any)
	if !ok {
		t.Fatalf("Expected receipt map on result port, got %T", result.Outputs[protocol.OutputPortResult])
	}

	if receipt["order_id"] != "order-42" {
		t.Errorf("Expected order id in receipt, got %v", receipt)
	}
}

func TestNode_Execute_RendersSymbolTemplate(t *testing.T) {
	trader := &fakeTrader{}

	node, err := NewNode("sell-1", map[string]any{
		"symbol":     "{{.variables.target}}",
		"percentage": 50.0,
	}, trader)
	if err != nil {
		t.Fatalf("Failed to create node: %v", err)
	}

	ectx := &models.ExecutionContext{
		ExecutionID: "exec-test",
		Variables:   map[string]any{"target": "BTC-USD"},
	}

	result := node.Execute(context.Background(), ectx, nil)

	if !result.Success {
		t.Fatalf("Expected success, got error: %s", result.Error)
	}

	if trader.symbol != "BTC-USD" || trader.percentage != 50.0 {
		t.Errorf("Expected half close of BTC-USD, got %s %v%%", trader.symbol, trader.percentage)
	}
}

func TestNode_Execute_TraderErrorRoutesThroughErrorPort(t *testing.T) {
	trader := &fakeTrader{err: errors.New("exchange rejected order")}

	node, err := NewNode("sell-1", map[string]any{"symbol": "ETH-USD"}, trader)
	if err != nil {
		t.Fatalf("Failed to create node: %v", err)
	}

	result := node.Execute(context.Background(), &models.ExecutionContext{ExecutionID: "exec-test"}, nil)

	// Action failures are absorbed: the node result stays successful and
	// downstream routing happens through the error port.
	if !result.Success {
		t.Fatalf("Trader failure must not fail the node, got error: %s", result.Error)
	}

	if v, ok := result.Outputs[protocol.OutputPortError]; !ok || v != true {
		t.Errorf("Expected error port to fire, got outputs: %v", result.Outputs)
	}

	msg, _ := result.Outputs[protocol.OutputPortErrorMessage].(string)
	if msg == "" {
		t.Error("Expected an error message output")
	}

	if _, ok := result.Outputs[protocol.OutputPortSuccess]; ok {
		t.Error("Success port must not fire on trader failure")
	}
}

func TestNode_Execute_MissingSymbolRoutesThroughErrorPort(t *testing.T) {
	trader := &fakeTrader{}

	node, err := NewNode("sell-1", nil, trader)
	if err != nil {
		t.Fatalf("Failed to create node: %v", err)
	}

	result := node.Execute(context.Background(), &models.ExecutionContext{ExecutionID: "exec-test"}, nil)

	if !result.Success {
		t.Fatalf("Expected absorbed failure, got error: %s", result.Error)
	}

	if _, ok := result.Outputs[protocol.OutputPortError]; !ok {
		t.Errorf("Expected error port when no symbol is available, got %v", result.Outputs)
	}

	if trader.calls != 0 {
		t.Errorf("Trader must not be called without a symbol, got %d calls", trader.calls)
	}
}

func TestNewNode_RejectsBadConfig(t *testing.T) {
	trader := &fakeTrader{}

	tests := []struct {
		name string
		data map[string]any
	}{
		{name: "zero percentage", data: map[string]any{"percentage": 0.0}},
		{name: "negative percentage", data: map[string]any{"percentage": -10.0}},
		{name: "over 100", data: map[string]any{"percentage": 150.0}},
		{name: "non-numeric percentage", data: map[string]any{"percentage": "half"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewNode("sell-1", tt.data, trader); err == nil {
				t.Errorf("Expected constructor error for %v", tt.data)
			}
		})
	}

	if _, err := NewNode("sell-1", nil, nil); err == nil {
		t.Error("Expected constructor error for nil trader")
	}
}
