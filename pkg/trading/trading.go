// Package trading defines the contracts nodion expects from the trading
// system it automates. The engine never trades on its own; position data and
// order placement are both behind these interfaces. The redisfeed and
// resttrader subpackages bridge them to the trading system's transport.
package trading

import (
	"context"
	"time"
)

// Position is a point-in-time snapshot of an open position.
type Position struct {
	Symbol           string  `json:"symbol"`
	Side             string  `json:"side"`
	Size             float64 `json:"size"`
	Leverage         float64 `json:"leverage"`
	EntryPrice       float64 `json:"entry_price"`
	CurrentPrice     float64 `json:"current_price"`
	LiquidationPrice float64 `json:"liquidation_price"`
	UnrealizedPnL    float64 `json:"unrealized_pnl"`
}

// ToPayload converts the snapshot into the opaque map shape node payloads
// use.
func (p Position) ToPayload() map[string]any {
	return map[string]any{
		"symbol":            p.Symbol,
		"side":              p.Side,
		"size":              p.Size,
		"leverage":          p.Leverage,
		"entry_price":       p.EntryPrice,
		"current_price":     p.CurrentPrice,
		"liquidation_price": p.LiquidationPrice,
		"unrealized_pnl":    p.UnrealizedPnL,
	}
}

// PositionFromPayload reads a snapshot back out of a payload map. Missing
// fields stay zero; numeric fields accept the float64/int shapes JSON
// decoding produces.
func PositionFromPayload(payload map[string]any) Position {
	return Position{
		Symbol:           stringValue(payload["symbol"]),
		Side:             stringValue(payload["side"]),
		Size:             floatValue(payload["size"]),
		Leverage:         floatValue(payload["leverage"]),
		EntryPrice:       floatValue(payload["entry_price"]),
		CurrentPrice:     floatValue(payload["current_price"]),
		LiquidationPrice: floatValue(payload["liquidation_price"]),
		UnrealizedPnL:    floatValue(payload["unrealized_pnl"]),
	}
}

// PositionUpdate is one event on a position feed.
type PositionUpdate struct {
	Position Position  `json:"position"`
	Reason   string    `json:"reason"` // "price", "fill", "funding", ...
	At       time.Time `json:"at"`
}

// UnsubscribeFunc tears down a feed subscription. Idempotent.
type UnsubscribeFunc func()

// PositionFeed streams position updates. The channel closes when the
// subscription ends, whether by Unsubscribe or by feed shutdown.
type PositionFeed interface {
	Subscribe(ctx context.Context) (<-chan PositionUpdate, UnsubscribeFunc, error)
}

// TradeReceipt confirms an order the trader placed.
type TradeReceipt struct {
	OrderID    string    `json:"order_id"`
	Symbol     string    `json:"symbol"`
	Percentage float64   `json:"percentage"`
	Price      float64   `json:"price"`
	ExecutedAt time.Time `json:"executed_at"`
}

// Trader places orders against the exchange.
type Trader interface {
	// SellPosition sells the given percentage (0 < pct <= 100) of the open
	// position on symbol at market.
	SellPosition(ctx context.Context, symbol string, percentage float64) (*TradeReceipt, error)
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

func floatValue(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}
