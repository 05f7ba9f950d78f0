// Package resttrader places orders through the trading system's REST API.
// It is the only path out of the engine that moves money, so every failure
// is surfaced to the caller rather than retried here.
package resttrader

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jalleo/nodion/pkg/trading"
)

const (
	requestTimeout = 15 * time.Second
	maxErrorBody   = 4096
)

// Trader is a trading.Trader backed by an HTTP API.
type Trader struct {
	baseURL string
	token   string
	client  *http.Client
	logger  *slog.Logger
}

// New builds a trader for the API at baseURL. The token, when set, is sent
// as a bearer credential on every request.
func New(baseURL, token string, logger *slog.Logger) (*Trader, error) {
	if baseURL == "" {
		return nil, errors.New("trader base url is required")
	}

	parsed, err := url.Parse(baseURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, fmt.Errorf("invalid trader base url %q", baseURL)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Trader{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: requestTimeout},
		logger:  logger.With("module", "resttrader"),
	}, nil
}

type sellRequest struct {
	Symbol     string  `json:"symbol"`
	Percentage float64 `json:"percentage"`
}

// SellPosition posts a market sell for a slice of the open position and
// returns the receipt the API responds with.
func (t *Trader) SellPosition(ctx context.Context, symbol string, percentage float64) (*trading.TradeReceipt, error) {
	if symbol == "" {
		return nil, errors.New("symbol is required")
	}

	if percentage <= 0 || percentage > 100 {
		return nil, fmt.Errorf("percentage must be in (0, 100], got %v", percentage)
	}

	body, err := json.Marshal(sellRequest{Symbol: symbol, Percentage: percentage})
	if err != nil {
		return nil, fmt.Errorf("failed to encode sell request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/positions/sell", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build sell request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	if t.token != "" {
		req.Header.Set("Authorization", "Bearer "+t.token)
	}

	t.logger.InfoContext(ctx, "Placing sell order", "symbol", symbol, "percentage", percentage)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sell request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

		return nil, fmt.Errorf("trader returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var receipt trading.TradeReceipt
	if err := json.NewDecoder(resp.Body).Decode(&receipt); err != nil {
		return nil, fmt.Errorf("failed to decode trade receipt: %w", err)
	}

	if receipt.ExecutedAt.IsZero() {
		receipt.ExecutedAt = time.Now().UTC()
	}

	t.logger.InfoContext(ctx, "Sell order placed",
		"symbol", symbol,
		"order_id", receipt.OrderID,
		"price", receipt.Price,
	)

	return &receipt, nil
}
