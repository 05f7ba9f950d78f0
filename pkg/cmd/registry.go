package cmd

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jalleo/nodion/pkg/registry"
	"github.com/jalleo/nodion/pkg/trading"
	"github.com/jalleo/nodion/pkg/trading/redisfeed"
	"github.com/jalleo/nodion/pkg/trading/resttrader"
)

// CollaboratorConfig names the trading-system endpoints the nodes talk to.
// Empty fields leave the matching collaborator unconfigured; nodes that
// need it report that instead of silently doing nothing.
type CollaboratorConfig struct {
	RedisURL         string
	PositionsChannel string
	TraderURL        string
	TraderToken      string
}

// Collaborators bundles the trading-system connections behind the node
// dependency interfaces.
type Collaborators struct {
	Feed   trading.PositionFeed
	Trader trading.Trader

	feedCloser interface{ Close() error }
}

// NewCollaborators connects to the configured trading endpoints.
func NewCollaborators(ctx context.Context, logger *slog.Logger, cfg CollaboratorConfig) (*Collaborators, error) {
	collab := &Collaborators{
		Feed:   unconfiguredFeed{},
		Trader: unconfiguredTrader{},
	}

	if cfg.RedisURL != "" {
		feed, err := redisfeed.New(ctx, cfg.RedisURL, cfg.PositionsChannel, logger)
		if err != nil {
			return nil, err
		}

		collab.Feed = feed
		collab.feedCloser = feed
	}

	if cfg.TraderURL != "" {
		trader, err := resttrader.New(cfg.TraderURL, cfg.TraderToken, logger)
		if err != nil {
			return nil, err
		}

		collab.Trader = trader
	}

	return collab, nil
}

// Close tears down the live connections.
func (c *Collaborators) Close() error {
	if c.feedCloser != nil {
		return c.feedCloser.Close()
	}

	return nil
}

// NewRegistry builds the node registry with every built-in node type
// registered against the given collaborators.
func NewRegistry(logger *slog.Logger, collab *Collaborators) *registry.Registry {
	reg := registry.NewRegistry(logger)
	reg.RegisterDefaultNodes(registry.Deps{
		Logger: logger,
		Feed:   collab.Feed,
		Trader: collab.Trader,
	})

	return reg
}

type unconfiguredFeed struct{}

func (unconfiguredFeed) Subscribe(context.Context) (<-chan trading.PositionUpdate, trading.UnsubscribeFunc, error) {
	return nil, nil, errors.New("position feed is not configured (set --redis-url)")
}

type unconfiguredTrader struct{}

func (unconfiguredTrader) SellPosition(context.Context, string, float64) (*trading.TradeReceipt, error) {
	return nil, errors.New("trader is not configured (set --trader-url)")
}
