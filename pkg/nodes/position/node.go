// Package position provides the position trigger node. It arms a
// subscription on the position feed and fires an execution for every
// update that passes its filters.
package position

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jalleo/nodion/pkg/models"
	"github.com/jalleo/nodion/pkg/protocol"
	"github.com/jalleo/nodion/pkg/trading"
)

// Node implements the position trigger.
type Node struct {
	id     string
	symbol string
	feed   trading.PositionFeed
	logger *slog.Logger

	unsubscribe trading.UnsubscribeFunc
	stopCh      chan struct{}
	wg          sync.WaitGroup
}

// NewNode creates a position trigger node reading from the given feed.
func NewNode(id string, data map[string]any, feed trading.PositionFeed, logger *slog.Logger) (*Node, error) {
	if feed == nil {
		return nil, errors.New("position trigger requires a position feed")
	}

	if logger == nil {
		logger = slog.Default()
	}

	symbol, _ := data["symbol"].(string)

	return &Node{
		id:     id,
		symbol: symbol,
		feed:   feed,
		logger: logger.With(
			"module", "position_trigger",
			"node_id", id,
			"symbol", symbol,
		),
	}, nil
}

// ID returns the node ID.
func (n *Node) ID() string {
	return n.id
}

// Type returns the node type.
func (n *Node) Type() string {
	return models.NodeTypePositionTrigger
}

// Category returns the node category.
func (n *Node) Category() models.Category {
	return models.CategoryTrigger
}

// InputPorts returns the input ports for the node.
func (n *Node) InputPorts() []models.Port {
	return nil
}

// OutputPorts returns the output ports for the node.
func (n *Node) OutputPorts() []models.Port {
	return protocol.TriggerOutputPorts()
}

// DefaultData returns the configuration defaults.
func (n *Node) DefaultData() map[string]any {
	return map[string]any{"symbol": ""}
}

// Execute emits the captured position payload when a traversal enters the
// trigger.
func (n *Node) Execute(_ context.Context, ectx *models.ExecutionContext, _ map[string]any) models.ExecutionResult {
	return protocol.Succeed(protocol.TriggerOutputs(ectx))
}

// StartListening subscribes to the position feed and fires once per
// matching update.
func (n *Node) StartListening(ctx context.Context, fire protocol.FireFunc) error {
	n.logger.InfoContext(ctx, "Starting position trigger")

	updates, unsubscribe, err := n.feed.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("failed to subscribe to position feed: %w", err)
	}

	n.unsubscribe = unsubscribe
	n.stopCh = make(chan struct{})

	n.wg.Add(1)

	go n.consume(ctx, updates, fire)

	return nil
}

func (n *Node) consume(ctx context.Context, updates <-chan trading.PositionUpdate, fire protocol.FireFunc) {
	defer n.wg.Done()

	for {
		select {
		case <-n.stopCh:
			n.logger.InfoContext(ctx, "Position trigger stopped")

			return
		case <-ctx.Done():
			n.logger.InfoContext(ctx, "Context cancelled, stopping position trigger")

			return
		case update, ok := <-updates:
			if !ok {
				n.logger.WarnContext(ctx, "Position feed closed")

				return
			}

			if n.symbol != "" && update.Position.Symbol != n.symbol {
				continue
			}

			payload := update.Position.ToPayload()
			payload["reason"] = update.Reason

			at := update.At
			if at.IsZero() {
				at = time.Now().UTC()
			}

			payload["timestamp"] = at.UTC().Format(time.RFC3339)

			go func() {
				if err := fire(ctx, payload); err != nil {
					n.logger.ErrorContext(ctx, "Error executing workflow for position update", "error", err)
				}
			}()
		}
	}
}

// StopListening tears down the feed subscription.
func (n *Node) StopListening(ctx context.Context) error {
	n.logger.InfoContext(ctx, "Stopping position trigger")

	if n.stopCh != nil {
		close(n.stopCh)
		n.wg.Wait()
	}

	if n.unsubscribe != nil {
		n.unsubscribe()
	}

	return nil
}

// Validate checks the node configuration.
func (n *Node) Validate() *models.ValidationReport {
	report := models.NewValidationReport()

	if n.symbol == "" {
		report.AddWarning("no symbol filter; every position update fires an execution")
	}

	return report
}
