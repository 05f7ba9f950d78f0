// Package queue provides the Redis queue trigger node. It consumes list
// entries and fires an execution per message.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/jalleo/nodion/pkg/models"
	"github.com/jalleo/nodion/pkg/protocol"
)

const (
	popTimeout     = 1 * time.Second
	connectTimeout = 5 * time.Second
	errorBackoff   = 1 * time.Second
)

// Node implements the queue trigger.
type Node struct {
	id         string
	queue      string
	connection map[string]string
	logger     *slog.Logger

	client redis.UniversalClient
	fire   protocol.FireFunc
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewNode creates a queue trigger node.
func NewNode(id string, data map[string]any, logger *slog.Logger) (*Node, error) {
	queue, ok := data["queue"].(string)
	if !ok || queue == "" {
		return nil, errors.New("missing required field 'queue'")
	}

	connection := make(map[string]string)
	if connectionConfig, ok := data["connection"].(map[string]any); ok {
		for k, v := range connectionConfig {
			if str, ok := v.(string); ok {
				connection[k] = str
			}
		}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Node{
		id:         id,
		queue:      queue,
		connection: connection,
		logger: logger.With(
			"module", "queue_trigger",
			"node_id", id,
			"queue", queue,
		),
	}, nil
}

// ID returns the node ID.
func (n *Node) ID() string {
	return n.id
}

// Type returns the node type.
func (n *Node) Type() string {
	return models.NodeTypeQueueTrigger
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
	return map[string]any{"connection": map[string]any{}}
}

// Execute emits the captured message payload when a traversal enters the
// trigger.
func (n *Node) Execute(_ context.Context, ectx *models.ExecutionContext, _ map[string]any) models.ExecutionResult {
	return protocol.Succeed(protocol.TriggerOutputs(ectx))
}

// StartListening connects to Redis and consumes the queue.
func (n *Node) StartListening(ctx context.Context, fire protocol.FireFunc) error {
	n.logger.InfoContext(ctx, "Starting queue trigger")
	n.fire = fire

	if err := n.initializeClient(ctx); err != nil {
		return fmt.Errorf("failed to initialize queue client: %w", err)
	}

	n.stopCh = make(chan struct{})

	n.wg.Add(1)

	go n.consume(ctx)

	return nil
}

func (n *Node) initializeClient(ctx context.Context) error {
	addr := n.connection["addr"]
	if addr == "" {
		addr = "localhost:6379"
	}

	db := 0

	if dbStr := n.connection["db"]; dbStr != "" {
		if _, err := fmt.Sscanf(dbStr, "%d", &db); err != nil {
			return fmt.Errorf("invalid db value: %w", err)
		}
	}

	n.client = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: n.connection["password"],
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := n.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	n.logger.InfoContext(ctx, "Connected to Redis", "addr", addr, "db", db)

	return nil
}

func (n *Node) consume(ctx context.Context) {
	defer n.wg.Done()

	n.logger.InfoContext(ctx, "Starting queue consumer")

	for {
		select {
		case <-n.stopCh:
			n.logger.InfoContext(ctx, "Queue consumer stopped")

			return
		case <-ctx.Done():
			n.logger.InfoContext(ctx, "Context cancelled, stopping queue consumer")

			return
		default:
			if err := n.processMessage(ctx); err != nil {
				n.logger.ErrorContext(ctx, "Error processing message", "error", err)
				time.Sleep(errorBackoff)
			}
		}
	}
}

func (n *Node) processMessage(ctx context.Context) error {
	result, err := n.client.BLPop(ctx, popTimeout, n.queue).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}

		return fmt.Errorf("failed to pop message from queue: %w", err)
	}

	if len(result) < 2 {
		return nil
	}

	message := result[1]
	n.logger.InfoContext(ctx, "Received message from queue")

	payload := decodeMessage(message)

	go func() {
		if err := n.fire(ctx, payload); err != nil {
			n.logger.ErrorContext(ctx, "Error executing workflow for queue message", "error", err)
		}
	}()

	return nil
}

// decodeMessage parses a queue entry as a JSON object, falling back to a
// raw-message wrapper, and stamps a timestamp either way.
func decodeMessage(message string) map[string]any {
	var payload map[string]any
	if err := json.Unmarshal([]byte(message), &payload); err != nil {
		return map[string]any{
			"message":   message,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		}
	}

	if payload["timestamp"] == nil {
		payload["timestamp"] = time.Now().UTC().Format(time.RFC3339)
	}

	return payload
}

// StopListening halts the consumer and closes the Redis client.
func (n *Node) StopListening(ctx context.Context) error {
	n.logger.InfoContext(ctx, "Stopping queue trigger")

	if n.stopCh != nil {
		close(n.stopCh)
		n.wg.Wait()
	}

	if n.client != nil {
		if err := n.client.Close(); err != nil {
			n.logger.ErrorContext(ctx, "Error closing Redis client", "error", err)
		}
	}

	return nil
}

// Validate checks the node configuration.
func (n *Node) Validate() *models.ValidationReport {
	report := models.NewValidationReport()

	if n.connection["addr"] == "" {
		report.AddWarning("no Redis address configured; defaulting to localhost:6379")
	}

	return report
}
