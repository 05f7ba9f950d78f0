// Package kafka provides the Kafka topic trigger node. It consumes a
// topic through a consumer group and fires an execution per message.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/IBM/sarama"

	"github.com/jalleo/nodion/pkg/models"
	"github.com/jalleo/nodion/pkg/protocol"
)

const (
	sessionTimeout    = 10 * time.Second
	heartbeatInterval = 3 * time.Second
	retryInterval     = 5 * time.Second
)

// Node implements the Kafka trigger.
type Node struct {
	id            string
	topic         string
	consumerGroup string
	brokers       []string
	logger        *slog.Logger

	consumer sarama.ConsumerGroup
	fire     protocol.FireFunc
	cancel   context.CancelFunc
}

// NewNode creates a Kafka trigger node. Brokers come from the node data,
// the KAFKA_BROKERS environment variable, or localhost, in that order.
func NewNode(id string, data map[string]any, logger *slog.Logger) (*Node, error) {
	topic, ok := data["topic"].(string)
	if !ok || topic == "" {
		return nil, errors.New("missing required field 'topic'")
	}

	consumerGroup, _ := data["consumer_group"].(string)
	if consumerGroup == "" {
		consumerGroup = "cg-nodion-triggers"
	}

	brokersStr, _ := data["brokers"].(string)
	if brokersStr == "" {
		brokersStr = os.Getenv("KAFKA_BROKERS")
		if brokersStr == "" {
			brokersStr = "localhost:9092"
		}
	}

	brokers := strings.Split(brokersStr, ",")
	for i, broker := range brokers {
		brokers[i] = strings.TrimSpace(broker)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Node{
		id:            id,
		topic:         topic,
		consumerGroup: consumerGroup,
		brokers:       brokers,
		logger: logger.With(
			"module", "kafka_trigger",
			"node_id", id,
			"topic", topic,
			"consumer_group", consumerGroup,
		),
	}, nil
}

// ID returns the node ID.
func (n *Node) ID() string {
	return n.id
}

// Type returns the node type.
func (n *Node) Type() string {
	return models.NodeTypeKafkaTrigger
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
	return map[string]any{"consumer_group": "cg-nodion-triggers"}
}

// Execute emits the captured message payload when a traversal enters the
// trigger.
func (n *Node) Execute(_ context.Context, ectx *models.ExecutionContext, _ map[string]any) models.ExecutionResult {
	return protocol.Succeed(protocol.TriggerOutputs(ectx))
}

// StartListening joins the consumer group and consumes the topic.
func (n *Node) StartListening(ctx context.Context, fire protocol.FireFunc) error {
	n.logger.InfoContext(ctx, "Starting Kafka trigger")
	n.fire = fire

	config := sarama.NewConfig()
	config.Version = sarama.V2_6_0_0
	config.Consumer.Group.Session.Timeout = sessionTimeout
	config.Consumer.Group.Heartbeat.Interval = heartbeatInterval
	config.Consumer.Offsets.Initial = sarama.OffsetNewest
	config.Consumer.Return.Errors = true

	consumer, err := sarama.NewConsumerGroup(n.brokers, n.consumerGroup, config)
	if err != nil {
		return fmt.Errorf("failed to create Kafka consumer group: %w", err)
	}

	n.consumer = consumer

	consumeCtx, cancel := context.WithCancel(ctx)
	n.cancel = cancel

	go n.consuming(consumeCtx)
	go n.monitorConsumerErrors(consumeCtx)

	return nil
}

func (n *Node) consuming(ctx context.Context) {
	handler := &consumerGroupHandler{node: n}

	for {
		select {
		case <-ctx.Done():
			n.logger.InfoContext(ctx, "Kafka trigger context cancelled")

			return
		default:
			if err := n.consumer.Consume(ctx, []string{n.topic}, handler); err != nil {
				if errors.Is(err, sarama.ErrClosedConsumerGroup) {
					return
				}

				n.logger.ErrorContext(ctx, "Kafka consumer error", "error", err)
				time.Sleep(retryInterval)
			}
		}
	}
}

func (n *Node) monitorConsumerErrors(ctx context.Context) {
	for {
		select {
		case err := <-n.consumer.Errors():
			if err != nil {
				n.logger.ErrorContext(ctx, "Kafka consumer group error", "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

// StopListening leaves the consumer group.
func (n *Node) StopListening(ctx context.Context) error {
	n.logger.InfoContext(ctx, "Stopping Kafka trigger")

	if n.cancel != nil {
		n.cancel()
	}

	if n.consumer != nil {
		if err := n.consumer.Close(); err != nil {
			n.logger.ErrorContext(ctx, "Error closing Kafka consumer", "error", err)

			return err
		}
	}

	return nil
}

// Validate checks the node configuration.
func (n *Node) Validate() *models.ValidationReport {
	report := models.NewValidationReport()

	if len(n.brokers) == 1 && n.brokers[0] == "localhost:9092" {
		report.AddWarning("no brokers configured; defaulting to localhost:9092")
	}

	return report
}

type consumerGroupHandler struct {
	node *Node
}

func (h *consumerGroupHandler) Setup(session sarama.ConsumerGroupSession) error {
	h.node.logger.InfoContext(session.Context(), "Kafka consumer group session started")

	return nil
}

func (h *consumerGroupHandler) Cleanup(session sarama.ConsumerGroupSession) error {
	h.node.logger.InfoContext(session.Context(), "Kafka consumer group session ended")

	return nil
}

func (h *consumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	ctx := session.Context()

	for message := range claim.Messages() {
		h.node.logger.DebugContext(ctx, "Received Kafka message",
			"topic", message.Topic,
			"partition", message.Partition,
			"offset", message.Offset,
		)

		payload := messagePayload(message)

		go func(data map[string]any) {
			if err := h.node.fire(ctx, data); err != nil {
				h.node.logger.ErrorContext(ctx, "Error executing workflow for Kafka message", "error", err)
			}
		}(payload)

		session.MarkMessage(message, "")
	}

	return nil
}

// messagePayload shapes a consumed record into a trigger payload: parsed
// body plus topic coordinates, key, and headers.
func messagePayload(message *sarama.ConsumerMessage) map[string]any {
	var body any

	if len(message.Value) > 0 {
		if err := json.Unmarshal(message.Value, &body); err != nil {
			body = map[string]any{"raw_message": string(message.Value)}
		}
	}

	headers := make(map[string]string, len(message.Headers))
	for _, header := range message.Headers {
		headers[string(header.Key)] = string(header.Value)
	}

	var key string
	if message.Key != nil {
		key = string(message.Key)
	}

	return map[string]any{
		"topic":     message.Topic,
		"partition": message.Partition,
		"offset":    message.Offset,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"key":       key,
		"message":   body,
		"headers":   headers,
	}
}
