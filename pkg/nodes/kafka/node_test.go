package kafka

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/IBM/sarama"

	"github.com/jalleo/nodion/pkg/models"
	"github.com/jalleo/nodion/pkg/protocol"
)

func TestNewNode_Config(t *testing.T) {
	node, err := NewNode("trigger-1", map[string]any{
		"topic":   "market.signals",
		"brokers": "kafka-1:9092, kafka-2:9092",
	}, nil)
	if err != nil {
		t.Fatalf("Failed to create node: %v", err)
	}

	if node.topic != "market.signals" {
		t.Errorf("Expected topic market.signals, got %q", node.topic)
	}

	if len(node.brokers) != 2 || node.brokers[0] != "kafka-1:9092" || node.brokers[1] != "kafka-2:9092" {
		t.Errorf("Expected trimmed broker list, got %v", node.brokers)
	}

	if node.consumerGroup != "cg-nodion-triggers" {
		t.Errorf("Expected default consumer group, got %q", node.consumerGroup)
	}
}

func TestNewNode_RequiresTopic(t *testing.T) {
	if _, err := NewNode("trigger-1", map[string]any{}, nil); err == nil {
		t.Error("Expected error for missing topic")
	}

	if _, err := NewNode("trigger-1", map[string]any{"topic": ""}, nil); err == nil {
		t.Error("Expected error for empty topic")
	}
}

func TestMessagePayload(t *testing.T) {
	value, _ := json.Marshal(map[string]any{"symbol": "ETH-USD", "price": 1850.5})

	message := &sarama.ConsumerMessage{
		Topic:     "market.signals",
		Partition: 2,
		Offset:    42,
		Key:       []byte("ETH-USD"),
		Value:     value,
		Headers: []*sarama.RecordHeader{
			{Key: []byte("source"), Value: []byte("pricer")},
		},
	}

	payload := messagePayload(message)

	if payload["topic"] != "market.signals" || payload["key"] != "ETH-USD" {
		t.Errorf("Unexpected coordinates in payload: %v", payload)
	}

	body, ok := payload["message"].(map[string]any)
	if !ok || body["symbol"] != "ETH-USD" {
		t.Errorf("Expected parsed JSON body, got %v", payload["message"])
	}

	headers, ok := payload["headers"].(map[string]string)
	if !ok || headers["source"] != "pricer" {
		t.Errorf("Expected parsed headers, got %v", payload["headers"])
	}

	if payload["timestamp"] == nil {
		t.Error("Expected a stamped timestamp")
	}
}

func TestMessagePayload_NonJSONBody(t *testing.T) {
	message := &sarama.ConsumerMessage{
		Topic: "market.signals",
		Value: []byte("plain text"),
	}

	payload := messagePayload(message)

	body, ok := payload["message"].(map[string]any)
	if !ok || body["raw_message"] != "plain text" {
		t.Errorf("Expected raw message wrapper, got %v", payload["message"])
	}
}

func TestNode_Execute_EmitsCapturedPayload(t *testing.T) {
	node, err := NewNode("trigger-1", map[string]any{"topic": "market.signals"}, nil)
	if err != nil {
		t.Fatalf("Failed to create node: %v", err)
	}

	ectx := &models.ExecutionContext{
		ExecutionID: "exec-test",
		Payload:     map[string]any{"topic": "market.signals", "offset": int64(42)},
	}

	result := node.Execute(context.Background(), ectx, nil)

	if !result.Success {
		t.Fatalf("Expected success, got error: %s", result.Error)
	}

	if v, ok := result.Outputs[protocol.OutputPortFired]; !ok || v != true {
		t.Errorf("Expected fired port, got outputs: %v", result.Outputs)
	}
}

func TestNode_ImplementsTriggerNode(t *testing.T) {
	node, err := NewNode("trigger-1", map[string]any{"topic": "market.signals"}, nil)
	if err != nil {
		t.Fatalf("Failed to create node: %v", err)
	}

	var _ protocol.TriggerNode = node
}
