// Package log provides the logging utility node.
package log

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jalleo/nodion/pkg/models"
	"github.com/jalleo/nodion/pkg/protocol"
	"github.com/jalleo/nodion/pkg/template"
)

var validLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Node implements the log utility.
type Node struct {
	id      string
	message string
	level   string
	logger  *slog.Logger
}

// NewNode creates a log node writing through the given logger.
func NewNode(id string, data map[string]any, logger *slog.Logger) (*Node, error) {
	message, ok := data["message"].(string)
	if !ok || message == "" {
		return nil, errors.New("missing required field 'message'")
	}

	level := "info"
	if lvl, ok := data["level"].(string); ok {
		if !validLevels[lvl] {
			return nil, fmt.Errorf("invalid log level '%s' (must be debug, info, warn, or error)", lvl)
		}

		level = lvl
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Node{
		id:      id,
		message: message,
		level:   level,
		logger:  logger.With("node_id", id, "node_type", models.NodeTypeLog),
	}, nil
}

// ID returns the node ID.
func (n *Node) ID() string {
	return n.id
}

// Type returns the node type.
func (n *Node) Type() string {
	return models.NodeTypeLog
}

// Category returns the node category.
func (n *Node) Category() models.Category {
	return models.CategoryUtility
}

// InputPorts returns the input ports for the node.
func (n *Node) InputPorts() []models.Port {
	return protocol.ExecInputPorts()
}

// OutputPorts returns the output ports for the node.
func (n *Node) OutputPorts() []models.Port {
	return []models.Port{
		{ID: protocol.OutputPortDone, Kind: models.PortKindExecution, Description: "Fires after the message is logged"},
		{ID: "message", Kind: models.PortKindData, ValueType: "string", Description: "The rendered message"},
	}
}

// DefaultData returns the configuration defaults.
func (n *Node) DefaultData() map[string]any {
	return map[string]any{"level": "info"}
}

// Execute renders and logs the message, recording it in the execution's
// log stream as well.
func (n *Node) Execute(ctx context.Context, ectx *models.ExecutionContext, inputs map[string]any) models.ExecutionResult {
	rendered, err := template.RenderWithContext(n.message, ectx, inputs)
	if err != nil {
		return protocol.Failf("failed to render log message: %v", err)
	}

	message := fmt.Sprintf("%v", rendered)

	logger := n.logger.With("execution_id", ectx.ExecutionID, "workflow_id", ectx.WorkflowID)

	switch n.level {
	case "debug":
		logger.DebugContext(ctx, message)
	case "warn":
		logger.WarnContext(ctx, message)
	case "error":
		logger.ErrorContext(ctx, message)
	default:
		logger.InfoContext(ctx, message)
	}

	result := protocol.Succeed(map[string]any{
		protocol.OutputPortDone: true,
		"message":               message,
	})
	result.Logs = []models.LogEntry{{
		Timestamp: time.Now().UTC(),
		Level:     n.level,
		Message:   message,
	}}

	return result
}

// Validate checks the message template.
func (n *Node) Validate() *models.ValidationReport {
	report := models.NewValidationReport()

	if err := template.Check(n.message); err != nil {
		report.AddError(err.Error())
	}

	return report
}
