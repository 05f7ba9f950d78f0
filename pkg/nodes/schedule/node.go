// Package schedule provides the cron schedule trigger node.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jalleo/nodion/pkg/models"
	"github.com/jalleo/nodion/pkg/protocol"
)

// Node implements the schedule trigger.
type Node struct {
	id       string
	cronExpr string
	logger   *slog.Logger

	cron *cron.Cron
	fire protocol.FireFunc
}

// NewNode creates a schedule trigger node.
func NewNode(id string, data map[string]any, logger *slog.Logger) (*Node, error) {
	cronExpr, ok := data["cron"].(string)
	if !ok || cronExpr == "" {
		return nil, errors.New("missing required field 'cron'")
	}

	if _, err := cron.ParseStandard(cronExpr); err != nil {
		return nil, fmt.Errorf("invalid cron expression: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Node{
		id:       id,
		cronExpr: cronExpr,
		logger: logger.With(
			"module", "schedule_trigger",
			"node_id", id,
			"cron", cronExpr,
		),
	}, nil
}

// ID returns the node ID.
func (n *Node) ID() string {
	return n.id
}

// Type returns the node type.
func (n *Node) Type() string {
	return models.NodeTypeScheduleTrigger
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
	return map[string]any{}
}

// Execute emits the captured tick payload when a traversal enters the
// trigger.
func (n *Node) Execute(_ context.Context, ectx *models.ExecutionContext, _ map[string]any) models.ExecutionResult {
	return protocol.Succeed(protocol.TriggerOutputs(ectx))
}

// StartListening arms the cron schedule.
func (n *Node) StartListening(ctx context.Context, fire protocol.FireFunc) error {
	n.logger.InfoContext(ctx, "Starting schedule trigger")
	n.fire = fire

	n.cron = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
		cron.Recover(cron.DefaultLogger),
	))

	if _, err := n.cron.AddFunc(n.cronExpr, func() { n.tick(ctx) }); err != nil {
		return fmt.Errorf("failed to add cron job for trigger %s: %w", n.id, err)
	}

	n.cron.Start()

	return nil
}

func (n *Node) tick(ctx context.Context) {
	n.logger.InfoContext(ctx, "Cron tick")

	payload := map[string]any{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"cron":      n.cronExpr,
	}

	go func() {
		if err := n.fire(ctx, payload); err != nil {
			n.logger.ErrorContext(ctx, "Error executing workflow for schedule tick", "error", err)
		}
	}()
}

// StopListening halts the cron schedule. The returned context is done once
// any running jobs finish.
func (n *Node) StopListening(ctx context.Context) error {
	n.logger.InfoContext(ctx, "Stopping schedule trigger")

	if n.cron != nil {
		<-n.cron.Stop().Done()
	}

	return nil
}

// Validate checks the node configuration.
func (n *Node) Validate() *models.ValidationReport {
	report := models.NewValidationReport()

	if schedule, err := cron.ParseStandard(n.cronExpr); err == nil {
		next := schedule.Next(time.Now())
		if interval := schedule.Next(next).Sub(next); interval <= time.Minute {
			report.AddWarning("schedule fires every minute; each tick starts a full execution")
		}
	}

	return report
}
