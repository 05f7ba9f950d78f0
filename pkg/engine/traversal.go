package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jalleo/nodion/pkg/events"
	"github.com/jalleo/nodion/pkg/models"
	"github.com/jalleo/nodion/pkg/otelhelper"
	"github.com/jalleo/nodion/pkg/protocol"
)

// ExecuteWorkflow runs one traversal of the workflow starting at the given
// trigger node and returns the sealed record. The record is returned even
// when the traversal fails; the error explains the structural failure that
// sealed it as failed.
//
// Failures stay inside their execution: a failed traversal never unarms
// triggers or affects other executions of the same workflow.
func (e *Engine) ExecuteWorkflow(ctx context.Context, wf *models.Workflow, triggerNodeID string, payload map[string]any) (*models.ExecutionRecord, error) {
	executionID := "exec-" + uuid.New().String()[:8]
	triggerDef := wf.NodeByID(triggerNodeID)

	ectx := models.NewExecutionContext(executionID, wf, triggerDef, payload)
	record := models.NewExecutionRecord(executionID, wf.ID)

	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "workflow.execute",
		attribute.String(otelhelper.WorkflowIDKey, wf.ID),
		attribute.String(otelhelper.WorkflowNameKey, wf.Name),
		attribute.String(otelhelper.ExecutionIDKey, executionID),
		attribute.String(otelhelper.TriggerNodeKey, triggerNodeID),
	)
	defer span.End()

	logger := e.logger.With("workflow_id", wf.ID, "execution_id", executionID)
	logger.InfoContext(ctx, "execution started", "trigger_node_id", triggerNodeID, "trigger_type", ectx.TriggerType)

	e.beginExecution(ctx, wf, ectx)

	err := e.runTraversal(ctx, wf, ectx, record, triggerNodeID)
	record.Seal(err)
	e.finishExecution(ctx, record)

	if err != nil {
		otelhelper.SetError(span, err)
		logger.ErrorContext(ctx, "execution failed", "error", err)

		return record, err
	}

	logger.InfoContext(ctx, "execution completed",
		"nodes_executed", len(record.Nodes), "duration", record.FinishedAt.Sub(record.StartedAt))

	return record, nil
}

// runTraversal shields the recursive walk: a panic escaping a node wrapper
// fails this execution instead of crashing the process.
func (e *Engine) runTraversal(ctx context.Context, wf *models.Workflow, ectx *models.ExecutionContext, record *models.ExecutionRecord, entryNodeID string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &TraversalError{
				Op:         "traverse",
				WorkflowID: wf.ID,
				Err:        fmt.Errorf("panic: %v", r),
			}
		}
	}()

	return e.executeFromNode(ctx, wf, ectx, record, entryNodeID, map[string]any{})
}

// executeFromNode resolves, constructs and runs one node, then follows its
// outgoing connections. Structural problems (dangling references, unknown
// types, constructor failures) and unsuccessful results propagate up and
// fail the record; everything else keeps walking.
func (e *Engine) executeFromNode(ctx context.Context, wf *models.Workflow, ectx *models.ExecutionContext, record *models.ExecutionRecord, nodeID string, inputs map[string]any) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return &TraversalError{Op: "traverse", WorkflowID: wf.ID, NodeID: nodeID, Err: ctxErr}
	}

	def := wf.NodeByID(nodeID)
	if def == nil {
		record.NodeFailed(nodeID, time.Now().UTC(), "node not found in workflow")

		return &TraversalError{Op: "resolve", WorkflowID: wf.ID, NodeID: nodeID, Err: ErrNodeNotFound}
	}

	if !def.Enabled {
		record.NodeSkipped(def.ID, "node disabled")
		record.Log("info", fmt.Sprintf("node %s skipped: disabled", def.ID), def.ID)

		return nil
	}

	started := time.Now().UTC()

	node, err := e.registry.Create(ctx, def.Type, def.ID, def.Data)
	if err != nil {
		record.NodeFailed(def.ID, started, err.Error())

		return &TraversalError{Op: "construct", WorkflowID: wf.ID, NodeID: def.ID, Err: err}
	}

	result := e.executeNode(ctx, node, ectx, inputs)

	for _, entry := range result.Logs {
		if entry.NodeID == "" {
			entry.NodeID = def.ID
		}

		record.Logs = append(record.Logs, entry)
	}

	if !result.Success {
		record.NodeFailed(def.ID, started, result.Error)

		return &TraversalError{
			Op:         "execute",
			WorkflowID: wf.ID,
			NodeID:     def.ID,
			Err:        fmt.Errorf("%w: %s", ErrNodeFailed, result.Error),
		}
	}

	record.NodeCompleted(def.ID, started, result.Outputs)

	e.publish(ctx, wf.ID, events.NodeCompleted{
		BaseEvent:   events.NewBaseEvent(events.NodeCompletedEvent, wf.ID),
		ExecutionID: ectx.ExecutionID,
		NodeID:      def.ID,
		NodeType:    def.Type,
		Status:      string(models.NodeStatusCompleted),
	})

	return e.executeNextNodes(ctx, wf, ectx, record, def, result.Outputs)
}

// executeNextNodes follows the node's outgoing connections in declaration
// order. A connection fires only when its source port is present in the
// outputs and truthy. The fired port's value binds to the connection's
// target input; every other output rides along under "{nodeID}.{port}"
// keys so downstream nodes can reach them without a direct connection.
func (e *Engine) executeNextNodes(ctx context.Context, wf *models.Workflow, ectx *models.ExecutionContext, record *models.ExecutionRecord, def *models.Node, outputs map[string]any) error {
	for _, conn := range wf.ConnectionsFrom(def.ID) {
		value, present := outputs[conn.SourcePort]
		if !present || !protocol.Truthy(value) {
			continue
		}

		next := make(map[string]any, len(outputs)+1)
		next[conn.TargetPort] = value

		for port, v := range outputs {
			if port == conn.SourcePort {
				continue
			}

			next[def.ID+"."+port] = v
		}

		if err := e.executeFromNode(ctx, wf, ectx, record, conn.TargetNodeID, next); err != nil {
			return err
		}
	}

	return nil
}

// executeNode runs a single node behind a panic shield so raw Execute
// implementations cannot crash the traversal goroutine.
func (e *Engine) executeNode(ctx context.Context, node protocol.Node, ectx *models.ExecutionContext, inputs map[string]any) (result models.ExecutionResult) {
	defer func() {
		if r := recover(); r != nil {
			result = models.ExecutionResult{
				Success: false,
				Error:   fmt.Sprintf("node %s panicked: %v", node.ID(), r),
			}
		}
	}()

	return node.Execute(ctx, ectx, inputs)
}

func (e *Engine) beginExecution(ctx context.Context, wf *models.Workflow, ectx *models.ExecutionContext) {
	e.mu.Lock()
	e.active[ectx.ExecutionID] = ExecutionInfo{
		ExecutionID:   ectx.ExecutionID,
		WorkflowID:    wf.ID,
		TriggerNodeID: ectx.TriggerNodeID,
		StartedAt:     ectx.StartedAt,
	}
	e.total++
	e.mu.Unlock()

	e.publish(ctx, wf.ID, events.ExecutionStarted{
		BaseEvent:     events.NewBaseEvent(events.ExecutionStartedEvent, wf.ID),
		ExecutionID:   ectx.ExecutionID,
		TriggerNodeID: ectx.TriggerNodeID,
		TriggerType:   ectx.TriggerType,
	})
}

func (e *Engine) finishExecution(ctx context.Context, record *models.ExecutionRecord) {
	duration := record.FinishedAt.Sub(record.StartedAt)

	e.mu.Lock()
	delete(e.active, record.ID)

	if record.Status == models.ExecutionStatusFailed {
		e.failed++
	} else {
		e.completed++
	}

	e.recent = append(e.recent, record)
	if len(e.recent) > maxRecentRecords {
		e.recent = e.recent[len(e.recent)-maxRecentRecords:]
	}
	e.mu.Unlock()

	if record.Status == models.ExecutionStatusFailed {
		e.publish(ctx, record.WorkflowID, events.ExecutionFailed{
			BaseEvent:   events.NewBaseEvent(events.ExecutionFailedEvent, record.WorkflowID),
			ExecutionID: record.ID,
			Error:       record.Error,
			Duration:    duration,
		})

		return
	}

	e.publish(ctx, record.WorkflowID, events.ExecutionCompleted{
		BaseEvent:   events.NewBaseEvent(events.ExecutionCompletedEvent, record.WorkflowID),
		ExecutionID: record.ID,
		NodeCount:   len(record.Nodes),
		Duration:    duration,
	})
}
