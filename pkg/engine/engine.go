// Package engine runs workflows: it arms trigger listeners, traverses
// graphs node by node, and keeps the execution records.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/jalleo/nodion/pkg/eventbus"
	"github.com/jalleo/nodion/pkg/events"
	"github.com/jalleo/nodion/pkg/models"
	"github.com/jalleo/nodion/pkg/protocol"
	"github.com/jalleo/nodion/pkg/registry"
)

// maxRecentRecords bounds the sealed records kept for introspection.
const maxRecentRecords = 100

// Config wires the engine's collaborators. Registry and Logger are
// required; EventBus and Tracer are optional.
type Config struct {
	Registry *registry.Registry
	Logger   *slog.Logger
	EventBus eventbus.EventPublisher
	Tracer   trace.Tracer
}

type triggerKey struct {
	workflowID string
	nodeID     string
}

// ExecutionInfo is the summary of a traversal still in flight. Full records
// become visible through RecentExecutions once sealed.
type ExecutionInfo struct {
	ExecutionID   string    `json:"execution_id"`
	WorkflowID    string    `json:"workflow_id"`
	TriggerNodeID string    `json:"trigger_node_id"`
	StartedAt     time.Time `json:"started_at"`
}

// Stats is a point-in-time snapshot of engine activity.
type Stats struct {
	RunningWorkflows    int   `json:"running_workflows"`
	LiveTriggers        int   `json:"live_triggers"`
	ActiveExecutions    int   `json:"active_executions"`
	TotalExecutions     int64 `json:"total_executions"`
	CompletedExecutions int64 `json:"completed_executions"`
	FailedExecutions    int64 `json:"failed_executions"`
}

// Engine owns the runtime state: which workflows are armed, their live
// trigger listeners, and the records of running and recent executions.
type Engine struct {
	registry *registry.Registry
	bus      eventbus.EventPublisher
	tracer   trace.Tracer
	logger   *slog.Logger

	mu        sync.RWMutex
	running   map[string]*models.Workflow
	triggers  map[triggerKey]protocol.TriggerNode
	active    map[string]ExecutionInfo
	recent    []*models.ExecutionRecord
	total     int64
	completed int64
	failed    int64
}

func New(cfg Config) (*Engine, error) {
	if cfg.Registry == nil {
		return nil, errors.New("engine: registry is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	tracer := cfg.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("nodion")
	}

	return &Engine{
		registry: cfg.Registry,
		bus:      cfg.EventBus,
		tracer:   tracer,
		logger:   logger.With("module", "engine"),
		running:  make(map[string]*models.Workflow),
		triggers: make(map[triggerKey]protocol.TriggerNode),
		active:   make(map[string]ExecutionInfo),
	}, nil
}

// StartWorkflow arms every enabled trigger node of the workflow. Calling it
// again for an already-running workflow is a no-op. One trigger failing to
// arm does not prevent the others; the failures come back joined.
func (e *Engine) StartWorkflow(ctx context.Context, wf *models.Workflow) error {
	if wf == nil {
		return errors.New("engine: nil workflow")
	}

	e.mu.Lock()
	if _, ok := e.running[wf.ID]; ok {
		e.mu.Unlock()
		e.logger.DebugContext(ctx, "workflow already running", "workflow_id", wf.ID)

		return nil
	}

	e.running[wf.ID] = wf
	e.mu.Unlock()

	var errs []error

	armed := 0

	for _, def := range wf.TriggerNodes() {
		node, err := e.registry.Create(ctx, def.Type, def.ID, def.Data)
		if err != nil {
			errs = append(errs, fmt.Errorf("trigger %q: %w", def.ID, err))

			continue
		}

		trigger, ok := node.(protocol.TriggerNode)
		if !ok {
			errs = append(errs, fmt.Errorf("trigger %q: node type %q cannot listen", def.ID, def.Type))

			continue
		}

		if err := trigger.StartListening(ctx, e.fireFunc(wf, def.ID)); err != nil {
			errs = append(errs, fmt.Errorf("trigger %q: %w", def.ID, err))

			continue
		}

		e.mu.Lock()
		e.triggers[triggerKey{workflowID: wf.ID, nodeID: def.ID}] = trigger
		e.mu.Unlock()

		armed++
	}

	e.logger.InfoContext(ctx, "workflow started",
		"workflow_id", wf.ID, "triggers_armed", armed, "triggers_failed", len(errs))

	e.publish(ctx, wf.ID, events.WorkflowStarted{
		BaseEvent:    events.NewBaseEvent(events.WorkflowStartedEvent, wf.ID),
		TriggerCount: armed,
	})

	return errors.Join(errs...)
}

// StopWorkflow disarms the workflow's triggers, stopping each listener
// exactly once. Unknown workflow IDs are a no-op. In-flight traversals are
// untouched; they run to completion.
func (e *Engine) StopWorkflow(ctx context.Context, workflowID string) error {
	e.mu.Lock()

	if _, ok := e.running[workflowID]; !ok {
		e.mu.Unlock()

		return nil
	}

	delete(e.running, workflowID)

	var stopping []protocol.TriggerNode

	for key, trigger := range e.triggers {
		if key.workflowID == workflowID {
			stopping = append(stopping, trigger)
			delete(e.triggers, key)
		}
	}

	e.mu.Unlock()

	var errs []error

	for _, trigger := range stopping {
		if err := trigger.StopListening(ctx); err != nil {
			errs = append(errs, fmt.Errorf("trigger %q: %w", trigger.ID(), err))
		}
	}

	e.logger.InfoContext(ctx, "workflow stopped", "workflow_id", workflowID, "triggers_stopped", len(stopping))

	e.publish(ctx, workflowID, events.WorkflowStopped{
		BaseEvent: events.NewBaseEvent(events.WorkflowStoppedEvent, workflowID),
	})

	return errors.Join(errs...)
}

// Shutdown stops every running workflow.
func (e *Engine) Shutdown(ctx context.Context) error {
	e.mu.RLock()

	ids := make([]string, 0, len(e.running))
	for id := range e.running {
		ids = append(ids, id)
	}

	e.mu.RUnlock()

	var errs []error

	for _, id := range ids {
		if err := e.StopWorkflow(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (e *Engine) fireFunc(wf *models.Workflow, triggerNodeID string) protocol.FireFunc {
	return func(ctx context.Context, payload map[string]any) error {
		_, err := e.ExecuteWorkflow(ctx, wf, triggerNodeID, payload)

		return err
	}
}

// IsRunning reports whether the workflow's triggers are armed.
func (e *Engine) IsRunning(workflowID string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	_, ok := e.running[workflowID]

	return ok
}

// ActiveWorkflows returns the workflows whose triggers are currently armed.
func (e *Engine) ActiveWorkflows() []*models.Workflow {
	e.mu.RLock()
	defer e.mu.RUnlock()

	workflows := make([]*models.Workflow, 0, len(e.running))
	for _, wf := range e.running {
		workflows = append(workflows, wf)
	}

	return workflows
}

// ActiveExecutions returns summaries of traversals still in flight.
func (e *Engine) ActiveExecutions() []ExecutionInfo {
	e.mu.RLock()
	defer e.mu.RUnlock()

	infos := make([]ExecutionInfo, 0, len(e.active))
	for _, info := range e.active {
		infos = append(infos, info)
	}

	return infos
}

// RecentExecutions returns the sealed records the engine still holds,
// newest last. Sealed records are immutable.
func (e *Engine) RecentExecutions() []*models.ExecutionRecord {
	e.mu.RLock()
	defer e.mu.RUnlock()

	records := make([]*models.ExecutionRecord, len(e.recent))
	copy(records, e.recent)

	return records
}

// Execution returns a sealed record by execution ID.
func (e *Engine) Execution(executionID string) (*models.ExecutionRecord, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, record := range e.recent {
		if record.ID == executionID {
			return record, true
		}
	}

	return nil, false
}

// Stats reports current engine activity.
func (e *Engine) Stats() Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return Stats{
		RunningWorkflows:    len(e.running),
		LiveTriggers:        len(e.triggers),
		ActiveExecutions:    len(e.active),
		TotalExecutions:     e.total,
		CompletedExecutions: e.completed,
		FailedExecutions:    e.failed,
	}
}

func (e *Engine) publish(ctx context.Context, key string, event eventbus.Event) {
	if e.bus == nil {
		return
	}

	if err := e.bus.Publish(ctx, key, event); err != nil {
		e.logger.WarnContext(ctx, "failed to publish event",
			"event_type", event.GetType(), "error", err)
	}
}
