package models

import "time"

// ExecutionContext carries the shared state of one workflow traversal. It is
// owned by the executing goroutine; nodes read and write it through their
// Execute call, never concurrently.
type ExecutionContext struct {
	ExecutionID   string         `json:"execution_id"`
	WorkflowID    string         `json:"workflow_id"`
	StartedAt     time.Time      `json:"started_at"`
	TriggerNodeID string         `json:"trigger_node_id"`           // Which trigger fired this execution
	TriggerType   string         `json:"trigger_type"`              // Node type of that trigger
	Variables     map[string]any `json:"variables,omitempty"`       // Copied from the workflow at start
	Payload       map[string]any `json:"payload,omitempty"`         // Trigger payload (position snapshot, message, ...)
	Iterations    map[string]int `json:"iterations,omitempty"`      // Loop budget bookkeeping, keyed by node ID
}

// NewExecutionContext builds the context for a fresh traversal. Variables
// must already be a private copy; the context takes ownership of it.
func NewExecutionContext(executionID string, wf *Workflow, triggerNode *Node, payload map[string]any) *ExecutionContext {
	triggerID, triggerType := "", ""
	if triggerNode != nil {
		triggerID, triggerType = triggerNode.ID, triggerNode.Type
	}

	return &ExecutionContext{
		ExecutionID:   executionID,
		WorkflowID:    wf.ID,
		StartedAt:     time.Now().UTC(),
		TriggerNodeID: triggerID,
		TriggerType:   triggerType,
		Variables:     wf.CopyVariables(),
		Payload:       payload,
		Iterations:    make(map[string]int),
	}
}

// NextIteration increments and returns the visit count for the given node.
// Loop nodes call it on every pass; the first visit returns 1.
func (ec *ExecutionContext) NextIteration(nodeID string) int {
	if ec.Iterations == nil {
		ec.Iterations = make(map[string]int)
	}

	ec.Iterations[nodeID]++

	return ec.Iterations[nodeID]
}

// SetVariable stores a value in the execution's variable bag.
func (ec *ExecutionContext) SetVariable(key string, value any) {
	if ec.Variables == nil {
		ec.Variables = make(map[string]any)
	}

	ec.Variables[key] = value
}
