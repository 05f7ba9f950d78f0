package models

import (
	"fmt"
	"time"
)

// ExecutionStatus is the lifecycle state of a whole traversal.
type ExecutionStatus string

const (
	ExecutionStatusRunning   ExecutionStatus = "running"
	ExecutionStatusCompleted ExecutionStatus = "completed"
	ExecutionStatusFailed    ExecutionStatus = "failed"
)

// NodeExecutionStatus is the terminal state of a single node entry.
type NodeExecutionStatus string

const (
	NodeStatusCompleted NodeExecutionStatus = "completed"
	NodeStatusFailed    NodeExecutionStatus = "failed"
	NodeStatusSkipped   NodeExecutionStatus = "skipped"
)

// LogEntry is one line of the execution's log stream.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	NodeID    string    `json:"node_id,omitempty"`
}

// NodeExecution records one visit to one node. Loop bodies produce one entry
// per pass, so a record may hold several entries for the same node ID.
type NodeExecution struct {
	NodeID     string              `json:"node_id"`
	Status     NodeExecutionStatus `json:"status"`
	StartedAt  time.Time           `json:"started_at"`
	FinishedAt time.Time           `json:"finished_at"`
	Outputs    map[string]any      `json:"outputs,omitempty"`
	Error      string              `json:"error,omitempty"`
}

// Duration returns how long the node ran.
func (ne *NodeExecution) Duration() time.Duration {
	return ne.FinishedAt.Sub(ne.StartedAt)
}

// ExecutionRecord is the append-only account of one traversal: node entries
// in visit order plus the merged log stream. It is mutated only by the
// goroutine running the traversal; once sealed it is immutable and safe to
// share.
type ExecutionRecord struct {
	ID         string           `json:"id"`
	WorkflowID string           `json:"workflow_id"`
	Status     ExecutionStatus  `json:"status"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Nodes      []*NodeExecution `json:"nodes"`
	Logs       []LogEntry       `json:"logs,omitempty"`
	Error      string           `json:"error,omitempty"`
}

// NewExecutionRecord opens a running record for the given execution.
func NewExecutionRecord(executionID, workflowID string) *ExecutionRecord {
	return &ExecutionRecord{
		ID:         executionID,
		WorkflowID: workflowID,
		Status:     ExecutionStatusRunning,
		StartedAt:  time.Now().UTC(),
	}
}

// AddNode appends a node entry and returns it.
func (r *ExecutionRecord) AddNode(entry *NodeExecution) *NodeExecution {
	r.Nodes = append(r.Nodes, entry)
	return entry
}

// NodeCompleted appends a completed entry for the node.
func (r *ExecutionRecord) NodeCompleted(nodeID string, startedAt time.Time, outputs map[string]any) *NodeExecution {
	return r.AddNode(&NodeExecution{
		NodeID:     nodeID,
		Status:     NodeStatusCompleted,
		StartedAt:  startedAt,
		FinishedAt: time.Now().UTC(),
		Outputs:    outputs,
	})
}

// NodeFailed appends a failed entry for the node.
func (r *ExecutionRecord) NodeFailed(nodeID string, startedAt time.Time, errMsg string) *NodeExecution {
	return r.AddNode(&NodeExecution{
		NodeID:     nodeID,
		Status:     NodeStatusFailed,
		StartedAt:  startedAt,
		FinishedAt: time.Now().UTC(),
		Error:      errMsg,
	})
}

// NodeSkipped appends a skipped entry for the node.
func (r *ExecutionRecord) NodeSkipped(nodeID string, reason string) *NodeExecution {
	now := time.Now().UTC()

	return r.AddNode(&NodeExecution{
		NodeID:     nodeID,
		Status:     NodeStatusSkipped,
		StartedAt:  now,
		FinishedAt: now,
		Error:      reason,
	})
}

// Log appends a log entry to the record's stream.
func (r *ExecutionRecord) Log(level, message, nodeID string) {
	r.Logs = append(r.Logs, LogEntry{
		Timestamp: time.Now().UTC(),
		Level:     level,
		Message:   message,
		NodeID:    nodeID,
	})
}

// Logf appends a formatted info-level entry not tied to a node.
func (r *ExecutionRecord) Logf(format string, args ...any) {
	r.Log("info", fmt.Sprintf(format, args...), "")
}

// Seal closes the record: completed when err is nil, failed otherwise.
// Sealing twice is a no-op so failure paths can seal eagerly.
func (r *ExecutionRecord) Seal(err error) {
	if r.Status != ExecutionStatusRunning {
		return
	}

	r.FinishedAt = time.Now().UTC()

	if err != nil {
		r.Status = ExecutionStatusFailed
		r.Error = err.Error()

		return
	}

	r.Status = ExecutionStatusCompleted
}

// NodeEntry returns the most recent entry for the given node ID, or nil.
func (r *ExecutionRecord) NodeEntry(nodeID string) *NodeExecution {
	for i := len(r.Nodes) - 1; i >= 0; i-- {
		if r.Nodes[i].NodeID == nodeID {
			return r.Nodes[i]
		}
	}

	return nil
}
