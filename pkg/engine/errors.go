package engine

import (
	"errors"
	"fmt"
)

// Structural traversal errors. These fail the execution record, unlike node
// logic failures which the category wrappers absorb into output data.
var (
	// ErrNodeNotFound indicates a connection or entry point references a
	// node ID the workflow graph does not contain.
	ErrNodeNotFound = errors.New("node not found in workflow")

	// ErrNodeFailed indicates a node returned an unsuccessful result
	// (condition evaluation error, utility failure, panic).
	ErrNodeFailed = errors.New("node execution failed")
)

// TraversalError wraps a failure during one workflow traversal with enough
// coordinates to locate it.
type TraversalError struct {
	Op         string // "resolve", "construct", "execute", "traverse"
	WorkflowID string
	NodeID     string
	Err        error
}

func (e *TraversalError) Error() string {
	if e.NodeID == "" {
		return fmt.Sprintf("engine: %s workflow %q: %v", e.Op, e.WorkflowID, e.Err)
	}

	return fmt.Sprintf("engine: %s node %q in workflow %q: %v", e.Op, e.NodeID, e.WorkflowID, e.Err)
}

func (e *TraversalError) Unwrap() error {
	return e.Err
}

// IsNodeNotFound reports whether err came from a dangling node reference.
func IsNodeNotFound(err error) bool {
	return errors.Is(err, ErrNodeNotFound)
}

// IsNodeFailed reports whether err came from a node-level failure result.
func IsNodeFailed(err error) bool {
	return errors.Is(err, ErrNodeFailed)
}
