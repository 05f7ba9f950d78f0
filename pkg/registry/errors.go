package registry

import (
	"errors"
	"fmt"
)

// ErrUnknownNodeType indicates a workflow references a node type nobody
// registered. It is a structural error: executions hitting it fail.
var ErrUnknownNodeType = errors.New("unknown node type")

// ConstructionError wraps a factory failure (returned error or panic) while
// building a node instance. It is a structural error, distinct from node
// logic failures which stay inside execution results.
type ConstructionError struct {
	NodeType string
	NodeID   string
	Err      error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("constructing node %q of type %q: %v", e.NodeID, e.NodeType, e.Err)
}

func (e *ConstructionError) Unwrap() error {
	return e.Err
}

// IsUnknownNodeType reports whether err is an unknown-type registry miss.
func IsUnknownNodeType(err error) bool {
	return errors.Is(err, ErrUnknownNodeType)
}

// IsConstructionError reports whether err is a node construction failure.
func IsConstructionError(err error) bool {
	var ce *ConstructionError

	return errors.As(err, &ce)
}
