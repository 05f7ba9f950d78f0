package models

// Connection is a directed edge from one node's output port to another
// node's input port. All four coordinates are explicit; nothing is inferred
// from port naming.
type Connection struct {
	ID           string `json:"id,omitempty"`
	SourceNodeID string `json:"source_node_id" validate:"required"`
	SourcePort   string `json:"source_port"    validate:"required"`
	TargetNodeID string `json:"target_node_id" validate:"required"`
	TargetPort   string `json:"target_port"    validate:"required"`
}
