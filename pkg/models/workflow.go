// Package models defines the core domain models for node-based workflow automation.
package models

import "time"

// Workflow is an immutable graph of typed nodes joined by port-level
// connections. The engine never mutates a workflow after StartWorkflow;
// editing tools build a new value and restart it.
type Workflow struct {
	ID          string         `json:"id"          validate:"required"`
	Name        string         `json:"name"        validate:"required,min=3"`
	Description string         `json:"description"`
	Nodes       []*Node        `json:"nodes"       validate:"required,min=1,dive"`
	Connections []*Connection  `json:"connections" validate:"dive"`
	Variables   map[string]any `json:"variables,omitempty"`
	Active      bool           `json:"active"`
	Owner       string         `json:"owner,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// NodeByID returns the node definition with the given ID, or nil.
func (w *Workflow) NodeByID(id string) *Node {
	for _, n := range w.Nodes {
		if n.ID == id {
			return n
		}
	}

	return nil
}

// TriggerNodes returns the trigger-category nodes of the workflow in
// declaration order. Disabled nodes are excluded; they must not arm
// listeners.
func (w *Workflow) TriggerNodes() []*Node {
	var triggers []*Node

	for _, n := range w.Nodes {
		if n.Category == CategoryTrigger && n.Enabled {
			triggers = append(triggers, n)
		}
	}

	return triggers
}

// ConnectionsFrom returns the connections whose source is the given node,
// preserving declaration order. Traversal fan-out follows this order.
func (w *Workflow) ConnectionsFrom(nodeID string) []*Connection {
	var out []*Connection

	for _, c := range w.Connections {
		if c.SourceNodeID == nodeID {
			out = append(out, c)
		}
	}

	return out
}

// CopyVariables returns a shallow copy of the workflow variable bag so an
// execution can mutate its own view without touching the definition.
func (w *Workflow) CopyVariables() map[string]any {
	vars := make(map[string]any, len(w.Variables))
	for k, v := range w.Variables {
		vars[k] = v
	}

	return vars
}
