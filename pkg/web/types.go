// Package web provides the HTTP API for managing and running workflows.
package web

import (
	"github.com/jalleo/nodion/pkg/models"
)

// SaveWorkflowRequest is the body for creating or replacing a workflow.
// The graph always travels whole; there is no partial node editing, a new
// definition replaces the old one.
type SaveWorkflowRequest struct {
	Name        string               `json:"name"        validate:"required,min=3"`
	Description string               `json:"description"`
	Nodes       []*models.Node       `json:"nodes"       validate:"required,min=1,dive"`
	Connections []*models.Connection `json:"connections" validate:"dive"`
	Variables   map[string]any       `json:"variables"`
	Owner       string               `json:"owner"`
	Active      bool                 `json:"active"`
}

// ToWorkflow builds the workflow value for the given ID.
func (r *SaveWorkflowRequest) ToWorkflow(id string) *models.Workflow {
	return &models.Workflow{
		ID:          id,
		Name:        r.Name,
		Description: r.Description,
		Nodes:       r.Nodes,
		Connections: r.Connections,
		Variables:   r.Variables,
		Owner:       r.Owner,
		Active:      r.Active,
	}
}

// ExecuteWorkflowRequest is the body for a manual traversal.
type ExecuteWorkflowRequest struct {
	TriggerNodeID string         `json:"trigger_node_id" validate:"required"`
	Payload       map[string]any `json:"payload"`
}

// WorkflowSummary is the list-view shape: the definition plus whether its
// triggers are currently armed.
type WorkflowSummary struct {
	*models.Workflow

	Running bool `json:"running"`
}
