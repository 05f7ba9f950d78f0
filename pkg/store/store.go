// Package store provides the persistence abstraction for workflow
// definitions.
package store

import (
	"context"

	"github.com/jalleo/nodion/pkg/models"
)

// Store persists workflow definitions. Execution records never pass
// through here; the engine keeps those in memory.
type Store interface {
	Workflows(ctx context.Context) ([]*models.Workflow, error)
	WorkflowByID(ctx context.Context, id string) (*models.Workflow, error)
	SaveWorkflow(ctx context.Context, workflow *models.Workflow) error
	DeleteWorkflow(ctx context.Context, id string) error
	HealthCheck(ctx context.Context) error

	Close(ctx context.Context) error
}
