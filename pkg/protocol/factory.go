package protocol

import (
	"context"

	"github.com/jalleo/nodion/pkg/models"
)

// NodeFactory creates node instances and provides metadata about the node type.
type NodeFactory interface {
	// Create builds a node instance with the given configuration. The
	// factory merges the type's defaults under data before constructing.
	Create(ctx context.Context, id string, data map[string]any) (Node, error)

	// ID returns the unique identifier for this node type
	ID() string

	// Category returns the behavioral category for this node type
	Category() models.Category

	// Name returns the human-readable name for this node type
	Name() string

	// Description returns a description of what this node does
	Description() string

	// Schema returns the JSON schema for configuring this node
	Schema() map[string]any
}
