// Package registry maps node type IDs to factories and builds node
// instances for the engine.
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/jalleo/nodion/pkg/models"
	"github.com/jalleo/nodion/pkg/protocol"
)

// NodeDefinition is the catalog entry for a registered type. Ports and
// defaults live on node instances; the catalog carries the factory's
// static metadata.
type NodeDefinition struct {
	Type        string          `json:"type"`
	Category    models.Category `json:"category"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Schema      map[string]any  `json:"schema,omitempty"`
}

// Registry holds the node factories. Registration order never matters:
// lookups happen by type ID only. Safe for concurrent use.
type Registry struct {
	logger    *slog.Logger
	mu        sync.RWMutex
	factories map[string]protocol.NodeFactory
	catalog   map[string]NodeDefinition
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger:    logger.With("module", "registry"),
		factories: make(map[string]protocol.NodeFactory),
		catalog:   make(map[string]NodeDefinition),
	}
}

// Register adds a factory, replacing any previous registration for the
// same type ID.
func (r *Registry) Register(factory protocol.NodeFactory) {
	def := NodeDefinition{
		Type:        factory.ID(),
		Category:    factory.Category(),
		Name:        factory.Name(),
		Description: factory.Description(),
		Schema:      factory.Schema(),
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.factories[factory.ID()] = factory
	r.catalog[factory.ID()] = def

	r.logger.Debug("registered node type", "type", factory.ID(), "category", factory.Category())
}

// Unregister removes a node type. Unknown types are a no-op.
func (r *Registry) Unregister(nodeType string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.factories, nodeType)
	delete(r.catalog, nodeType)
}

// Exists reports whether the node type is registered.
func (r *Registry) Exists(nodeType string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.factories[nodeType]

	return ok
}

// Create builds a node instance for the given type. Unknown types return
// ErrUnknownNodeType; factory errors and panics come back wrapped in a
// ConstructionError.
func (r *Registry) Create(ctx context.Context, nodeType, nodeID string, data map[string]any) (protocol.Node, error) {
	r.mu.RLock()
	factory, ok := r.factories[nodeType]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNodeType, nodeType)
	}

	return safeCreate(ctx, factory, nodeID, data)
}

// Definition returns the catalog entry for a node type.
func (r *Registry) Definition(nodeType string) (NodeDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.catalog[nodeType]

	return def, ok
}

// Catalog returns every registered type's definition, sorted by type ID.
func (r *Registry) Catalog() []NodeDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]NodeDefinition, 0, len(r.catalog))
	for _, def := range r.catalog {
		defs = append(defs, def)
	}

	sort.Slice(defs, func(i, j int) bool { return defs[i].Type < defs[j].Type })

	return defs
}

// ListByCategory returns the definitions of one category, sorted by type ID.
func (r *Registry) ListByCategory(category models.Category) []NodeDefinition {
	var defs []NodeDefinition

	for _, def := range r.Catalog() {
		if def.Category == category {
			defs = append(defs, def)
		}
	}

	return defs
}

// Stats returns the registered type count per category.
func (r *Registry) Stats() map[models.Category]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := make(map[models.Category]int)
	for _, def := range r.catalog {
		stats[def.Category]++
	}

	return stats
}

// safeCreate shields the registry from factory panics so one broken factory
// cannot take down the caller.
func safeCreate(ctx context.Context, factory protocol.NodeFactory, nodeID string, data map[string]any) (node protocol.Node, err error) {
	defer func() {
		if r := recover(); r != nil {
			node = nil
			err = &ConstructionError{
				NodeType: factory.ID(),
				NodeID:   nodeID,
				Err:      fmt.Errorf("factory panicked: %v", r),
			}
		}
	}()

	node, err = factory.Create(ctx, nodeID, data)
	if err != nil {
		return nil, &ConstructionError{NodeType: factory.ID(), NodeID: nodeID, Err: err}
	}

	return node, nil
}
