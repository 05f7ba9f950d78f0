package registry

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jalleo/nodion/pkg/models"
	"github.com/jalleo/nodion/pkg/protocol"
)

type stubNode struct {
	id   string
	data map[string]any
}

func (n *stubNode) ID() string                { return n.id }
func (n *stubNode) Type() string              { return "utility:stub" }
func (n *stubNode) Category() models.Category { return models.CategoryUtility }
func (n *stubNode) InputPorts() []models.Port { return protocol.ExecInputPorts() }
func (n *stubNode) OutputPorts() []models.Port {
	return []models.Port{{ID: protocol.OutputPortDone, Kind: models.PortKindExecution}}
}
func (n *stubNode) DefaultData() map[string]any { return map[string]any{"mode": "noop"} }
func (n *stubNode) Execute(context.Context, *models.ExecutionContext, map[string]any) models.ExecutionResult {
	return protocol.Succeed(map[string]any{protocol.OutputPortDone: true})
}
func (n *stubNode) Validate() *models.ValidationReport { return models.NewValidationReport() }

type stubFactory struct {
	typeID   string
	category models.Category
	fail     error
	panics   bool
}

func (f *stubFactory) ID() string                { return f.typeID }
func (f *stubFactory) Category() models.Category { return f.category }
func (f *stubFactory) Name() string              { return "Stub" }
func (f *stubFactory) Description() string       { return "Test double" }
func (f *stubFactory) Schema() map[string]any    { return map[string]any{"type": "object"} }

func (f *stubFactory) Create(_ context.Context, id string, data map[string]any) (protocol.Node, error) {
	if f.panics {
		panic("factory blew up")
	}

	if f.fail != nil {
		return nil, f.fail
	}

	return &stubNode{id: id, data: data}, nil
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()

	return NewRegistry(slog.Default())
}

func TestRegistryCreate(t *testing.T) {
	r := newTestRegistry(t)
	r.Register(&stubFactory{typeID: "utility:stub", category: models.CategoryUtility})

	node, err := r.Create(context.Background(), "utility:stub", "node-1", map[string]any{"mode": "loud"})

	require.NoError(t, err)
	assert.Equal(t, "node-1", node.ID())
	assert.Equal(t, models.CategoryUtility, node.Category())
}

func TestRegistryCreateUnknownType(t *testing.T) {
	r := newTestRegistry(t)

	node, err := r.Create(context.Background(), "action:teleport", "node-1", nil)

	require.Error(t, err)
	assert.Nil(t, node)
	assert.True(t, IsUnknownNodeType(err))
	assert.Contains(t, err.Error(), "action:teleport")
}

func TestRegistryCreateWrapsFactoryError(t *testing.T) {
	r := newTestRegistry(t)
	factory := &stubFactory{typeID: "utility:stub", category: models.CategoryUtility}
	r.Register(factory)

	factory.fail = errors.New("missing required field")

	node, err := r.Create(context.Background(), "utility:stub", "node-1", nil)

	require.Error(t, err)
	assert.Nil(t, node)
	assert.True(t, IsConstructionError(err))

	var ce *ConstructionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "utility:stub", ce.NodeType)
	assert.Equal(t, "node-1", ce.NodeID)
}

func TestRegistryCreateRecoversFactoryPanic(t *testing.T) {
	r := newTestRegistry(t)
	factory := &stubFactory{typeID: "utility:stub", category: models.CategoryUtility}
	r.Register(factory)

	factory.panics = true

	node, err := r.Create(context.Background(), "utility:stub", "node-1", nil)

	require.Error(t, err)
	assert.Nil(t, node)
	assert.True(t, IsConstructionError(err))
	assert.Contains(t, err.Error(), "factory panicked")
}

func TestRegistryCatalogAndStats(t *testing.T) {
	r := newTestRegistry(t)
	r.Register(&stubFactory{typeID: "utility:stub", category: models.CategoryUtility})
	r.Register(&stubFactory{typeID: "action:stub", category: models.CategoryAction})

	catalog := r.Catalog()
	require.Len(t, catalog, 2)
	// Sorted by type ID regardless of registration order.
	assert.Equal(t, "action:stub", catalog[0].Type)
	assert.Equal(t, "utility:stub", catalog[1].Type)
	assert.Equal(t, "Stub", catalog[1].Name)
	assert.NotEmpty(t, catalog[1].Schema)

	assert.True(t, r.Exists("utility:stub"))
	assert.False(t, r.Exists("utility:ghost"))

	stats := r.Stats()
	assert.Equal(t, 1, stats[models.CategoryUtility])
	assert.Equal(t, 1, stats[models.CategoryAction])

	actions := r.ListByCategory(models.CategoryAction)
	require.Len(t, actions, 1)
	assert.Equal(t, "action:stub", actions[0].Type)
}

func TestRegistryUnregister(t *testing.T) {
	r := newTestRegistry(t)
	r.Register(&stubFactory{typeID: "utility:stub", category: models.CategoryUtility})

	r.Unregister("utility:stub")

	assert.False(t, r.Exists("utility:stub"))

	_, err := r.Create(context.Background(), "utility:stub", "node-1", nil)
	assert.True(t, IsUnknownNodeType(err))
}

func TestRegisterDefaultNodes(t *testing.T) {
	r := newTestRegistry(t)
	r.RegisterDefaultNodes(Deps{Logger: slog.Default()})

	for _, nodeType := range []string{
		models.NodeTypePositionTrigger,
		models.NodeTypeScheduleTrigger,
		models.NodeTypeQueueTrigger,
		models.NodeTypeKafkaTrigger,
		models.NodeTypePriceMultiple,
		models.NodeTypeExpression,
		models.NodeTypeSellPosition,
		models.NodeTypeHTTPRequest,
		models.NodeTypeLog,
		models.NodeTypeDelay,
		models.NodeTypeLoop,
		models.NodeTypeTransform,
	} {
		assert.True(t, r.Exists(nodeType), "expected %s to be registered", nodeType)
	}

	stats := r.Stats()
	assert.Equal(t, 4, stats[models.CategoryTrigger])
	assert.Equal(t, 2, stats[models.CategoryCondition])
	assert.Equal(t, 2, stats[models.CategoryAction])
	assert.Equal(t, 4, stats[models.CategoryUtility])
}
