package engine

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jalleo/nodion/pkg/eventbus"
	"github.com/jalleo/nodion/pkg/events"
	"github.com/jalleo/nodion/pkg/mocks"
	"github.com/jalleo/nodion/pkg/models"
	"github.com/jalleo/nodion/pkg/protocol"
	"github.com/jalleo/nodion/pkg/registry"
)

type eventCapture struct {
	mu    sync.Mutex
	types []events.EventType
}

func (c *eventCapture) record(args mock.Arguments) {
	event, ok := args.Get(2).(eventbus.Event)
	if !ok {
		return
	}

	c.mu.Lock()
	c.types = append(c.types, event.GetType())
	c.mu.Unlock()
}

func (c *eventCapture) snapshot() []events.EventType {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]events.EventType(nil), c.types...)
}

func newEventedEngine(t *testing.T, bus *mocks.MockEventBus) *Engine {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))

	reg := registry.NewRegistry(logger)
	reg.RegisterDefaultNodes(registry.Deps{Logger: logger, Feed: idleFeed{}, Trader: &fakeTrader{}})

	eng, err := New(Config{Registry: reg, Logger: logger, EventBus: bus})
	require.NoError(t, err)

	return eng
}

func eventedWorkflow(targetID string) *models.Workflow {
	return &models.Workflow{
		ID:   "wf-events",
		Name: "Event surface",
		Nodes: []*models.Node{
			makeNode("trigger-1", models.NodeTypeScheduleTrigger, models.CategoryTrigger, map[string]any{"cron": "0 0 * * *"}),
			makeNode("log-1", models.NodeTypeLog, models.CategoryUtility, map[string]any{"message": "hi"}),
		},
		Connections: []*models.Connection{
			makeConn("trigger-1", protocol.OutputPortFired, targetID, protocol.InputPortIn),
		},
	}
}

func TestEngine_PublishesLifecycleEvents(t *testing.T) {
	capture := &eventCapture{}

	bus := &mocks.MockEventBus{}
	bus.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil).Run(capture.record)

	eng := newEventedEngine(t, bus)
	wf := eventedWorkflow("log-1")

	ctx := context.Background()

	require.NoError(t, eng.StartWorkflow(ctx, wf))

	record, err := eng.ExecuteWorkflow(ctx, wf, "trigger-1", map[string]any{"price": 1.0})
	require.NoError(t, err)
	require.Equal(t, models.ExecutionStatusCompleted, record.Status)

	require.NoError(t, eng.StopWorkflow(ctx, wf.ID))

	assert.Equal(t, []events.EventType{
		events.WorkflowStartedEvent,
		events.ExecutionStartedEvent,
		events.NodeCompletedEvent,
		events.NodeCompletedEvent,
		events.ExecutionCompletedEvent,
		events.WorkflowStoppedEvent,
	}, capture.snapshot())

	bus.AssertExpectations(t)
}

func TestEngine_PublishesExecutionFailed(t *testing.T) {
	capture := &eventCapture{}

	bus := &mocks.MockEventBus{}
	bus.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil).Run(capture.record)

	eng := newEventedEngine(t, bus)
	wf := eventedWorkflow("ghost")

	record, err := eng.ExecuteWorkflow(context.Background(), wf, "trigger-1", nil)
	require.Error(t, err)
	require.Equal(t, models.ExecutionStatusFailed, record.Status)

	got := capture.snapshot()
	require.NotEmpty(t, got)
	assert.Equal(t, events.ExecutionFailedEvent, got[len(got)-1])
	assert.NotContains(t, got, events.ExecutionCompletedEvent)
}

func TestEngine_PublishFailureDoesNotAffectExecution(t *testing.T) {
	bus := &mocks.MockEventBus{}
	bus.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("broker unavailable"))

	eng := newEventedEngine(t, bus)
	wf := eventedWorkflow("log-1")

	record, err := eng.ExecuteWorkflow(context.Background(), wf, "trigger-1", nil)
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusCompleted, record.Status)
}
