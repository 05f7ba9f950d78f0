package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jalleo/nodion/pkg/engine"
	"github.com/jalleo/nodion/pkg/models"
	"github.com/jalleo/nodion/pkg/registry"
	"github.com/jalleo/nodion/pkg/store/file"
	"github.com/jalleo/nodion/pkg/trading"
	"github.com/jalleo/nodion/pkg/web"
)

type idleFeed struct{}

func (idleFeed) Subscribe(_ context.Context) (<-chan trading.PositionUpdate, trading.UnsubscribeFunc, error) {
	return make(chan trading.PositionUpdate), func() {}, nil
}

type noopTrader struct{}

func (noopTrader) SellPosition(_ context.Context, symbol string, percentage float64) (*trading.TradeReceipt, error) {
	return &trading.TradeReceipt{
		OrderID:    "ord-1",
		Symbol:     symbol,
		Percentage: percentage,
		ExecutedAt: time.Now().UTC(),
	}, nil
}

func setupTestApp(t *testing.T) *fiber.App {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))

	reg := registry.NewRegistry(logger)
	reg.RegisterDefaultNodes(registry.Deps{Logger: logger, Feed: idleFeed{}, Trader: noopTrader{}})

	eng, err := engine.New(engine.Config{Registry: reg, Logger: logger})
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = eng.Shutdown(context.Background())
	})

	return web.NewApp(web.Config{
		Logger:   logger,
		Store:    file.NewStore(t.TempDir(), logger),
		Engine:   eng,
		Registry: reg,
	})
}

func doJSON(t *testing.T, app *fiber.App, method, target string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader

	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)

		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	return resp, raw
}

func decodeMap(t *testing.T, raw []byte) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out), "body: %s", raw)

	return out
}

func scheduleWorkflowBody() map[string]any {
	return map[string]any{
		"name": "Nightly report",
		"nodes": []map[string]any{
			{
				"id":       "trigger-1",
				"type":     models.NodeTypeScheduleTrigger,
				"category": "trigger",
				"name":     "Midnight",
				"data":     map[string]any{"cron": "0 0 * * *"},
				"enabled":  true,
			},
			{
				"id":       "log-1",
				"type":     models.NodeTypeLog,
				"category": "utility",
				"name":     "Say hi",
				"data":     map[string]any{"message": "nightly run"},
				"enabled":  true,
			},
		},
		"connections": []map[string]any{
			{"source_node_id": "trigger-1", "source_port": "fired", "target_node_id": "log-1", "target_port": "in"},
		},
	}
}

func createWorkflow(t *testing.T, app *fiber.App, body map[string]any) string {
	t.Helper()

	resp, raw := doJSON(t, app, http.MethodPost, "/workflows", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %s", raw)

	created := decodeMap(t, raw)
	id, _ := created["id"].(string)
	require.NotEmpty(t, id)

	return id
}

func TestRootEndpoint(t *testing.T) {
	app := setupTestApp(t)

	resp, raw := doJSON(t, app, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "nodion API", string(raw))
}

func TestHealthCheck(t *testing.T) {
	app := setupTestApp(t)

	resp, raw := doJSON(t, app, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", decodeMap(t, raw)["status"])
}

func TestListNodes(t *testing.T) {
	app := setupTestApp(t)

	resp, raw := doJSON(t, app, http.MethodGet, "/nodes", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var catalog []map[string]any
	require.NoError(t, json.Unmarshal(raw, &catalog))
	assert.Len(t, catalog, 12)

	resp, raw = doJSON(t, app, http.MethodGet, "/nodes?category=trigger", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var triggers []map[string]any
	require.NoError(t, json.Unmarshal(raw, &triggers))
	assert.Len(t, triggers, 4)

	for _, def := range triggers {
		assert.Equal(t, "trigger", def["category"])
	}
}

func TestWorkflowCRUD(t *testing.T) {
	app := setupTestApp(t)

	id := createWorkflow(t, app, scheduleWorkflowBody())

	resp, raw := doJSON(t, app, http.MethodGet, "/workflows/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	fetched := decodeMap(t, raw)
	assert.Equal(t, "Nightly report", fetched["name"])
	assert.Equal(t, false, fetched["running"])

	resp, raw = doJSON(t, app, http.MethodGet, "/workflows", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	list := decodeMap(t, raw)
	assert.Equal(t, float64(1), list["total_count"])

	update := scheduleWorkflowBody()
	update["name"] = "Renamed report"

	resp, raw = doJSON(t, app, http.MethodPut, "/workflows/"+id, update)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Renamed report", decodeMap(t, raw)["name"])

	resp, _ = doJSON(t, app, http.MethodDelete, "/workflows/"+id, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, "/workflows/"+id, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpdateWorkflow_NotFound(t *testing.T) {
	app := setupTestApp(t)

	resp, _ := doJSON(t, app, http.MethodPut, "/workflows/wf-missing", scheduleWorkflowBody())
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateWorkflow_RejectsBadRequests(t *testing.T) {
	app := setupTestApp(t)

	short := scheduleWorkflowBody()
	short["name"] = "ab"

	resp, _ := doJSON(t, app, http.MethodPost, "/workflows", short)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	empty := scheduleWorkflowBody()
	empty["nodes"] = []map[string]any{}

	resp, _ = doJSON(t, app, http.MethodPost, "/workflows", empty)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	req := httptest.NewRequest(http.MethodPost, "/workflows", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestValidateWorkflow(t *testing.T) {
	app := setupTestApp(t)

	id := createWorkflow(t, app, scheduleWorkflowBody())

	resp, raw := doJSON(t, app, http.MethodPost, "/workflows/"+id+"/validate", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, decodeMap(t, raw)["valid"])

	bad := scheduleWorkflowBody()
	bad["connections"] = []map[string]any{
		{"source_node_id": "trigger-1", "source_port": "fired", "target_node_id": "ghost", "target_port": "in"},
	}
	badID := createWorkflow(t, app, bad)

	resp, raw = doJSON(t, app, http.MethodPost, "/workflows/"+badID+"/validate", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	report := decodeMap(t, raw)
	assert.Equal(t, false, report["valid"])
	assert.NotEmpty(t, report["errors"])
}

func TestStartAndStopWorkflow(t *testing.T) {
	app := setupTestApp(t)

	id := createWorkflow(t, app, scheduleWorkflowBody())

	resp, raw := doJSON(t, app, http.MethodPost, "/workflows/"+id+"/start", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", raw)
	assert.Equal(t, "started", decodeMap(t, raw)["status"])

	resp, raw = doJSON(t, app, http.MethodGet, "/workflows/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, decodeMap(t, raw)["running"])

	resp, raw = doJSON(t, app, http.MethodPost, "/workflows/"+id+"/stop", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "stopped", decodeMap(t, raw)["status"])

	resp, raw = doJSON(t, app, http.MethodGet, "/workflows/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, decodeMap(t, raw)["running"])
}

func TestStartWorkflow_RejectsInvalidGraph(t *testing.T) {
	app := setupTestApp(t)

	bad := scheduleWorkflowBody()
	bad["connections"] = []map[string]any{
		{"source_node_id": "trigger-1", "source_port": "fired", "target_node_id": "ghost", "target_port": "in"},
	}
	id := createWorkflow(t, app, bad)

	resp, raw := doJSON(t, app, http.MethodPost, "/workflows/"+id+"/start", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode, "body: %s", raw)

	resp, raw = doJSON(t, app, http.MethodGet, "/workflows/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, decodeMap(t, raw)["running"])
}

func TestStartWorkflow_NotFound(t *testing.T) {
	app := setupTestApp(t)

	resp, _ := doJSON(t, app, http.MethodPost, "/workflows/wf-missing/start", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestExecuteWorkflow(t *testing.T) {
	app := setupTestApp(t)

	id := createWorkflow(t, app, scheduleWorkflowBody())

	resp, raw := doJSON(t, app, http.MethodPost, "/workflows/"+id+"/execute", map[string]any{
		"trigger_node_id": "trigger-1",
		"payload":         map[string]any{"source": "manual"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", raw)

	record := decodeMap(t, raw)
	assert.Equal(t, string(models.ExecutionStatusCompleted), record["status"])

	nodes, ok := record["nodes"].([]any)
	require.True(t, ok)
	assert.Len(t, nodes, 2)

	executionID, _ := record["id"].(string)
	require.NotEmpty(t, executionID)

	resp, raw = doJSON(t, app, http.MethodGet, "/executions/"+executionID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, executionID, decodeMap(t, raw)["id"])
}

func TestExecuteWorkflow_UnknownTriggerNode(t *testing.T) {
	app := setupTestApp(t)

	id := createWorkflow(t, app, scheduleWorkflowBody())

	resp, _ := doJSON(t, app, http.MethodPost, "/workflows/"+id+"/execute", map[string]any{
		"trigger_node_id": "nope",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestExecuteWorkflow_RequiresTriggerNodeID(t *testing.T) {
	app := setupTestApp(t)

	id := createWorkflow(t, app, scheduleWorkflowBody())

	resp, _ := doJSON(t, app, http.MethodPost, "/workflows/"+id+"/execute", map[string]any{
		"payload": map[string]any{"k": "v"},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExecutionsAndStats(t *testing.T) {
	app := setupTestApp(t)

	id := createWorkflow(t, app, scheduleWorkflowBody())

	for range 3 {
		resp, raw := doJSON(t, app, http.MethodPost, "/workflows/"+id+"/execute", map[string]any{
			"trigger_node_id": "trigger-1",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", raw)
	}

	resp, raw := doJSON(t, app, http.MethodGet, "/executions/recent", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	recent, ok := decodeMap(t, raw)["executions"].([]any)
	require.True(t, ok)
	assert.Len(t, recent, 3)

	resp, raw = doJSON(t, app, http.MethodGet, "/executions/recent?limit=2", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	recent, ok = decodeMap(t, raw)["executions"].([]any)
	require.True(t, ok)
	assert.Len(t, recent, 2)

	resp, _ = doJSON(t, app, http.MethodGet, "/executions/recent?limit=oops", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, raw = doJSON(t, app, http.MethodGet, "/executions", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	active, ok := decodeMap(t, raw)["executions"].([]any)
	require.True(t, ok)
	assert.Empty(t, active, "manual executions run synchronously")

	resp, raw = doJSON(t, app, http.MethodGet, "/stats", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	stats := decodeMap(t, raw)

	engineStats, ok := stats["engine"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(3), engineStats["total_executions"])

	nodeTypes, ok := stats["node_types"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(4), nodeTypes["trigger"])
}

func TestGetExecution_NotFound(t *testing.T) {
	app := setupTestApp(t)

	resp, _ := doJSON(t, app, http.MethodGet, "/executions/exec-missing", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
