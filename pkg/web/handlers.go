package web

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/jalleo/nodion/pkg/engine"
	"github.com/jalleo/nodion/pkg/models"
	"github.com/jalleo/nodion/pkg/registry"
	"github.com/jalleo/nodion/pkg/store"
)

// Handlers carries the API's collaborators.
type Handlers struct {
	store     store.Store
	engine    *engine.Engine
	registry  *registry.Registry
	validator *validator.Validate
	logger    *slog.Logger
}

func NewHandlers(st store.Store, eng *engine.Engine, reg *registry.Registry, logger *slog.Logger) *Handlers {
	return &Handlers{
		store:     st,
		engine:    eng,
		registry:  reg,
		validator: validator.New(validator.WithRequiredStructEnabled()),
		logger:    logger.With("module", "web"),
	}
}

// HealthCheck reports readiness: the store must answer.
func (h *Handlers) HealthCheck(c fiber.Ctx) error {
	if err := h.store.HealthCheck(c.Context()); err != nil {
		h.logger.ErrorContext(c.Context(), "health check failed", "error", err)

		return serviceUnavailable(c, "store unavailable")
	}

	return c.JSON(fiber.Map{"status": "ok"})
}

// ListNodes returns the node type catalog, optionally filtered by category.
func (h *Handlers) ListNodes(c fiber.Ctx) error {
	if category := c.Query("category"); category != "" {
		return c.JSON(h.registry.ListByCategory(models.Category(category)))
	}

	return c.JSON(h.registry.Catalog())
}

// ListWorkflows returns every stored workflow with its running state.
func (h *Handlers) ListWorkflows(c fiber.Ctx) error {
	workflows, err := h.store.Workflows(c.Context())
	if err != nil {
		return handleStoreError(c, err)
	}

	summaries := make([]WorkflowSummary, 0, len(workflows))
	for _, wf := range workflows {
		summaries = append(summaries, WorkflowSummary{Workflow: wf, Running: h.engine.IsRunning(wf.ID)})
	}

	return c.JSON(fiber.Map{
		"workflows":   summaries,
		"total_count": len(summaries),
	})
}

// GetWorkflow returns one workflow definition.
func (h *Handlers) GetWorkflow(c fiber.Ctx) error {
	wf, err := h.store.WorkflowByID(c.Context(), c.Params("id"))
	if err != nil {
		return handleStoreError(c, err)
	}

	return c.JSON(WorkflowSummary{Workflow: wf, Running: h.engine.IsRunning(wf.ID)})
}

// CreateWorkflow stores a new workflow with a generated ID.
func (h *Handlers) CreateWorkflow(c fiber.Ctx) error {
	var req SaveWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON body: "+err.Error())
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, "Validation failed: "+err.Error())
	}

	wf := req.ToWorkflow("wf-" + uuid.New().String())

	if err := h.store.SaveWorkflow(c.Context(), wf); err != nil {
		return handleStoreError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(wf)
}

// UpdateWorkflow replaces a workflow definition. A running workflow keeps
// executing the old graph until it is restarted.
func (h *Handlers) UpdateWorkflow(c fiber.Ctx) error {
	id := c.Params("id")

	existing, err := h.store.WorkflowByID(c.Context(), id)
	if err != nil {
		return handleStoreError(c, err)
	}

	var req SaveWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON body: "+err.Error())
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, "Validation failed: "+err.Error())
	}

	wf := req.ToWorkflow(id)
	wf.CreatedAt = existing.CreatedAt

	if err := h.store.SaveWorkflow(c.Context(), wf); err != nil {
		return handleStoreError(c, err)
	}

	return c.JSON(WorkflowSummary{Workflow: wf, Running: h.engine.IsRunning(id)})
}

// DeleteWorkflow stops the workflow if running and removes it.
func (h *Handlers) DeleteWorkflow(c fiber.Ctx) error {
	id := c.Params("id")

	if h.engine.IsRunning(id) {
		if err := h.engine.StopWorkflow(c.Context(), id); err != nil {
			h.logger.WarnContext(c.Context(), "failed to stop workflow before delete", "workflow_id", id, "error", err)
		}
	}

	if err := h.store.DeleteWorkflow(c.Context(), id); err != nil {
		return handleStoreError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ValidateWorkflow runs graph validation and returns the report.
func (h *Handlers) ValidateWorkflow(c fiber.Ctx) error {
	wf, err := h.store.WorkflowByID(c.Context(), c.Params("id"))
	if err != nil {
		return handleStoreError(c, err)
	}

	return c.JSON(h.engine.ValidateGraph(c.Context(), wf))
}

// StartWorkflow validates the graph and arms its triggers. An invalid
// graph never starts.
func (h *Handlers) StartWorkflow(c fiber.Ctx) error {
	wf, err := h.store.WorkflowByID(c.Context(), c.Params("id"))
	if err != nil {
		return handleStoreError(c, err)
	}

	report := h.engine.ValidateGraph(c.Context(), wf)
	if !report.Valid {
		return unprocessable(c, "workflow is invalid: "+strings.Join(report.Errors, "; "))
	}

	if err := h.engine.StartWorkflow(c.Context(), wf); err != nil {
		// Some triggers may still have armed; report what happened
		// without unwinding them.
		return c.Status(fiber.StatusMultiStatus).JSON(fiber.Map{
			"workflow_id": wf.ID,
			"status":      "partial",
			"error":       err.Error(),
			"warnings":    report.Warnings,
		})
	}

	return c.JSON(fiber.Map{
		"workflow_id": wf.ID,
		"status":      "started",
		"warnings":    report.Warnings,
	})
}

// StopWorkflow disarms the workflow's triggers.
func (h *Handlers) StopWorkflow(c fiber.Ctx) error {
	id := c.Params("id")

	if err := h.engine.StopWorkflow(c.Context(), id); err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{"workflow_id": id, "status": "stopped"})
}

// ExecuteWorkflow runs one manual traversal and returns the sealed record.
// The record reports its own failure; only an unknown workflow or trigger
// node is an API error.
func (h *Handlers) ExecuteWorkflow(c fiber.Ctx) error {
	wf, err := h.store.WorkflowByID(c.Context(), c.Params("id"))
	if err != nil {
		return handleStoreError(c, err)
	}

	var req ExecuteWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON body: "+err.Error())
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, "Validation failed: "+err.Error())
	}

	if wf.NodeByID(req.TriggerNodeID) == nil {
		return notFound(c, "trigger node not found in workflow")
	}

	record, _ := h.engine.ExecuteWorkflow(c.Context(), wf, req.TriggerNodeID, req.Payload)

	return c.JSON(record)
}

// ListActiveExecutions returns the traversals still in flight.
func (h *Handlers) ListActiveExecutions(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"executions": h.engine.ActiveExecutions()})
}

// ListRecentExecutions returns sealed records, newest last. The limit
// query parameter trims to the newest N.
func (h *Handlers) ListRecentExecutions(c fiber.Ctx) error {
	records := h.engine.RecentExecutions()

	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 0 {
			return badRequest(c, "limit must be a non-negative integer")
		}

		if limit < len(records) {
			records = records[len(records)-limit:]
		}
	}

	return c.JSON(fiber.Map{"executions": records})
}

// GetExecution returns one sealed record by ID.
func (h *Handlers) GetExecution(c fiber.Ctx) error {
	record, ok := h.engine.Execution(c.Params("id"))
	if !ok {
		return notFound(c, "execution not found")
	}

	return c.JSON(record)
}

// GetStats reports engine activity and the registered node types.
func (h *Handlers) GetStats(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"engine":     h.engine.Stats(),
		"node_types": h.registry.Stats(),
	})
}
