package web

import (
	"log/slog"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/jalleo/nodion/pkg/engine"
	"github.com/jalleo/nodion/pkg/registry"
	"github.com/jalleo/nodion/pkg/store"
)

// Config wires the API's collaborators.
type Config struct {
	Logger   *slog.Logger
	Store    store.Store
	Engine   *engine.Engine
	Registry *registry.Registry
}

// NewApp builds the fiber application with all routes mounted.
func NewApp(cfg Config) *fiber.App {
	handlers := NewHandlers(cfg.Store, cfg.Engine, cfg.Registry, cfg.Logger)

	app := fiber.New(fiber.Config{AppName: "nodion"})
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("nodion API")
	})

	app.Get("/health", handlers.HealthCheck)
	app.Get("/nodes", handlers.ListNodes)

	w := app.Group("/workflows")
	w.Get("/", handlers.ListWorkflows)
	w.Post("/", handlers.CreateWorkflow)
	w.Get("/:id", handlers.GetWorkflow)
	w.Put("/:id", handlers.UpdateWorkflow)
	w.Delete("/:id", handlers.DeleteWorkflow)
	w.Post("/:id/validate", handlers.ValidateWorkflow)
	w.Post("/:id/start", handlers.StartWorkflow)
	w.Post("/:id/stop", handlers.StopWorkflow)
	w.Post("/:id/execute", handlers.ExecuteWorkflow)

	e := app.Group("/executions")
	e.Get("/", handlers.ListActiveExecutions)
	e.Get("/recent", handlers.ListRecentExecutions)
	e.Get("/:id", handlers.GetExecution)

	app.Get("/stats", handlers.GetStats)

	return app
}
