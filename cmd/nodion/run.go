package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	cli "github.com/urfave/cli/v3"
	"go.opentelemetry.io/otel/trace"

	"github.com/jalleo/nodion/pkg/cmd"
	"github.com/jalleo/nodion/pkg/engine"
	"github.com/jalleo/nodion/pkg/log"
	"github.com/jalleo/nodion/pkg/otelhelper"
	"github.com/jalleo/nodion/pkg/store"
	"github.com/jalleo/nodion/pkg/web"
)

const shutdownTimeout = 10 * time.Second

func NewRunCommand() *cli.Command {
	return &cli.Command{
		Name:    "run",
		Aliases: []string{"r"},
		Usage:   "Arm active workflows and serve the API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "api-addr",
				Usage:   "Address for the HTTP API to listen on",
				Value:   ":9091",
				Sources: cli.EnvVars("API_ADDR"),
			},
			&cli.StringFlag{
				Name:    "store-url",
				Usage:   "Workflow store URL (file://<dir> or postgres://...)",
				Value:   "file://./data/workflows",
				Sources: cli.EnvVars("STORE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus provider (gochannel, kafka)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "kafka-brokers",
				Usage:   "Comma-separated Kafka brokers for the kafka event bus",
				Sources: cli.EnvVars("KAFKA_BROKERS"),
			},
			&cli.StringFlag{
				Name:    "redis-url",
				Usage:   "Redis URL for the position feed (redis://host:port/db)",
				Sources: cli.EnvVars("REDIS_URL"),
			},
			&cli.StringFlag{
				Name:    "positions-channel",
				Usage:   "Redis channel carrying position updates",
				Value:   "positions",
				Sources: cli.EnvVars("POSITIONS_CHANNEL"),
			},
			&cli.StringFlag{
				Name:    "trader-url",
				Usage:   "Base URL of the trading system's order API",
				Sources: cli.EnvVars("TRADER_URL"),
			},
			&cli.StringFlag{
				Name:    "trader-token",
				Usage:   "Bearer token for the trader API",
				Sources: cli.EnvVars("TRADER_TOKEN"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Enable OpenTelemetry tracing (configure via OTEL_EXPORTER_OTLP_*)",
				Sources: cli.EnvVars("TRACING"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "Log format (text, json)",
				Value:   "text",
				Sources: cli.EnvVars("LOG_FORMAT"),
			},
		},
		Action: runAction,
	}
}

func runAction(ctx context.Context, command *cli.Command) error {
	log.Setup(command.String("log-level"), command.String("log-format"))

	serviceID := "nodion-" + uuid.New().String()[:8]
	logger := log.WithModule("nodion").With("service_id", serviceID)

	logger.InfoContext(ctx, "Initializing nodion")

	var tracer trace.Tracer

	if command.Bool("tracing") {
		var err error

		tracer, err = otelhelper.NewTracer(ctx, "nodion")
		if err != nil {
			return fmt.Errorf("failed to initialize tracer: %w", err)
		}
	}

	st, err := cmd.NewStore(ctx, logger, command.String("store-url"))
	if err != nil {
		return fmt.Errorf("failed to open workflow store: %w", err)
	}

	defer func() {
		if err := st.Close(ctx); err != nil {
			logger.Error("Failed to close workflow store", "error", err)
		}
	}()

	eventBus, err := cmd.NewEventBus(command.String("event-bus"), splitBrokers(command.String("kafka-brokers")), logger)
	if err != nil {
		return fmt.Errorf("failed to create event bus: %w", err)
	}

	defer func() {
		if err := eventBus.Close(); err != nil {
			logger.Error("Failed to close event bus", "error", err)
		}
	}()

	collaborators, err := cmd.NewCollaborators(ctx, logger, cmd.CollaboratorConfig{
		RedisURL:         command.String("redis-url"),
		PositionsChannel: command.String("positions-channel"),
		TraderURL:        command.String("trader-url"),
		TraderToken:      command.String("trader-token"),
	})
	if err != nil {
		return fmt.Errorf("failed to connect trading collaborators: %w", err)
	}

	defer func() {
		if err := collaborators.Close(); err != nil {
			logger.Error("Failed to close trading collaborators", "error", err)
		}
	}()

	reg := cmd.NewRegistry(logger, collaborators)

	eng, err := engine.New(engine.Config{
		Registry: reg,
		Logger:   logger,
		EventBus: eventBus,
		Tracer:   tracer,
	})
	if err != nil {
		return fmt.Errorf("failed to build engine: %w", err)
	}

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := startActiveWorkflows(runCtx, logger, st, eng); err != nil {
		return err
	}

	app := web.NewApp(web.Config{
		Logger:   logger,
		Store:    st,
		Engine:   eng,
		Registry: reg,
	})

	go func() {
		<-runCtx.Done()
		logger.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(runCtx), shutdownTimeout)
		defer cancel()

		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			logger.Error("API shutdown failed", "error", err)
		}
	}()

	logger.Info("Serving API", "addr", command.String("api-addr"))

	if err := app.Listen(command.String("api-addr")); err != nil {
		return fmt.Errorf("api server failed: %w", err)
	}

	// The API is down; disarm the triggers before the deferred closes
	// pull the bus and store out from under them.
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := eng.Shutdown(shutdownCtx); err != nil {
		logger.Error("Engine shutdown failed", "error", err)
	}

	return nil
}

// startActiveWorkflows arms the triggers of every workflow saved with
// Active set. One bad workflow does not keep the service from starting.
func startActiveWorkflows(ctx context.Context, logger *slog.Logger, st store.Store, eng *engine.Engine) error {
	workflows, err := st.Workflows(ctx)
	if err != nil {
		return fmt.Errorf("failed to load workflows: %w", err)
	}

	started := 0

	for _, wf := range workflows {
		if !wf.Active {
			continue
		}

		if report := eng.ValidateGraph(ctx, wf); !report.Valid {
			logger.Warn("Skipping invalid workflow", "workflow_id", wf.ID, "errors", report.Errors)

			continue
		}

		if err := eng.StartWorkflow(ctx, wf); err != nil {
			logger.Error("Failed to start workflow", "workflow_id", wf.ID, "error", err)

			continue
		}

		started++
	}

	logger.Info("Armed active workflows", "started", started, "stored", len(workflows))

	return nil
}

func splitBrokers(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	brokers := make([]string, 0, len(parts))

	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			brokers = append(brokers, trimmed)
		}
	}

	return brokers
}
