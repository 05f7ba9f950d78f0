package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/jalleo/nodion/pkg/cmd"
	"github.com/jalleo/nodion/pkg/engine"
	"github.com/jalleo/nodion/pkg/log"
	"github.com/jalleo/nodion/pkg/models"
)

var errInvalidWorkflows = errors.New("invalid workflows found")

func NewValidateCommand() *cli.Command {
	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate stored workflow graphs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "store-url",
				Usage:   "Workflow store URL (file://<dir> or postgres://...)",
				Value:   "file://./data/workflows",
				Sources: cli.EnvVars("STORE_URL"),
			},
			&cli.StringFlag{
				Name:    "workflow-id",
				Usage:   "Validate one workflow instead of every stored one",
				Aliases: []string{"w"},
			},
		},
		Action: validateAction,
	}
}

func validateAction(ctx context.Context, command *cli.Command) error {
	logger := log.WithModule("validate")

	st, err := cmd.NewStore(ctx, logger, command.String("store-url"))
	if err != nil {
		return fmt.Errorf("failed to open workflow store: %w", err)
	}

	defer func() {
		if err := st.Close(ctx); err != nil {
			logger.Error("Failed to close workflow store", "error", err)
		}
	}()

	// Validation constructs nodes but never arms them, so unconfigured
	// collaborators are enough here.
	collaborators, err := cmd.NewCollaborators(ctx, logger, cmd.CollaboratorConfig{})
	if err != nil {
		return err
	}

	eng, err := engine.New(engine.Config{
		Registry: cmd.NewRegistry(logger, collaborators),
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	var workflows []*models.Workflow

	if id := command.String("workflow-id"); id != "" {
		wf, err := st.WorkflowByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to load workflow %q: %w", id, err)
		}

		workflows = append(workflows, wf)
	} else {
		workflows, err = st.Workflows(ctx)
		if err != nil {
			return fmt.Errorf("failed to load workflows: %w", err)
		}
	}

	invalid := 0

	for _, wf := range workflows {
		report := eng.ValidateGraph(ctx, wf)

		_, _ = fmt.Fprintf(os.Stdout, "\nWorkflow: %s (%s)\n", wf.Name, wf.ID)

		for _, msg := range report.Errors {
			_, _ = fmt.Fprintf(os.Stdout, "  ❌ %s\n", msg)
		}

		for _, msg := range report.Warnings {
			_, _ = fmt.Fprintf(os.Stdout, "  ⚠ %s\n", msg)
		}

		if report.Valid {
			_, _ = fmt.Fprintln(os.Stdout, "  ✅ valid")
		} else {
			invalid++
		}
	}

	_, _ = fmt.Fprintf(os.Stdout, "\nValidated %d workflows, %d invalid\n", len(workflows), invalid)

	if invalid > 0 {
		return fmt.Errorf("%w: %d", errInvalidWorkflows, invalid)
	}

	return nil
}
