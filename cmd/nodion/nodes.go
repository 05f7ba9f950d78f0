package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/jalleo/nodion/pkg/cmd"
	"github.com/jalleo/nodion/pkg/log"
)

func NewNodesCommand() *cli.Command {
	return &cli.Command{
		Name:    "nodes",
		Aliases: []string{"n"},
		Usage:   "List the node type catalog",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the catalog as JSON, including data schemas",
			},
		},
		Action: nodesAction,
	}
}

func nodesAction(ctx context.Context, command *cli.Command) error {
	logger := log.WithModule("nodes")

	collaborators, err := cmd.NewCollaborators(ctx, logger, cmd.CollaboratorConfig{})
	if err != nil {
		return err
	}

	catalog := cmd.NewRegistry(logger, collaborators).Catalog()

	if command.Bool("json") {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")

		return encoder.Encode(catalog)
	}

	_, _ = fmt.Fprintln(os.Stdout, "Available Node Types:")
	_, _ = fmt.Fprintln(os.Stdout, "=====================")

	for _, def := range catalog {
		_, _ = fmt.Fprintf(os.Stdout, "\n%s (%s)\n", def.Type, def.Category)
		_, _ = fmt.Fprintf(os.Stdout, "  %s: %s\n", def.Name, def.Description)
	}

	_, _ = fmt.Fprintf(os.Stdout, "\nTotal: %d node types\n", len(catalog))

	return nil
}
