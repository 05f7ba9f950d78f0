// Package main provides the nodion service binary.
package main

import (
	"context"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"
)

var version = "dev"

func main() {
	root := &cli.Command{
		Name:                  "nodion",
		Usage:                 "Workflow automation for trading systems",
		Version:               version,
		EnableShellCompletion: true,
		Commands: []*cli.Command{
			NewRunCommand(),
			NewValidateCommand(),
			NewNodesCommand(),
		},
	}

	if err := root.Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
