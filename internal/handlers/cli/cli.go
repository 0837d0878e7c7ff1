// Package cli defines the nbxwatch command-line surface: the long-running
// watch loop, a one-shot registration pass, and a mail-path check.
package cli

import (
	"context"
	"os"

	"nbxwatch/internal/config"

	"github.com/urfave/cli/v3"
)

// Run builds and executes the nbxwatch CLI application.
func Run(ctx context.Context, rt config.Runtime) error {
	app := &cli.Command{
		EnableShellCompletion: true,
		Name:                  "nbxwatch",
		Description:           "Watches an NBXplorer instance for wallet transactions and emails notifications.",
		Usage:                 "nbxwatch [command] [flags]",
		Commands: []*cli.Command{
			startCommand(rt),
			registerCommand(rt),
			sendTestCommand(rt),
		},
	}

	return app.Run(ctx, os.Args)
}

// configFlag is shared by every command; the default comes from the
// NBXWATCH_CONFIG environment variable.
func configFlag(rt config.Runtime) *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "config",
		Usage: "Path to the nbxwatch INI configuration file",
		Value: rt.ConfigPath,
	}
}
