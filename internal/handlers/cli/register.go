package cli

import (
	"context"

	"nbxwatch/internal/config"
	"nbxwatch/internal/pkg/logger"
	"nbxwatch/internal/pkg/resilience/retry"
	"nbxwatch/internal/registry"

	"github.com/urfave/cli/v3"
)

// registerCommand runs a one-shot registration pass without starting the
// watch loop, useful after adding wallet sections to the configuration.
//
// Usage:
//
//	nbxwatch register [--config /path/to/nbxwatch.conf]
func registerCommand(rt config.Runtime) *cli.Command {
	return &cli.Command{
		Name:        "register",
		Description: "Registers every configured wallet descriptor with the tracking service and exits.",
		Usage:       "One-shot registration pass; per-wallet failures are logged, not fatal.",
		Flags:       []cli.Flag{configFlag(rt)},
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return err
			}

			reg := registry.New(newNBXClient(cfg), registry.WithRetry(retry.New()))
			book, results := reg.RegisterAll(ctx, registryWallets(cfg))
			logRegistrationSummary(ctx, results)

			logger.Info(ctx, "derivation book built", "entries", len(book))
			return nil
		},
	}
}
