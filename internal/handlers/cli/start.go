package cli

import (
	"context"
	"os/signal"
	"syscall"

	"nbxwatch/internal/config"
	"nbxwatch/internal/pkg/logger"
	"nbxwatch/internal/pkg/resilience/retry"
	"nbxwatch/internal/registry"
	"nbxwatch/internal/txwatch"
	"nbxwatch/internal/watcher"

	"github.com/urfave/cli/v3"
)

// startCommand runs the full pipeline: register every configured wallet,
// then watch the event feed until an interrupt arrives.
//
// Usage:
//
//	nbxwatch start [--config /path/to/nbxwatch.conf]
func startCommand(rt config.Runtime) *cli.Command {
	return &cli.Command{
		Name:        "start",
		Description: "Registers configured wallets and watches the event feed, emailing one notification per new transaction.",
		Usage:       "Runs until it receives SIGINT or SIGTERM, then shuts down cleanly.",
		Flags:       []cli.Flag{configFlag(rt)},
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return err
			}
			logger.Info(ctx, "configuration loaded",
				"path", c.String("config"),
				"wallets", len(cfg.Wallets),
			)

			nbx := newNBXClient(cfg)

			reg := registry.New(nbx, registry.WithRetry(retry.New()))
			book, results := reg.RegisterAll(ctx, registryWallets(cfg))
			logRegistrationSummary(ctx, results)

			seen, closeSeen, err := newSeenStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = closeSeen() }()

			w := watcher.New(
				nbx,
				txwatch.New(seen, book),
				nbx,
				newComposer(cfg),
				newDispatcher(ctx, cfg),
			)

			if err := w.Run(ctx); err != nil {
				return err
			}

			logger.Info(ctx, "nbxwatch stopped on shutdown signal")
			return nil
		},
	}
}

func logRegistrationSummary(ctx context.Context, results []registry.Result) {
	var registered, failed int
	for _, result := range results {
		switch result.Outcome {
		case registry.OutcomeRegistered, registry.OutcomeAlreadyRegistered, registry.OutcomeSkippedManaged:
			registered++
		case registry.OutcomeFailed:
			failed++
		}
	}

	logger.Info(ctx, "wallet registration finished",
		"watched", registered,
		"failed", failed,
		"total", len(results),
	)
}
