package cli

import (
	"context"
	"time"

	"nbxwatch/internal/config"
	"nbxwatch/internal/txwatch"

	"github.com/urfave/cli/v3"
)

// sendTestCommand dispatches a synthetic notification so operators can
// verify the SMTP and PGP path without waiting for a real transaction.
//
// Usage:
//
//	nbxwatch send-test [--config /path/to/nbxwatch.conf]
func sendTestCommand(rt config.Runtime) *cli.Command {
	return &cli.Command{
		Name:        "send-test",
		Description: "Composes a synthetic transaction notification and sends it through the configured mail path.",
		Usage:       "End-to-end check of SMTP settings and, when enabled, PGP encryption.",
		Flags:       []cli.Flag{configFlag(rt)},
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return err
			}

			activity := txwatch.Activity{
				WalletName: "nbxwatch self-test",
				Direction:  txwatch.DirectionInbound,
				AmountSats: 12_345,
				TxID:       "0000000000000000000000000000000000000000000000000000000000000000",
			}

			composer := newComposer(cfg)
			body := composer.Body(activity, activity.AmountSats, time.Now().UTC())

			return newDispatcher(ctx, cfg).Dispatch(ctx, composer.Subject(activity.WalletName), body)
		},
	}
}
