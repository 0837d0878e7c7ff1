package cli

import (
	"context"

	"nbxwatch/internal/config"
	"nbxwatch/internal/infra/mailer/smtp"
	"nbxwatch/internal/infra/pgp/gpg"
	"nbxwatch/internal/infra/storage/memory"
	redisstore "nbxwatch/internal/infra/storage/redis"
	"nbxwatch/internal/nbxplorer"
	"nbxwatch/internal/notify"
	"nbxwatch/internal/pkg/logger"
	"nbxwatch/internal/registry"
	"nbxwatch/internal/txwatch"
)

// newNBXClient builds the tracking-service client from the file config.
func newNBXClient(cfg config.File) *nbxplorer.Client {
	return nbxplorer.NewClient(cfg.NBXURL, cfg.NBXUser, cfg.NBXPass)
}

// registryWallets maps config wallet sections to registry wallets.
func registryWallets(cfg config.File) []registry.Wallet {
	wallets := make([]registry.Wallet, 0, len(cfg.Wallets))
	for _, w := range cfg.Wallets {
		wallets = append(wallets, registry.Wallet{
			ID:         w.SectionID,
			Name:       w.Name,
			XPub:       w.XPub,
			Derivation: w.Derivation,
		})
	}
	return wallets
}

// newSeenStore picks the dedup backend. The default is in-memory; the redis
// backend extends at-most-once across restarts. The returned close function
// is never nil.
func newSeenStore(ctx context.Context, cfg config.File) (txwatch.SeenStore, func() error, error) {
	if cfg.DedupBackend == "redis" {
		client, err := redisstore.NewClient(ctx, cfg.RedisAddr, cfg.RedisUser, cfg.RedisPass, cfg.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		return client, client.Close, nil
	}

	return memory.NewSeenStore(), func() error { return nil }, nil
}

// newComposer builds the message composer from the file config.
func newComposer(cfg config.File) notify.Composer {
	return notify.NewComposer(
		cfg.LocalExplorerURL,
		cfg.PublicExplorerURL,
		cfg.TimezoneOffsetHours,
		cfg.TimezoneLabel,
	)
}

// newDispatcher wires the mail transport and the optional PGP step. Both
// degrade rather than fail: incomplete SMTP settings mean log-only delivery,
// and PGP without a recipient means plaintext.
func newDispatcher(ctx context.Context, cfg config.File) notify.Dispatcher {
	var opts []notify.Option
	if cfg.PGP.Enabled {
		if cfg.PGP.Recipient == "" {
			logger.Warn(ctx, "pgp enabled but no recipient configured, sending unencrypted")
		} else {
			opts = append(opts, notify.WithEncrypter(gpg.New(cfg.PGP.Recipient)))
		}
	}

	var mailer notify.Mailer
	if cfg.SMTP.Complete() {
		mailer = smtp.New(
			cfg.SMTP.Server,
			cfg.SMTP.Port,
			cfg.SMTP.User,
			cfg.SMTP.Pass,
			cfg.SMTP.From,
			cfg.SMTP.To,
		)
	} else {
		logger.Warn(ctx, "smtp configuration incomplete, notifications will be logged only")
	}

	return notify.NewDispatcher(mailer, opts...)
}
