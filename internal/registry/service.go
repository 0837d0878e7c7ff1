// Package registry registers wallet descriptors with the wallet-tracking
// service and builds the descriptor-to-name lookup the classifier reads.
// Registration failures are per-wallet and non-fatal: a failed wallet is
// logged and left out of the book, nothing else stops.
package registry

import (
	"context"

	"nbxwatch/internal/pkg/logger"
	"nbxwatch/internal/pkg/resilience/retry"
)

// logDescriptorMaxLen truncates descriptors in log lines; xpubs are long.
const logDescriptorMaxLen = 80

// Outcome is the per-wallet registration result.
type Outcome int

const (
	// OutcomeRegistered means the service accepted the descriptor.
	OutcomeRegistered Outcome = iota
	// OutcomeAlreadyRegistered means the descriptor was known already.
	OutcomeAlreadyRegistered
	// OutcomeSkippedManaged means the wallet is pre-registered elsewhere.
	OutcomeSkippedManaged
	// OutcomeSkippedNoDescriptor means the wallet had neither xpub nor
	// derivation and cannot be watched.
	OutcomeSkippedNoDescriptor
	// OutcomeFailed means registration failed; the wallet is excluded from
	// the derivation book.
	OutcomeFailed
)

// Result pairs a wallet with its registration outcome.
type Result struct {
	Wallet  Wallet
	Outcome Outcome
	Err     error
}

// Registrar sends one descriptor to the tracking service. alreadyRegistered
// is true when the service reported the descriptor as known.
type Registrar interface {
	RegisterDerivation(ctx context.Context, descriptor string) (alreadyRegistered bool, err error)
}

// Service registers all configured wallets and produces the derivation book.
type Service interface {
	// RegisterAll processes every wallet and returns the book of
	// successfully registered (or managed) descriptors plus per-wallet
	// results. It never returns an error: failures are contained per
	// wallet.
	RegisterAll(ctx context.Context, wallets []Wallet) (DerivationBook, []Result)
}

type service struct {
	registrar Registrar
	retry     retry.Retry
}

var _ Service = (*service)(nil)

type config struct {
	retry retry.Retry
}

// Option configures the registry service.
type Option func(*config)

// WithRetry wraps each registration call in the given retry policy.
func WithRetry(r retry.Retry) Option {
	return func(c *config) {
		c.retry = r
	}
}

// New builds a registry service over the given registrar.
func New(registrar Registrar, opts ...Option) *service {
	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &service{
		registrar: registrar,
		retry:     cfg.retry,
	}
}

func (s *service) RegisterAll(ctx context.Context, wallets []Wallet) (DerivationBook, []Result) {
	book := make(DerivationBook)
	results := make([]Result, 0, len(wallets))

	for _, wallet := range wallets {
		result := s.registerWallet(ctx, wallet)
		results = append(results, result)

		switch result.Outcome {
		case OutcomeRegistered, OutcomeAlreadyRegistered, OutcomeSkippedManaged:
			book[wallet.Descriptor()] = wallet.Name
		}
	}

	return book, results
}

func (s *service) registerWallet(ctx context.Context, wallet Wallet) Result {
	if err := wallet.validate(); err != nil {
		return Result{Wallet: wallet, Outcome: OutcomeFailed, Err: err}
	}

	if wallet.IsManaged() {
		logger.Info(ctx, "wallet uses managed derivation, not registering",
			"wallet", wallet.Name,
		)
		return Result{Wallet: wallet, Outcome: OutcomeSkippedManaged}
	}

	if wallet.XPub == "" {
		logger.Warn(ctx, "wallet has neither xpub nor derivation, skipping",
			"wallet", wallet.Name,
		)
		return Result{Wallet: wallet, Outcome: OutcomeSkippedNoDescriptor}
	}

	logger.Info(ctx, "registering single-sig xpub",
		"wallet", wallet.Name,
		"xpub", truncate(wallet.XPub, logDescriptorMaxLen),
	)

	alreadyRegistered, err := s.register(ctx, wallet.XPub)
	if err != nil {
		logger.Error(ctx, "wallet registration failed, excluding from watch",
			"wallet", wallet.Name,
			"error", err,
		)
		return Result{Wallet: wallet, Outcome: OutcomeFailed, Err: err}
	}

	outcome := OutcomeRegistered
	if alreadyRegistered {
		outcome = OutcomeAlreadyRegistered
	}
	return Result{Wallet: wallet, Outcome: outcome}
}

// register performs one registration, with retries when configured.
func (s *service) register(ctx context.Context, descriptor string) (bool, error) {
	if s.retry == nil {
		return s.registrar.RegisterDerivation(ctx, descriptor)
	}

	var alreadyRegistered bool
	err := s.retry.Execute(ctx, func() error {
		var err error
		alreadyRegistered, err = s.registrar.RegisterDerivation(ctx, descriptor)
		return err
	})
	return alreadyRegistered, err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
