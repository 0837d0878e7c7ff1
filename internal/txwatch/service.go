// Package txwatch classifies transaction events: it keeps only first
// broadcasts, deduplicates them, resolves the owning wallet and computes the
// net direction and amount. The dedup claim happens before any external I/O
// so a replayed event cannot cause duplicate side effects downstream.
package txwatch

import (
	"context"

	"nbxwatch/internal/pkg/logger"
)

// Verdict says what to do with a transaction update.
type Verdict int

const (
	// VerdictNotify means the update is a first-seen broadcast and the
	// returned Activity should be notified.
	VerdictNotify Verdict = iota
	// VerdictConfirmedUpdate means the update only reports confirmations
	// for a transaction already notified at broadcast time.
	VerdictConfirmedUpdate
	// VerdictDuplicate means this (derivation, txid) pair was already
	// claimed, e.g. after a stream replay.
	VerdictDuplicate
)

// Service classifies transaction updates.
type Service interface {
	// Classify inspects the update and returns the Activity to notify when
	// the verdict is VerdictNotify. For any other verdict the Activity is
	// the zero value.
	Classify(ctx context.Context, update TransactionUpdate) (Activity, Verdict)
}

type service struct {
	seen    SeenStore
	wallets WalletResolver
}

var _ Service = (*service)(nil)

// New builds a classifier over the given seen store and wallet resolver.
func New(seen SeenStore, wallets WalletResolver) *service {
	return &service{
		seen:    seen,
		wallets: wallets,
	}
}

func (s *service) Classify(ctx context.Context, update TransactionUpdate) (Activity, Verdict) {
	if !update.IsFirstBroadcast() {
		return Activity{}, VerdictConfirmedUpdate
	}

	// Store errors fail open: a duplicate notification is strictly
	// preferable to a silent miss.
	first, err := s.seen.ClaimTransaction(ctx, update.Derivation, update.TxID)
	if err != nil {
		logger.Error(ctx, "seen-store claim failed, treating transaction as unseen",
			"txid", update.TxID,
			"error", err,
		)
		first = true
	}
	if !first {
		return Activity{}, VerdictDuplicate
	}

	direction, amount := directionAndAmount(update.NetSats())

	firstForWallet, err := s.seen.ClaimWalletActivity(ctx, update.Derivation)
	if err != nil {
		logger.Error(ctx, "seen-store wallet claim failed, omitting first-seen note",
			"txid", update.TxID,
			"error", err,
		)
		firstForWallet = false
	}

	return Activity{
		WalletName:         s.wallets.NameFor(update.Derivation),
		Derivation:         update.Derivation,
		TxID:               update.TxID,
		Direction:          direction,
		AmountSats:         amount,
		FirstSeenForWallet: firstForWallet,
		ObservedAt:         update.ObservedAt,
	}, VerdictNotify
}

// directionAndAmount maps the signed net delta to a direction and an
// absolute amount.
func directionAndAmount(net int64) (Direction, int64) {
	switch {
	case net > 0:
		return DirectionInbound, net
	case net < 0:
		return DirectionOutbound, -net
	default:
		return DirectionInternal, 0
	}
}
