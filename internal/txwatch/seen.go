package txwatch

import "context"

// SeenStore tracks which transactions have already been notified and which
// wallets have had at least one notification. Both sets only ever grow.
//
// Claim operations are check-and-insert in one step so an implementation
// that is shared between processes still preserves the at-most-once
// notification guarantee.
type SeenStore interface {
	// ClaimTransaction records (derivation, txID) as notified. It returns
	// true only for the first claim of that pair.
	ClaimTransaction(ctx context.Context, derivation, txID string) (first bool, err error)

	// ClaimWalletActivity records that the wallet has produced at least one
	// notification. It returns true only on the wallet's first claim.
	ClaimWalletActivity(ctx context.Context, derivation string) (first bool, err error)
}

// WalletResolver maps a derivation strategy to a display name. Lookups that
// miss resolve to a sentinel unknown-wallet label rather than failing.
type WalletResolver interface {
	NameFor(derivation string) string
}
