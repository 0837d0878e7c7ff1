// Package memory provides the default in-process seen store. State lives for
// the process lifetime only: a restart re-notifies transactions still in the
// feed's retention window, which is the accepted tradeoff for zero external
// dependencies.
package memory

import (
	"context"
	"sync"

	"nbxwatch/internal/pkg/types"
	"nbxwatch/internal/txwatch"
)

// seenKey identifies one notified transaction per wallet.
type seenKey struct {
	derivation string
	txID       string
}

// SeenStore keeps the notified-transaction and wallet-first-seen sets in
// memory. Both sets grow monotonically; there is no eviction.
type SeenStore struct {
	mu      sync.Mutex
	txs     types.Set[seenKey]
	wallets types.Set[string]
}

var _ txwatch.SeenStore = (*SeenStore)(nil)

// NewSeenStore returns an empty store.
func NewSeenStore() *SeenStore {
	return &SeenStore{
		txs:     types.NewSet[seenKey](),
		wallets: types.NewSet[string](),
	}
}

func (s *SeenStore) ClaimTransaction(ctx context.Context, derivation, txID string) (bool, error) {
	key := seenKey{derivation: derivation, txID: txID}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.txs.Has(key) {
		return false, nil
	}
	s.txs.Add(key)
	return true, nil
}

func (s *SeenStore) ClaimWalletActivity(ctx context.Context, derivation string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.wallets.Has(derivation) {
		return false, nil
	}
	s.wallets.Add(derivation)
	return true, nil
}
