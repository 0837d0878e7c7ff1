package redis

import (
	"context"
	"fmt"

	"nbxwatch/internal/txwatch"
)

// seenKeyPrefix namespaces all seen-set keys.
const seenKeyPrefix = "nbxwatch:seen"

// Keys carry no TTL: the seen sets are monotone observation logs, so entries
// are never evicted.

func transactionKey(derivation, txID string) string {
	return fmt.Sprintf("%s:tx:%s:%s", seenKeyPrefix, derivation, txID)
}

func walletKey(derivation string) string {
	return fmt.Sprintf("%s:wallet:%s", seenKeyPrefix, derivation)
}

// ClaimTransaction atomically records the (derivation, txID) pair via SETNX.
// The first caller to set the key wins; every later claim reports a
// duplicate, including claims from a restarted process.
func (c *client) ClaimTransaction(ctx context.Context, derivation, txID string) (bool, error) {
	return c.conn.SetNX(ctx, transactionKey(derivation, txID), "1", 0).Result()
}

// ClaimWalletActivity atomically records the wallet's first notification.
func (c *client) ClaimWalletActivity(ctx context.Context, derivation string) (bool, error) {
	return c.conn.SetNX(ctx, walletKey(derivation), "1", 0).Result()
}

// Ensure the client satisfies the txwatch.SeenStore interface.
var _ txwatch.SeenStore = (*client)(nil)
