package txwatch

import "time"

// Direction is the sign of a wallet's net balance change in a transaction.
type Direction string

const (
	// DirectionInbound means the wallet gained coins.
	DirectionInbound Direction = "Inbound"
	// DirectionOutbound means the wallet lost coins.
	DirectionOutbound Direction = "Outbound"
	// DirectionInternal means the wallet's owned inputs and outputs cancel
	// out (self-transfer, consolidation).
	DirectionInternal Direction = "Internal"
)

// TransactionUpdate is one transaction event as seen by the classifier. The
// input/output lists already contain only this wallet's owned values, so the
// net is a per-wallet delta, not a raw transaction total.
type TransactionUpdate struct {
	Derivation string
	TxID       string

	// Confirmations is nil when the feed omitted the field; absent counts
	// as 0, still in the mempool.
	Confirmations *int

	InputsSats  []int64
	OutputsSats []int64

	// ObservedAt is when the tracking service first saw the transaction;
	// zero when unknown.
	ObservedAt time.Time
}

// IsFirstBroadcast reports whether this update is the initial mempool
// appearance. Updates with one or more confirmations describe a transaction
// that was already notified on broadcast.
func (u TransactionUpdate) IsFirstBroadcast() bool {
	return u.Confirmations == nil || *u.Confirmations == 0
}

// NetSats is the wallet's balance delta: sum of owned outputs minus sum of
// owned inputs.
func (u TransactionUpdate) NetSats() int64 {
	var net int64
	for _, out := range u.OutputsSats {
		net += out
	}
	for _, in := range u.InputsSats {
		net -= in
	}
	return net
}

// Activity is a classified transaction worth notifying on.
type Activity struct {
	WalletName string
	Derivation string
	TxID       string
	Direction  Direction
	AmountSats int64

	// FirstSeenForWallet marks the first notification ever emitted for
	// this wallet in the store's lifetime; the composer attaches a caveat
	// that earlier history may not be reflected in the balance figures.
	FirstSeenForWallet bool

	ObservedAt time.Time
}
