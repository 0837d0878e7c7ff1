package watcher

import (
	"context"
	"time"
)

// EventKind discriminates the event variant. Modeling the type as a tagged
// union keeps handling exhaustive instead of probing dynamic fields.
type EventKind int

const (
	// KindOther covers event types the watcher does not act on.
	KindOther EventKind = iota
	// KindNewTransaction is a transaction update for a tracked wallet.
	KindNewTransaction
	// KindNewBlock announces a newly mined block.
	KindNewBlock
)

// Event is one entry from the tracking service's event feed. ID is the
// monotonic cursor value; exactly one of Transaction/Block is set according
// to Kind.
type Event struct {
	ID      int64
	Kind    EventKind
	RawType string

	Transaction *TransactionEvent
	Block       *BlockEvent
}

// TransactionEvent carries the wallet-scoped view of a transaction. The
// input/output value lists already reflect only this wallet's owned coins,
// as reported by the tracking service.
type TransactionEvent struct {
	DerivationStrategy string
	TxHash             string

	// Confirmations is nil when the feed omitted the field, which counts
	// as 0 (still in the mempool).
	Confirmations *int

	InputsSats  []int64
	OutputsSats []int64

	// ObservedAt is when the tracking service first saw the transaction.
	// Zero when the feed provided no usable timestamp.
	ObservedAt time.Time
}

// BlockEvent announces a newly mined block.
type BlockEvent struct {
	Height int64
	Hash   string
}

// EventSource yields a lazy, infinite sequence of events starting after
// fromEventID. The returned channel is closed only when ctx is canceled;
// transport failures are retried internally without advancing the cursor.
type EventSource interface {
	StreamEvents(ctx context.Context, fromEventID int64) <-chan Event
}

// BalanceResolver fetches a wallet's confirmed balance in sats. It never
// fails: on any error the balance degrades to 0 and degraded is true, so
// balance unavailability cannot suppress a transaction alert.
type BalanceResolver interface {
	WalletBalanceSats(ctx context.Context, derivation string) (sats int64, degraded bool)
}
