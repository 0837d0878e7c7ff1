package txwatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"nbxwatch/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	_ = logger.Init(logger.WithLevel("error"))
}

// fakeSeenStore is an in-test store with switchable failure modes.
type fakeSeenStore struct {
	txs     map[string]bool
	wallets map[string]bool

	txErr     error
	walletErr error
}

func newFakeSeenStore() *fakeSeenStore {
	return &fakeSeenStore{
		txs:     make(map[string]bool),
		wallets: make(map[string]bool),
	}
}

func (f *fakeSeenStore) ClaimTransaction(_ context.Context, derivation, txID string) (bool, error) {
	if f.txErr != nil {
		return false, f.txErr
	}
	key := derivation + "|" + txID
	if f.txs[key] {
		return false, nil
	}
	f.txs[key] = true
	return true, nil
}

func (f *fakeSeenStore) ClaimWalletActivity(_ context.Context, derivation string) (bool, error) {
	if f.walletErr != nil {
		return false, f.walletErr
	}
	if f.wallets[derivation] {
		return false, nil
	}
	f.wallets[derivation] = true
	return true, nil
}

type staticResolver map[string]string

func (r staticResolver) NameFor(derivation string) string {
	if name, ok := r[derivation]; ok {
		return name
	}
	return "UNKNOWN WALLET"
}

func intPtr(n int) *int { return &n }

func TestServiceClassify(t *testing.T) {
	observedAt := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	baseUpdate := func() TransactionUpdate {
		return TransactionUpdate{
			Derivation:    "deriv-cold",
			TxID:          "tx-1",
			Confirmations: intPtr(0),
			OutputsSats:   []int64{10_000},
			ObservedAt:    observedAt,
		}
	}

	t.Run("first broadcast notifies", func(t *testing.T) {
		svc := New(newFakeSeenStore(), staticResolver{"deriv-cold": "Cold Storage"})

		activity, verdict := svc.Classify(context.Background(), baseUpdate())

		assert.Equal(t, VerdictNotify, verdict)
		assert.Equal(t, "Cold Storage", activity.WalletName)
		assert.Equal(t, "deriv-cold", activity.Derivation)
		assert.Equal(t, "tx-1", activity.TxID)
		assert.Equal(t, DirectionInbound, activity.Direction)
		assert.Equal(t, int64(10_000), activity.AmountSats)
		assert.True(t, activity.FirstSeenForWallet)
		assert.Equal(t, observedAt, activity.ObservedAt)
	})

	t.Run("absent confirmations counts as first broadcast", func(t *testing.T) {
		svc := New(newFakeSeenStore(), staticResolver{})

		update := baseUpdate()
		update.Confirmations = nil

		_, verdict := svc.Classify(context.Background(), update)
		assert.Equal(t, VerdictNotify, verdict)
	})

	t.Run("confirmation updates are ignored", func(t *testing.T) {
		store := newFakeSeenStore()
		svc := New(store, staticResolver{})

		update := baseUpdate()
		update.Confirmations = intPtr(1)

		activity, verdict := svc.Classify(context.Background(), update)

		assert.Equal(t, VerdictConfirmedUpdate, verdict)
		assert.Zero(t, activity)
		assert.Empty(t, store.txs, "ignored updates must not claim the txid")
	})

	t.Run("redelivered event is a duplicate", func(t *testing.T) {
		svc := New(newFakeSeenStore(), staticResolver{"deriv-cold": "Cold Storage"})

		_, verdict := svc.Classify(context.Background(), baseUpdate())
		require.Equal(t, VerdictNotify, verdict)

		activity, verdict := svc.Classify(context.Background(), baseUpdate())
		assert.Equal(t, VerdictDuplicate, verdict)
		assert.Zero(t, activity)
	})

	t.Run("same txid on another wallet is not a duplicate", func(t *testing.T) {
		svc := New(newFakeSeenStore(), staticResolver{})

		_, verdict := svc.Classify(context.Background(), baseUpdate())
		require.Equal(t, VerdictNotify, verdict)

		update := baseUpdate()
		update.Derivation = "deriv-hot"

		_, verdict = svc.Classify(context.Background(), update)
		assert.Equal(t, VerdictNotify, verdict)
	})

	t.Run("direction follows the net delta", func(t *testing.T) {
		testCases := []struct {
			name      string
			inputs    []int64
			outputs   []int64
			direction Direction
			amount    int64
		}{
			{name: "inbound", outputs: []int64{2_500, 500}, direction: DirectionInbound, amount: 3_000},
			{name: "outbound", inputs: []int64{5_000}, outputs: []int64{1_200}, direction: DirectionOutbound, amount: 3_800},
			{name: "internal", inputs: []int64{4_000}, outputs: []int64{4_000}, direction: DirectionInternal, amount: 0},
		}
		for i, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				svc := New(newFakeSeenStore(), staticResolver{})

				update := baseUpdate()
				update.TxID = "tx-" + tc.name
				update.Derivation = "deriv-" + string(rune('a'+i))
				update.InputsSats = tc.inputs
				update.OutputsSats = tc.outputs

				activity, verdict := svc.Classify(context.Background(), update)

				require.Equal(t, VerdictNotify, verdict)
				assert.Equal(t, tc.direction, activity.Direction)
				assert.Equal(t, tc.amount, activity.AmountSats)
			})
		}
	})

	t.Run("first-seen caveat only on the wallet's first notification", func(t *testing.T) {
		svc := New(newFakeSeenStore(), staticResolver{})

		first, verdict := svc.Classify(context.Background(), baseUpdate())
		require.Equal(t, VerdictNotify, verdict)
		assert.True(t, first.FirstSeenForWallet)

		update := baseUpdate()
		update.TxID = "tx-2"

		second, verdict := svc.Classify(context.Background(), update)
		require.Equal(t, VerdictNotify, verdict)
		assert.False(t, second.FirstSeenForWallet)
	})

	t.Run("unknown derivation still notifies", func(t *testing.T) {
		svc := New(newFakeSeenStore(), staticResolver{})

		activity, verdict := svc.Classify(context.Background(), baseUpdate())

		require.Equal(t, VerdictNotify, verdict)
		assert.Equal(t, "UNKNOWN WALLET", activity.WalletName)
	})

	t.Run("transaction claim errors fail open", func(t *testing.T) {
		store := newFakeSeenStore()
		store.txErr = errors.New("store offline")
		svc := New(store, staticResolver{})

		_, verdict := svc.Classify(context.Background(), baseUpdate())
		assert.Equal(t, VerdictNotify, verdict, "a duplicate beats a silent miss")
	})

	t.Run("wallet claim errors omit the caveat", func(t *testing.T) {
		store := newFakeSeenStore()
		store.walletErr = errors.New("store offline")
		svc := New(store, staticResolver{})

		activity, verdict := svc.Classify(context.Background(), baseUpdate())

		require.Equal(t, VerdictNotify, verdict)
		assert.False(t, activity.FirstSeenForWallet)
	})
}

func TestTransactionUpdateNetSats(t *testing.T) {
	update := TransactionUpdate{
		InputsSats:  []int64{1_000, 250},
		OutputsSats: []int64{2_500, 500},
	}

	assert.Equal(t, int64(1_750), update.NetSats())
	assert.Equal(t, int64(0), TransactionUpdate{}.NetSats())
}
