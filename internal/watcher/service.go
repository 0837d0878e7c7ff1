// Package watcher runs the single control loop tying the pipeline together:
// long-poll the event feed, classify transaction events, resolve the wallet
// balance, compose the notification and dispatch it. Everything is
// sequential by design; the only cancellation point is the loop's context.
package watcher

import (
	"context"
	"errors"
	"sync"
	"time"

	"nbxwatch/internal/notify"
	"nbxwatch/internal/pkg/logger"
	"nbxwatch/internal/txwatch"
)

// ErrServiceAlreadyStarted is returned when Run is called more than once.
var ErrServiceAlreadyStarted = errors.New("service already started")

// blockHashLogLen truncates block hashes in log lines.
const blockHashLogLen = 16

// Service runs the event watch loop.
type Service interface {
	// Run consumes the event stream until ctx is canceled, then returns
	// nil. Component failures are contained and logged; none of them stop
	// the loop.
	Run(ctx context.Context) error
}

type service struct {
	mu        sync.Mutex
	isStarted bool

	source     EventSource
	classifier txwatch.Service
	balances   BalanceResolver
	composer   notify.Composer
	dispatcher notify.Dispatcher

	fromEventID int64

	// now is swappable for tests; it supplies the wall-clock fallback when
	// an event carries no timestamp.
	now func() time.Time
}

var _ Service = (*service)(nil)

type config struct {
	fromEventID int64
}

// Option configures the watcher.
type Option func(*config)

// WithStartEventID resumes the stream after the given cursor instead of 0.
func WithStartEventID(id int64) Option {
	return func(c *config) {
		c.fromEventID = id
	}
}

// New wires the watch loop from its collaborators.
func New(source EventSource, classifier txwatch.Service, balances BalanceResolver, composer notify.Composer, dispatcher notify.Dispatcher, opts ...Option) *service {
	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &service{
		source:      source,
		classifier:  classifier,
		balances:    balances,
		composer:    composer,
		dispatcher:  dispatcher,
		fromEventID: cfg.fromEventID,
		now:         time.Now,
	}
}

func (s *service) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.isStarted {
		s.mu.Unlock()
		return ErrServiceAlreadyStarted
	}
	s.isStarted = true
	s.mu.Unlock()

	logger.Info(ctx, "streaming events", "from_event_id", s.fromEventID)

	for event := range s.source.StreamEvents(ctx, s.fromEventID) {
		switch event.Kind {
		case KindNewTransaction:
			s.handleTransaction(ctx, event)
		case KindNewBlock:
			logger.Info(ctx, "new block",
				"height", event.Block.Height,
				"hash", truncate(event.Block.Hash, blockHashLogLen),
			)
		default:
			logger.Debug(ctx, "unhandled event",
				"event_id", event.ID,
				"type", event.RawType,
			)
		}
	}

	// The stream only ends on cancellation; that is a clean shutdown.
	logger.Info(ctx, "event stream closed, stopping watcher")
	return nil
}

func (s *service) handleTransaction(ctx context.Context, event Event) {
	tx := event.Transaction

	activity, verdict := s.classifier.Classify(ctx, txwatch.TransactionUpdate{
		Derivation:    tx.DerivationStrategy,
		TxID:          tx.TxHash,
		Confirmations: tx.Confirmations,
		InputsSats:    tx.InputsSats,
		OutputsSats:   tx.OutputsSats,
		ObservedAt:    tx.ObservedAt,
	})

	switch verdict {
	case txwatch.VerdictConfirmedUpdate:
		logger.Debug(ctx, "confirmed update, ignored", "event_id", event.ID)
		return
	case txwatch.VerdictDuplicate:
		logger.Info(ctx, "duplicate transaction, skipped",
			"event_id", event.ID,
			"txid", tx.TxHash,
		)
		return
	}

	// Balance is resolved only after the dedup claim so a replayed event
	// cannot trigger a second round of external calls.
	endingBalance, degraded := s.balances.WalletBalanceSats(ctx, activity.Derivation)
	if degraded {
		logger.Warn(ctx, "balance unavailable, notification will show zero",
			"wallet", activity.WalletName,
			"txid", activity.TxID,
		)
	}

	observedAt := activity.ObservedAt
	if observedAt.IsZero() {
		observedAt = s.now().UTC()
	}

	logger.Info(ctx, "wallet transaction detected",
		"event_id", event.ID,
		"wallet", activity.WalletName,
		"direction", string(activity.Direction),
		"amount_sats", activity.AmountSats,
		"txid", activity.TxID,
	)

	subject := s.composer.Subject(activity.WalletName)
	body := s.composer.Body(activity, endingBalance, observedAt)

	// Dispatch failures are already logged by the dispatcher; the loop
	// moves on regardless.
	_ = s.dispatcher.Dispatch(ctx, subject, body)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
