package notify

import (
	"context"

	"nbxwatch/internal/pkg/logger"
)

// Encrypter produces an ASCII-armored ciphertext replacing the plaintext
// body. Implementations typically shell out to an external tool.
type Encrypter interface {
	Encrypt(ctx context.Context, plaintext string) (string, error)
}

// Mailer submits one plain-text message to the configured recipient.
type Mailer interface {
	Send(ctx context.Context, subject, body string) error
}

// Dispatcher delivers a composed notification: optional encryption, then
// mail submission. Dispatch is fire-and-forget per event; failures are
// logged, never retried or queued.
type Dispatcher interface {
	Dispatch(ctx context.Context, subject, body string) error
}

type dispatcher struct {
	mailer    Mailer
	encrypter Encrypter
}

var _ Dispatcher = (*dispatcher)(nil)

type config struct {
	encrypter Encrypter
}

// Option configures the dispatcher.
type Option func(*config)

// WithEncrypter enables body encryption before submission.
func WithEncrypter(e Encrypter) Option {
	return func(c *config) {
		c.encrypter = e
	}
}

// NewDispatcher builds a dispatcher over the given mailer. A nil mailer is
// allowed: dispatches are then logged and skipped, so an incomplete mail
// configuration degrades to log-only operation instead of failing startup.
func NewDispatcher(mailer Mailer, opts ...Option) *dispatcher {
	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &dispatcher{
		mailer:    mailer,
		encrypter: cfg.encrypter,
	}
}

// Dispatch encrypts the body when an encrypter is configured and submits the
// message. An encryption failure falls back to plaintext delivery: getting
// the alert out ranks above confidentiality, and the downgrade is surfaced in
// the logs.
func (d *dispatcher) Dispatch(ctx context.Context, subject, body string) error {
	encrypted := false
	if d.encrypter != nil {
		ciphertext, err := d.encrypter.Encrypt(ctx, body)
		if err != nil {
			logger.Warn(ctx, "encryption failed, sending plaintext",
				"error", err,
			)
		} else {
			body = ciphertext
			encrypted = true
		}
	}

	if d.mailer == nil {
		logger.Warn(ctx, "mail transport not configured, notification dropped",
			"subject", subject,
		)
		return nil
	}

	if err := d.mailer.Send(ctx, subject, body); err != nil {
		logger.Error(ctx, "mail dispatch failed",
			"subject", subject,
			"encrypted", encrypted,
			"error", err,
		)
		return err
	}

	logger.Info(ctx, "notification sent",
		"subject", subject,
		"encrypted", encrypted,
	)
	return nil
}
