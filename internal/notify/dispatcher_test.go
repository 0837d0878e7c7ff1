package notify

import (
	"context"
	"errors"
	"testing"

	"nbxwatch/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	_ = logger.Init(logger.WithLevel("error"))
}

type fakeMailer struct {
	err error

	sentSubjects []string
	sentBodies   []string
}

func (f *fakeMailer) Send(_ context.Context, subject, body string) error {
	if f.err != nil {
		return f.err
	}
	f.sentSubjects = append(f.sentSubjects, subject)
	f.sentBodies = append(f.sentBodies, body)
	return nil
}

type fakeEncrypter struct {
	err error
}

func (f *fakeEncrypter) Encrypt(_ context.Context, plaintext string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "-----BEGIN PGP MESSAGE-----\n" + plaintext, nil
}

func TestDispatcherDispatch(t *testing.T) {
	t.Run("plain delivery without an encrypter", func(t *testing.T) {
		mailer := &fakeMailer{}
		d := NewDispatcher(mailer)

		err := d.Dispatch(context.Background(), "subject", "body")
		require.NoError(t, err)

		require.Len(t, mailer.sentBodies, 1)
		assert.Equal(t, []string{"subject"}, mailer.sentSubjects)
		assert.Equal(t, "body", mailer.sentBodies[0])
	})

	t.Run("encrypter replaces the body", func(t *testing.T) {
		mailer := &fakeMailer{}
		d := NewDispatcher(mailer, WithEncrypter(&fakeEncrypter{}))

		err := d.Dispatch(context.Background(), "subject", "body")
		require.NoError(t, err)

		require.Len(t, mailer.sentBodies, 1)
		assert.Contains(t, mailer.sentBodies[0], "BEGIN PGP MESSAGE")
		assert.Contains(t, mailer.sentBodies[0], "body")
	})

	t.Run("encryption failure falls back to plaintext", func(t *testing.T) {
		mailer := &fakeMailer{}
		d := NewDispatcher(mailer, WithEncrypter(&fakeEncrypter{err: errors.New("gpg: no key")}))

		err := d.Dispatch(context.Background(), "subject", "body")
		require.NoError(t, err)

		require.Len(t, mailer.sentBodies, 1)
		assert.Equal(t, "body", mailer.sentBodies[0], "the alert still goes out, unencrypted")
	})

	t.Run("nil mailer drops the notification without error", func(t *testing.T) {
		d := NewDispatcher(nil)

		err := d.Dispatch(context.Background(), "subject", "body")
		assert.NoError(t, err)
	})

	t.Run("mailer failure is returned", func(t *testing.T) {
		sendErr := errors.New("smtp: connection refused")
		d := NewDispatcher(&fakeMailer{err: sendErr})

		err := d.Dispatch(context.Background(), "subject", "body")
		assert.ErrorIs(t, err, sendErr)
	})
}
