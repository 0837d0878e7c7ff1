// Package smtp submits notifications over an authenticated, STARTTLS-upgraded
// SMTP session using go-mail. Each dispatch opens its own session; the
// watcher sends rarely enough that connection reuse is not worth the state.
package smtp

import (
	"context"
	"fmt"
	"time"

	"nbxwatch/internal/notify"

	"github.com/google/uuid"
	mail "github.com/wneessen/go-mail"
)

const sessionTimeout = 20 * time.Second

// Mailer sends plain-text messages to a single configured recipient.
type Mailer struct {
	host string
	port int
	user string
	pass string
	from string
	to   string
}

var _ notify.Mailer = (*Mailer)(nil)

// New builds a mailer for the given SMTP submission settings.
func New(host string, port int, user, pass, from, to string) *Mailer {
	return &Mailer{
		host: host,
		port: port,
		user: user,
		pass: pass,
		from: from,
		to:   to,
	}
}

// Send submits one message. Failures are returned to the caller, which logs
// and drops them; there is no retry queue.
func (m *Mailer) Send(ctx context.Context, subject, body string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(m.to); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}

	msg.Subject(subject)
	msg.SetMessageIDWithValue(fmt.Sprintf("%s@nbxwatch", uuid.NewString()))
	msg.SetBodyString(mail.TypeTextPlain, body)

	client, err := mail.NewClient(m.host,
		mail.WithPort(m.port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.user),
		mail.WithPassword(m.pass),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithTimeout(sessionTimeout),
	)
	if err != nil {
		return fmt.Errorf("building smtp client: %w", err)
	}

	return client.DialAndSendWithContext(ctx, msg)
}
