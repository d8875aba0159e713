// Package mail holds the outbound mail collaborators. Actual SMTP delivery
// lives outside this service; the development mailer writes messages to the
// log so reset tokens are visible without a mail provider.
package mail

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/wandertrails/tours-api/internal/core/ports"
)

// LogMailer is the development ports.Mailer: it logs instead of sending.
type LogMailer struct {
	log zerolog.Logger
}

func NewLogMailer(log zerolog.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(_ context.Context, msg ports.MailMessage) error {
	m.log.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Str("body", msg.Body).
		Msg("mail delivered to log")
	return nil
}
