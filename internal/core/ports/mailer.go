package ports

import "context"

// MailMessage is a plain-text message handed to the mail collaborator.
type MailMessage struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers messages to users. Delivery failures are the caller's to
// handle; the reset flow treats them as non-fatal.
type Mailer interface {
	Send(ctx context.Context, msg MailMessage) error
}
