package mailer

import (
	"context"
	"log/slog"
)

// LogMailer writes messages to the log instead of sending them. Used in
// development when no transport is configured.
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, msg Message) error {
	slog.InfoContext(ctx, "email sent (log mode)",
		"type", msg.Kind,
		"to", msg.To,
		"subject", msg.Subject,
		"body", msg.Text,
	)
	return nil
}
