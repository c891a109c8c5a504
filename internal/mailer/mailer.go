// Package mailer delivers transactional email through a pluggable
// transport, asynchronously and with retries.
package mailer

import (
	"context"
)

type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string // optional alternative to Text
	// Kind labels the message in logs and metrics, e.g. "password_reset".
	Kind string
}

// Mailer sends a single message synchronously.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
