// Package email renders account emails and hands them to a delivery backend.
package email

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Message is a rendered email ready for delivery.
type Message struct {
	To          string
	ToName      string
	Subject     string
	HTMLContent string
	TextContent string
}

// Sender delivers one message.
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

// LogSender only logs. Used in development when no provider is configured.
type LogSender struct{}

func (LogSender) Send(_ context.Context, msg *Message) error {
	log.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Str("text", msg.TextContent).
		Msg("Email skipped (EMAIL_DRIVER=log)")
	return nil
}
