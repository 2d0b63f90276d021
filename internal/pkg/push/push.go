// Package push delivers device notifications through Firebase Cloud Messaging.
package push

import (
	"context"
	"errors"
	"fmt"

	"firebase.google.com/go/v4/messaging"
	"github.com/rs/zerolog/log"
)

// ErrTokenNotRegistered means the device token is stale and should be cleared.
var ErrTokenNotRegistered = errors.New("device token not registered")

// Message is a single device notification.
type Message struct {
	Token string
	Title string
	Body  string
	Data  map[string]string
}

// Sender delivers a message to one device.
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

// FCMSender sends through the Admin SDK messaging client.
type FCMSender struct {
	client *messaging.Client
}

func NewFCMSender(client *messaging.Client) *FCMSender {
	return &FCMSender{client: client}
}

func (s *FCMSender) Send(ctx context.Context, msg *Message) error {
	id, err := s.client.Send(ctx, BuildMessage(msg))
	if err != nil {
		if messaging.IsUnregistered(err) {
			return ErrTokenNotRegistered
		}
		return fmt.Errorf("fcm send: %w", err)
	}
	log.Debug().Str("message_id", id).Msg("Push sent")
	return nil
}

// BuildMessage maps a Message onto the FCM payload.
func BuildMessage(msg *Message) *messaging.Message {
	return &messaging.Message{
		Token: msg.Token,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data: msg.Data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "parking_updates",
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: "default"},
			},
		},
	}
}

// LogSender only logs. Used when Firebase is not configured.
type LogSender struct{}

func (LogSender) Send(_ context.Context, msg *Message) error {
	log.Info().Str("title", msg.Title).Str("body", msg.Body).Msg("Push skipped (FCM disabled)")
	return nil
}
