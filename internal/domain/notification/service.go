// Package notification turns lifecycle events into device pushes.
package notification

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/parkspot/parkspot-api/internal/pkg/events"
	"github.com/parkspot/parkspot-api/internal/pkg/logger"
	"github.com/parkspot/parkspot-api/internal/pkg/push"
)

// DeviceTokens looks up and forgets the FCM token of a user.
type DeviceTokens interface {
	DeviceToken(ctx context.Context, userID uuid.UUID) (string, error)
	ClearDeviceToken(ctx context.Context, userID uuid.UUID) error
}

// Service handles delivered events for the notifier
type Service struct {
	tokens DeviceTokens
	sender push.Sender
}

// NewService creates notification service
func NewService(tokens DeviceTokens, sender push.Sender) *Service {
	return &Service{tokens: tokens, sender: sender}
}

// Handle sends the driver a push for e. Events without a template or a
// driver without a device token are acknowledged without sending.
func (s *Service) Handle(ctx context.Context, e events.Event) error {
	log := logger.FromContext(ctx).With().
		Str("event_id", e.ID.String()).
		Str("event_type", string(e.Type)).
		Logger()

	title, body, ok := Render(e)
	if !ok || e.DriverID == uuid.Nil {
		return nil
	}

	token, err := s.tokens.DeviceToken(ctx, e.DriverID)
	if err != nil {
		return err
	}
	if token == "" {
		log.Debug().Str("driver_id", e.DriverID.String()).Msg("Driver has no device token, skipping push")
		return nil
	}

	msg := &push.Message{
		Token: token,
		Title: title,
		Body:  body,
		Data: map[string]string{
			"type":       string(e.Type),
			"booking_id": e.BookingID.String(),
			"spot_id":    e.SpotID.String(),
		},
	}
	if e.Status != "" {
		msg.Data["status"] = e.Status
	}

	err = s.sender.Send(ctx, msg)
	switch {
	case err == nil:
		log.Info().Str("driver_id", e.DriverID.String()).Msg("Push delivered")
		return nil
	case errors.Is(err, push.ErrTokenNotRegistered):
		log.Warn().Str("driver_id", e.DriverID.String()).Msg("Device token unregistered, clearing")
		return s.tokens.ClearDeviceToken(ctx, e.DriverID)
	default:
		return err
	}
}

var _ events.Handler = (*Service)(nil)
