// Package events carries booking and session lifecycle notifications to
// RabbitMQ (durable, consumed by the notifier) and Redis (live fan-out).
package events

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/parkspot/parkspot-api/internal/pkg/logger"
)

type Type string

const (
	BookingConfirmed Type = "booking.confirmed"
	BookingDeleted   Type = "booking.deleted"
	SessionStarted   Type = "session.started"
	SessionEnded     Type = "session.ended"
	SlotsChanged     Type = "spot.slots_changed"
)

// Event is the wire payload shared by every transport.
type Event struct {
	ID             uuid.UUID `json:"id"`
	Type           Type      `json:"type"`
	OccurredAt     time.Time `json:"occurred_at"`
	SpotID         uuid.UUID `json:"spot_id"`
	SpotName       string    `json:"spot_name,omitempty"`
	OwnerID        uuid.UUID `json:"owner_id"`
	BookingID      uuid.UUID `json:"booking_id"`
	DriverID       uuid.UUID `json:"driver_id"`
	Status         string    `json:"status,omitempty"`
	AvailableSlots *int      `json:"available_slots,omitempty"`
	TotalSlots     *int      `json:"total_slots,omitempty"`
}

// New stamps an event with an id and the current time.
func New(t Type, spotID uuid.UUID) Event {
	return Event{
		ID:         uuid.New(),
		Type:       t,
		OccurredAt: time.Now().UTC(),
		SpotID:     spotID,
	}
}

// Publisher sends events to a transport.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Multi publishes to every transport and joins the failures.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, e Event) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop drops events.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// Emit publishes best-effort: a failing transport is logged and never surfaces to the caller.
func Emit(ctx context.Context, p Publisher, e Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, e); err != nil {
		logger.FromContext(ctx).Warn().
			Err(err).
			Str("event_type", string(e.Type)).
			Str("spot_id", e.SpotID.String()).
			Msg("Failed to publish event")
	}
}
