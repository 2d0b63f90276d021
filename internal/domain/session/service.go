// Package session moves bookings through check-in and check-out and keeps
// the spot's live slot counter in step.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/parkspot/parkspot-api/internal/domain/booking"
	"github.com/parkspot/parkspot-api/internal/domain/spot"
	"github.com/parkspot/parkspot-api/internal/pkg/events"
	"github.com/parkspot/parkspot-api/internal/pkg/logger"
)

// BookingStore is the slice of the booking repository sessions need.
type BookingStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error)
	MarkActive(ctx context.Context, id uuid.UUID, at time.Time) error
	MarkCompleted(ctx context.Context, id uuid.UUID, at time.Time) error
}

// SpotReader resolves the spot name and owner for emitted events.
type SpotReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*spot.Spot, error)
}

// Result is what a start or end produced. Slots is nil when the counter
// was not touched.
type Result struct {
	Booking *booking.Booking
	Slots   *spot.SlotChange
}

// Service drives the session state machine
type Service struct {
	bookings BookingStore
	spots    SpotReader
	counter  spot.SlotCounter
	events   events.Publisher
	now      func() time.Time
}

// NewService creates session service
func NewService(bookings BookingStore, spots SpotReader, counter spot.SlotCounter, publisher events.Publisher) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Service{
		bookings: bookings,
		spots:    spots,
		counter:  counter,
		events:   publisher,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Start checks a confirmed booking in and takes one slot.
func (s *Service) Start(ctx context.Context, guardID, bookingID uuid.UUID) (*Result, error) {
	return s.transition(ctx, guardID, bookingID, step{
		from:   booking.StatusConfirmed,
		to:     booking.StatusActive,
		delta:  -1,
		event:  events.SessionStarted,
		mark:   s.bookings.MarkActive,
		action: "start",
	})
}

// End checks an active booking out and frees its slot.
func (s *Service) End(ctx context.Context, guardID, bookingID uuid.UUID) (*Result, error) {
	return s.transition(ctx, guardID, bookingID, step{
		from:   booking.StatusActive,
		to:     booking.StatusCompleted,
		delta:  1,
		event:  events.SessionEnded,
		mark:   s.bookings.MarkCompleted,
		action: "end",
	})
}

type step struct {
	from, to booking.Status
	delta    int
	event    events.Type
	mark     func(ctx context.Context, id uuid.UUID, at time.Time) error
	action   string
}

// transition writes the status first and adjusts the counter as a separate
// operation. A failed adjustment leaves the new status in place.
func (s *Service) transition(ctx context.Context, guardID, bookingID uuid.UUID, st step) (*Result, error) {
	log := logger.FromContext(ctx)

	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrBookingNotFound
	}
	if b.Status != st.from {
		return nil, fmt.Errorf("%w: cannot %s a %s booking", ErrInvalidTransition, st.action, b.Status)
	}

	at := s.now()
	if err := st.mark(ctx, bookingID, at); err != nil {
		if errors.Is(err, booking.ErrStatusChanged) {
			return nil, fmt.Errorf("%w: booking changed while processing %s", ErrInvalidTransition, st.action)
		}
		return nil, err
	}
	b.Status = st.to
	if st.to == booking.StatusActive {
		b.ActualStartTime.Time, b.ActualStartTime.Valid = at, true
	} else {
		b.ActualEndTime.Time, b.ActualEndTime.Valid = at, true
	}

	log.Info().
		Str("booking_id", bookingID.String()).
		Str("guard_id", guardID.String()).
		Str("status", string(st.to)).
		Msg("Session " + st.action)

	res := &Result{Booking: b}
	e := events.New(st.event, b.SpotID)
	e.BookingID = b.ID
	e.DriverID = b.DriverID
	e.Status = string(b.Status)
	if sp, err := s.spots.GetByID(ctx, b.SpotID); err == nil && sp != nil {
		e.SpotName = sp.Name
		e.OwnerID = sp.OwnerID
	}

	change, err := s.counter.Adjust(ctx, b.SpotID, st.delta)
	if err != nil {
		ev := log.Error().Err(err).
			Str("booking_id", bookingID.String()).
			Str("spot_id", b.SpotID.String()).
			Str("stranded_status", string(b.Status)).
			Int("delta", st.delta)
		if change != nil {
			ev = ev.Int("available_slots", change.Previous).Int("total_slots", change.TotalSlots)
		}
		ev.Msg("Slot counter not adjusted, booking status kept")
		events.Emit(ctx, s.events, e)
		return res, err
	}
	res.Slots = change
	events.Emit(ctx, s.events, e)

	slots := events.New(events.SlotsChanged, b.SpotID)
	slots.SpotName = e.SpotName
	slots.OwnerID = e.OwnerID
	slots.BookingID = b.ID
	slots.DriverID = b.DriverID
	slots.AvailableSlots = &change.Current
	slots.TotalSlots = &change.TotalSlots
	events.Emit(ctx, s.events, slots)

	return res, nil
}
