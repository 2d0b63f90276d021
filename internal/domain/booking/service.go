package booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/parkspot/parkspot-api/internal/domain/spot"
	"github.com/parkspot/parkspot-api/internal/middleware"
	"github.com/parkspot/parkspot-api/internal/pkg/events"
	"github.com/parkspot/parkspot-api/internal/pkg/logger"
	"github.com/parkspot/parkspot-api/internal/pkg/money"
)

// SpotReader is the slice of the spot registry bookings depend on.
type SpotReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*spot.Spot, error)
}

// Window is a candidate reservation interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// Availability is the outcome of an availability check.
type Availability struct {
	Spot         *spot.Spot
	Overlapping  int
	AvailableNow int
	Blocked      bool
	Hours        int64
	Price        *money.Money
}

// Options tune reservation behaviour.
type Options struct {
	SkipInactiveOverlaps bool
	Currency             string
}

// Service handles booking reservation
type Service struct {
	repo   Repository
	spots  SpotReader
	events events.Publisher
	opts   Options
}

// NewService creates booking service
func NewService(repo Repository, spots SpotReader, publisher events.Publisher, opts Options) *Service {
	if opts.Currency == "" {
		opts.Currency = money.DefaultCurrency
	}
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Service{repo: repo, spots: spots, events: publisher, opts: opts}
}

// CheckAvailability counts overlapping bookings and prices the window when a slot is free.
func (s *Service) CheckAvailability(ctx context.Context, spotID uuid.UUID, w Window) (*Availability, error) {
	if !w.End.After(w.Start) {
		return nil, ErrInvalidWindow
	}

	sp, err := s.spots.GetByID(ctx, spotID)
	if err != nil {
		return nil, err
	}
	if sp == nil {
		return nil, ErrSpotNotFound
	}

	existing, err := s.repo.ListBySpot(ctx, spotID)
	if err != nil {
		return nil, err
	}

	overlapping := CountOverlaps(existing, w.Start, w.End, s.opts.SkipInactiveOverlaps)
	a := &Availability{
		Spot:         sp,
		Overlapping:  overlapping,
		AvailableNow: sp.TotalSlots - overlapping,
	}
	if a.AvailableNow <= 0 {
		a.Blocked = true
		return a, nil
	}

	a.Hours = ChargeableHours(w.Start, w.End)
	price := money.New(a.Hours*sp.PricePerHour, s.opts.Currency)
	a.Price = &price
	return a, nil
}

// Commit re-checks availability and stores a confirmed booking for the driver.
func (s *Service) Commit(ctx context.Context, driverID, spotID uuid.UUID, w Window) (*Booking, error) {
	a, err := s.CheckAvailability(ctx, spotID, w)
	if err != nil {
		return nil, err
	}
	if a.Blocked {
		return nil, ErrNoSlotsAvailable
	}

	b := &Booking{
		ID:                 uuid.New(),
		SpotID:             spotID,
		DriverID:           driverID,
		StartTime:          w.Start.UTC(),
		EndTime:            w.End.UTC(),
		TotalPriceAmount:   a.Price.Amount,
		TotalPriceCurrency: a.Price.Currency,
		Status:             StatusConfirmed,
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info().
		Str("booking_id", b.ID.String()).
		Str("spot_id", spotID.String()).
		Str("price", a.Price.String()).
		Msg("Booking confirmed")

	e := events.New(events.BookingConfirmed, spotID)
	e.SpotName = a.Spot.Name
	e.OwnerID = a.Spot.OwnerID
	e.BookingID = b.ID
	e.DriverID = driverID
	e.Status = string(b.Status)
	events.Emit(ctx, s.events, e)

	return b, nil
}

// ListByDriver returns the driver's bookings, newest first
func (s *Service) ListByDriver(ctx context.Context, driverID uuid.UUID) ([]*Booking, error) {
	return s.repo.ListByDriver(ctx, driverID)
}

// ListBySpot returns the spot's bookings by start time, for its owner
func (s *Service) ListBySpot(ctx context.Context, ownerID, spotID uuid.UUID) ([]*Booking, error) {
	sp, err := s.spots.GetByID(ctx, spotID)
	if err != nil {
		return nil, err
	}
	if sp == nil {
		return nil, ErrSpotNotFound
	}
	if !sp.IsOwnedBy(ownerID) {
		return nil, ErrNotSpotOwner
	}
	return s.repo.ListBySpot(ctx, spotID)
}

// GetByID returns a booking to its driver, the spot's owner, or any guard.
func (s *Service) GetByID(ctx context.Context, actorID uuid.UUID, role string, id uuid.UUID) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrBookingNotFound
	}

	switch role {
	case middleware.RoleGuard:
		return b, nil
	case middleware.RoleDriver:
		if b.DriverID == actorID {
			return b, nil
		}
	case middleware.RoleOwner:
		sp, err := s.spots.GetByID(ctx, b.SpotID)
		if err != nil {
			return nil, err
		}
		if sp != nil && sp.IsOwnedBy(actorID) {
			return b, nil
		}
	}
	return nil, ErrNotAllowed
}

// Delete removes a booking on one of the owner's spots. Slot counters are not touched.
func (s *Service) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if b == nil {
		return ErrBookingNotFound
	}

	sp, err := s.spots.GetByID(ctx, b.SpotID)
	if err != nil {
		return err
	}
	if sp == nil || !sp.IsOwnedBy(ownerID) {
		return ErrNotSpotOwner
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	e := events.New(events.BookingDeleted, b.SpotID)
	e.SpotName = sp.Name
	e.OwnerID = sp.OwnerID
	e.BookingID = b.ID
	e.DriverID = b.DriverID
	e.Status = string(b.Status)
	events.Emit(ctx, s.events, e)
	return nil
}
