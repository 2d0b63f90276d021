package booking

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/parkspot/parkspot-api/internal/domain/spot"
	"github.com/parkspot/parkspot-api/internal/pkg/events"
)

type memRepo struct {
	mu        sync.Mutex
	bookings  map[uuid.UUID]*Booking
	createErr error
}

func newMemRepo(list ...*Booking) *memRepo {
	r := &memRepo{bookings: make(map[uuid.UUID]*Booking)}
	for _, b := range list {
		r.bookings[b.ID] = b
	}
	return r
}

func (r *memRepo) Create(_ context.Context, b *Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	b.CreatedAt = time.Now()
	b.LastUpdated = b.CreatedAt
	cp := *b
	r.bookings[b.ID] = &cp
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id uuid.UUID) (*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (r *memRepo) ListBySpot(_ context.Context, spotID uuid.UUID) ([]*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Booking
	for _, b := range r.bookings {
		if b.SpotID == spotID {
			cp := *b
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (r *memRepo) ListByDriver(_ context.Context, driverID uuid.UUID) ([]*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Booking
	for _, b := range r.bookings {
		if b.DriverID == driverID {
			cp := *b
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bookings[id]; !ok {
		return ErrBookingNotFound
	}
	delete(r.bookings, id)
	return nil
}

func (r *memRepo) MarkActive(_ context.Context, id uuid.UUID, at time.Time) error {
	return r.mark(id, StatusConfirmed, StatusActive, at)
}

func (r *memRepo) MarkCompleted(_ context.Context, id uuid.UUID, at time.Time) error {
	return r.mark(id, StatusActive, StatusCompleted, at)
}

func (r *memRepo) mark(id uuid.UUID, from, to Status, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok || b.Status != from {
		return ErrStatusChanged
	}
	b.Status = to
	if to == StatusActive {
		b.ActualStartTime.Time, b.ActualStartTime.Valid = at, true
	} else {
		b.ActualEndTime.Time, b.ActualEndTime.Valid = at, true
	}
	return nil
}

type spotStub map[uuid.UUID]*spot.Spot

func (s spotStub) GetByID(_ context.Context, id uuid.UUID) (*spot.Spot, error) {
	return s[id], nil
}

type recordingPublisher struct {
	mu   sync.Mutex
	seen []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seen = append(p.seen, e)
	return nil
}

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Type, 0, len(p.seen))
	for _, e := range p.seen {
		out = append(out, e.Type)
	}
	return out
}

func testSpot(owner uuid.UUID, slots int, rate int64) *spot.Spot {
	return &spot.Spot{
		ID:             uuid.New(),
		OwnerID:        owner,
		Name:           "Gulshan 2 Circle",
		TotalSlots:     slots,
		AvailableSlots: slots,
		PricePerHour:   rate,
		IsAvailable:    true,
	}
}

func at(hour, minute int) time.Time {
	return time.Date(2024, 6, 1, hour, minute, 0, 0, time.UTC)
}

func existing(spotID uuid.UUID, start, end time.Time, status Status) *Booking {
	return &Booking{
		ID:        uuid.New(),
		SpotID:    spotID,
		DriverID:  uuid.New(),
		StartTime: start,
		EndTime:   end,
		Status:    status,
	}
}
