package spot

import (
	"context"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// memRepo is an in-memory Repository for service tests.
type memRepo struct {
	spots  map[uuid.UUID]*Spot
	writes int
}

func newMemRepo(spots ...*Spot) *memRepo {
	m := &memRepo{spots: map[uuid.UUID]*Spot{}}
	for _, s := range spots {
		m.spots[s.ID] = s
	}
	return m
}

func (m *memRepo) Create(ctx context.Context, s *Spot) error {
	cp := *s
	m.spots[s.ID] = &cp
	return nil
}

func (m *memRepo) GetByID(ctx context.Context, id uuid.UUID) (*Spot, error) {
	s, ok := m.spots[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (m *memRepo) ListAvailable(ctx context.Context) ([]*Spot, error) {
	var out []*Spot
	for _, s := range m.spots {
		if s.IsAvailable {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Spot, error) {
	var out []*Spot
	for _, s := range m.spots {
		if s.OwnerID == ownerID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memRepo) Update(ctx context.Context, id uuid.UUID, p Patch) error {
	s, ok := m.spots[id]
	if !ok {
		return ErrSpotNotFound
	}
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.ParkingType != nil {
		s.ParkingType = *p.ParkingType
	}
	if p.EmergencyContact != nil {
		s.EmergencyContact = *p.EmergencyContact
	}
	if p.VehicleTypes != nil {
		s.VehicleTypes = pq.StringArray(p.VehicleTypes)
	}
	if p.TotalSlots != nil {
		s.TotalSlots = *p.TotalSlots
	}
	if p.PricePerHour != nil {
		s.PricePerHour = *p.PricePerHour
	}
	if p.OperatingHoursStartMs != nil {
		s.OperatingHoursStartMs = *p.OperatingHoursStartMs
	}
	if p.OperatingHoursEndMs != nil {
		s.OperatingHoursEndMs = *p.OperatingHoursEndMs
	}
	if p.Latitude != nil {
		s.Latitude = *p.Latitude
	}
	if p.Longitude != nil {
		s.Longitude = *p.Longitude
	}
	if p.IsAvailable != nil {
		s.IsAvailable = *p.IsAvailable
	}
	return nil
}

func (m *memRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.spots[id]; !ok {
		return ErrSpotNotFound
	}
	delete(m.spots, id)
	return nil
}

func (m *memRepo) UpdatePhotoURL(ctx context.Context, id uuid.UUID, url string) error {
	s, ok := m.spots[id]
	if !ok {
		return ErrSpotNotFound
	}
	s.PhotoURL.String, s.PhotoURL.Valid = url, true
	return nil
}

func (m *memRepo) GetSlots(ctx context.Context, id uuid.UUID) (int, int, error) {
	s, ok := m.spots[id]
	if !ok {
		return 0, 0, ErrSpotNotFound
	}
	return s.AvailableSlots, s.TotalSlots, nil
}

func (m *memRepo) SetAvailableSlots(ctx context.Context, id uuid.UUID, available int) error {
	s, ok := m.spots[id]
	if !ok {
		return ErrSpotNotFound
	}
	m.writes++
	s.AvailableSlots = available
	return nil
}

func (m *memRepo) AdjustSlotsLocked(ctx context.Context, id uuid.UUID, delta int) (*SlotChange, error) {
	s, ok := m.spots[id]
	if !ok {
		return nil, ErrSpotNotFound
	}
	change := &SlotChange{SpotID: id, Previous: s.AvailableSlots, Current: s.AvailableSlots + delta, TotalSlots: s.TotalSlots}
	if change.Current < 0 || change.Current > s.TotalSlots {
		return change, ErrSlotBounds
	}
	m.writes++
	s.AvailableSlots = change.Current
	return change, nil
}
