package spot

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ParkingType describes the physical shelter of a spot
type ParkingType string

const (
	ParkingCovered ParkingType = "covered"
	ParkingOpen    ParkingType = "open"
)

// Spot is a parking facility listing (matches parking_spots table)
type Spot struct {
	ID               uuid.UUID      `db:"id"`
	OwnerID          uuid.UUID      `db:"owner_id"`
	Name             string         `db:"name"`
	ParkingType      ParkingType    `db:"parking_type"`
	EmergencyContact string         `db:"emergency_contact"`
	VehicleTypes     pq.StringArray `db:"vehicle_types"`
	PhotoURL         sql.NullString `db:"photo_url"`

	TotalSlots     int   `db:"total_slots"`
	AvailableSlots int   `db:"available_slots"`
	PricePerHour   int64 `db:"price_per_hour"`

	// Milliseconds since local midnight.
	OperatingHoursStartMs int64 `db:"operating_hours_start_ms"`
	OperatingHoursEndMs   int64 `db:"operating_hours_end_ms"`

	Latitude    float64 `db:"latitude"`
	Longitude   float64 `db:"longitude"`
	IsAvailable bool    `db:"is_available"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (s *Spot) IsOwnedBy(userID uuid.UUID) bool {
	return s.OwnerID == userID
}

// Patch lists the fields an edit supplies. Nil means unchanged.
// available_slots is not patchable: sessions in progress own that counter.
type Patch struct {
	Name                  *string
	ParkingType           *ParkingType
	EmergencyContact      *string
	VehicleTypes          []string
	TotalSlots            *int
	PricePerHour          *int64
	OperatingHoursStartMs *int64
	OperatingHoursEndMs   *int64
	Latitude              *float64
	Longitude             *float64
	IsAvailable           *bool
}

func (p *Patch) Empty() bool {
	return p.Name == nil && p.ParkingType == nil && p.EmergencyContact == nil && p.VehicleTypes == nil &&
		p.TotalSlots == nil && p.PricePerHour == nil && p.OperatingHoursStartMs == nil &&
		p.OperatingHoursEndMs == nil && p.Latitude == nil && p.Longitude == nil && p.IsAvailable == nil
}

// SlotChange reports a counter adjustment.
type SlotChange struct {
	SpotID     uuid.UUID
	Previous   int
	Current    int
	TotalSlots int
}
