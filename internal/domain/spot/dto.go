package spot

import (
	"time"

	"github.com/google/uuid"

	"github.com/parkspot/parkspot-api/internal/pkg/money"
)

// CreateSpotRequest for POST /spots
type CreateSpotRequest struct {
	Name                  string   `json:"name" validate:"required,max=100"`
	ParkingType           string   `json:"parking_type" validate:"required,parking_type"`
	EmergencyContact      string   `json:"emergency_contact" validate:"omitempty,max=30"`
	VehicleTypes          []string `json:"vehicle_types" validate:"required,min=1,dive,vehicle_type"`
	TotalSlots            int      `json:"total_slots" validate:"gt=0"`
	PricePerHour          int64    `json:"price_per_hour" validate:"gt=0"`
	OperatingHoursStartMs int64    `json:"operating_hours_start_ms" validate:"gte=0,lt=86400000"`
	OperatingHoursEndMs   int64    `json:"operating_hours_end_ms" validate:"gtfield=OperatingHoursStartMs,lte=86400000"`
	Latitude              float64  `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude             float64  `json:"longitude" validate:"gte=-180,lte=180"`
	IsAvailable           *bool    `json:"is_available"`
}

// UpdateSpotRequest for PATCH /spots/{id}; absent fields stay as stored.
type UpdateSpotRequest struct {
	Name                  *string  `json:"name" validate:"omitempty,min=1,max=100"`
	ParkingType           *string  `json:"parking_type" validate:"omitempty,parking_type"`
	EmergencyContact      *string  `json:"emergency_contact" validate:"omitempty,max=30"`
	VehicleTypes          []string `json:"vehicle_types" validate:"omitempty,min=1,dive,vehicle_type"`
	TotalSlots            *int     `json:"total_slots" validate:"omitempty,gt=0"`
	PricePerHour          *int64   `json:"price_per_hour" validate:"omitempty,gt=0"`
	OperatingHoursStartMs *int64   `json:"operating_hours_start_ms" validate:"omitempty,gte=0,lt=86400000"`
	OperatingHoursEndMs   *int64   `json:"operating_hours_end_ms" validate:"omitempty,gt=0,lte=86400000"`
	Latitude              *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude             *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	IsAvailable           *bool    `json:"is_available"`
}

// ToPatch converts the request to a repository patch
func (r *UpdateSpotRequest) ToPatch() Patch {
	p := Patch{
		Name:                  r.Name,
		EmergencyContact:      r.EmergencyContact,
		VehicleTypes:          r.VehicleTypes,
		TotalSlots:            r.TotalSlots,
		PricePerHour:          r.PricePerHour,
		OperatingHoursStartMs: r.OperatingHoursStartMs,
		OperatingHoursEndMs:   r.OperatingHoursEndMs,
		Latitude:              r.Latitude,
		Longitude:             r.Longitude,
		IsAvailable:           r.IsAvailable,
	}
	if r.ParkingType != nil {
		pt := ParkingType(*r.ParkingType)
		p.ParkingType = &pt
	}
	return p
}

// SpotResponse is the public view of a spot
type SpotResponse struct {
	ID                    uuid.UUID   `json:"id"`
	OwnerID               uuid.UUID   `json:"owner_id"`
	Name                  string      `json:"name"`
	ParkingType           ParkingType `json:"parking_type"`
	EmergencyContact      string      `json:"emergency_contact,omitempty"`
	VehicleTypes          []string    `json:"vehicle_types"`
	PhotoURL              string      `json:"photo_url,omitempty"`
	TotalSlots            int         `json:"total_slots"`
	AvailableSlots        int         `json:"available_slots"`
	PricePerHour          int64       `json:"price_per_hour"`
	PriceDisplay          string      `json:"price_display"`
	OperatingHoursStartMs int64       `json:"operating_hours_start_ms"`
	OperatingHoursEndMs   int64       `json:"operating_hours_end_ms"`
	Latitude              float64     `json:"latitude"`
	Longitude             float64     `json:"longitude"`
	IsAvailable           bool        `json:"is_available"`
	DistanceKm            *float64    `json:"distance_km,omitempty"`
	CreatedAt             time.Time   `json:"created_at"`
	UpdatedAt             time.Time   `json:"updated_at"`
}

// NewSpotResponse maps a spot to its response
func NewSpotResponse(s *Spot, currency string) *SpotResponse {
	vt := []string(s.VehicleTypes)
	if vt == nil {
		vt = []string{}
	}
	return &SpotResponse{
		ID:                    s.ID,
		OwnerID:               s.OwnerID,
		Name:                  s.Name,
		ParkingType:           s.ParkingType,
		EmergencyContact:      s.EmergencyContact,
		VehicleTypes:          vt,
		PhotoURL:              s.PhotoURL.String,
		TotalSlots:            s.TotalSlots,
		AvailableSlots:        s.AvailableSlots,
		PricePerHour:          s.PricePerHour,
		PriceDisplay:          money.New(s.PricePerHour, currency).String(),
		OperatingHoursStartMs: s.OperatingHoursStartMs,
		OperatingHoursEndMs:   s.OperatingHoursEndMs,
		Latitude:              s.Latitude,
		Longitude:             s.Longitude,
		IsAvailable:           s.IsAvailable,
		CreatedAt:             s.CreatedAt,
		UpdatedAt:             s.UpdatedAt,
	}
}
