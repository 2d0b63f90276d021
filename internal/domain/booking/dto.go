package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/parkspot/parkspot-api/internal/pkg/money"
)

// WindowRequest is the body of POST /bookings/availability and POST /bookings
type WindowRequest struct {
	SpotID    uuid.UUID `json:"spot_id" validate:"required"`
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required,gtfield=StartTime"`
}

// AvailabilityResponse reports free capacity and, when bookable, the price
type AvailabilityResponse struct {
	SpotID       uuid.UUID    `json:"spot_id"`
	TotalSlots   int          `json:"total_slots"`
	Overlapping  int          `json:"overlapping"`
	AvailableNow int          `json:"available_now"`
	Blocked      bool         `json:"blocked"`
	Hours        int64        `json:"hours,omitempty"`
	TotalPrice   *money.Money `json:"total_price,omitempty"`
}

// BookingResponse is the public view of a booking
type BookingResponse struct {
	ID              uuid.UUID   `json:"id"`
	SpotID          uuid.UUID   `json:"spot_id"`
	DriverID        uuid.UUID   `json:"driver_id"`
	StartTime       time.Time   `json:"start_time"`
	EndTime         time.Time   `json:"end_time"`
	StartTimeMs     int64       `json:"start_time_ms"`
	EndTimeMs       int64       `json:"end_time_ms"`
	TotalPrice      money.Money `json:"total_price"`
	Status          Status      `json:"status"`
	ActualStartTime *time.Time  `json:"actual_start_time,omitempty"`
	ActualEndTime   *time.Time  `json:"actual_end_time,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	LastUpdated     time.Time   `json:"last_updated"`
}

// NewBookingResponse maps a booking to its response
func NewBookingResponse(b *Booking) *BookingResponse {
	resp := &BookingResponse{
		ID:          b.ID,
		SpotID:      b.SpotID,
		DriverID:    b.DriverID,
		StartTime:   b.StartTime,
		EndTime:     b.EndTime,
		StartTimeMs: b.StartTime.UnixMilli(),
		EndTimeMs:   b.EndTime.UnixMilli(),
		TotalPrice:  b.TotalPrice(),
		Status:      b.Status,
		CreatedAt:   b.CreatedAt,
		LastUpdated: b.LastUpdated,
	}
	if b.ActualStartTime.Valid {
		t := b.ActualStartTime.Time
		resp.ActualStartTime = &t
	}
	if b.ActualEndTime.Valid {
		t := b.ActualEndTime.Time
		resp.ActualEndTime = &t
	}
	return resp
}

func NewBookingList(list []*Booking) []*BookingResponse {
	out := make([]*BookingResponse, 0, len(list))
	for _, b := range list {
		out = append(out, NewBookingResponse(b))
	}
	return out
}
