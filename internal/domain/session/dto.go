package session

import (
	"github.com/parkspot/parkspot-api/internal/domain/booking"
)

// Response is returned by start and end
type Response struct {
	Booking        *booking.BookingResponse `json:"booking"`
	AvailableSlots *int                     `json:"available_slots,omitempty"`
	TotalSlots     *int                     `json:"total_slots,omitempty"`
}

func newResponse(res *Result) *Response {
	resp := &Response{Booking: booking.NewBookingResponse(res.Booking)}
	if res.Slots != nil {
		resp.AvailableSlots = &res.Slots.Current
		resp.TotalSlots = &res.Slots.TotalSlots
	}
	return resp
}
