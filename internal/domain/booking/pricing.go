package booking

import "time"

// ChargeableHours rounds the window up to whole hours, with a one-hour minimum.
// Any fraction of an hour counts, down to the nanosecond.
func ChargeableHours(start, end time.Time) int64 {
	d := end.Sub(start)
	hours := int64(d / time.Hour)
	if d%time.Hour > 0 {
		hours++
	}
	if hours < 1 {
		hours = 1
	}
	return hours
}

// CalculatePrice charges every started hour at the spot's hourly rate.
func CalculatePrice(start, end time.Time, ratePerHour int64) int64 {
	return ChargeableHours(start, end) * ratePerHour
}

// CountOverlaps counts bookings whose window intersects [start, end).
// Status is ignored unless skipInactive is set, in which case cancelled and
// no_show bookings no longer hold a slot.
func CountOverlaps(bookings []*Booking, start, end time.Time, skipInactive bool) int {
	n := 0
	for _, b := range bookings {
		if skipInactive && (b.Status == StatusCancelled || b.Status == StatusNoShow) {
			continue
		}
		if b.Overlaps(start, end) {
			n++
		}
	}
	return n
}
