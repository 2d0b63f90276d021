package booking

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCalculatePrice(t *testing.T) {
	tests := []struct {
		name       string
		start, end time.Time
		want       int64
	}{
		{name: "half hour bills one hour", start: at(9, 0), end: at(9, 30), want: 100},
		{name: "exact two hours", start: at(9, 0), end: at(11, 0), want: 200},
		{name: "one minute over", start: at(9, 0), end: at(11, 1), want: 300},
		{name: "one millisecond", start: at(9, 0), end: at(9, 0).Add(time.Millisecond), want: 100},
		{name: "sub-millisecond past the hour", start: at(9, 0), end: at(10, 0).Add(500 * time.Microsecond), want: 200},
		{name: "one nanosecond past the hour", start: at(9, 0), end: at(10, 0).Add(time.Nanosecond), want: 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CalculatePrice(tt.start, tt.end, 100))
		})
	}
}

func TestCountOverlapsHalfOpen(t *testing.T) {
	spotID := uuid.New()
	bookings := []*Booking{
		existing(spotID, at(8, 0), at(10, 0), StatusConfirmed),
		existing(spotID, at(11, 0), at(12, 0), StatusActive),
		existing(spotID, at(12, 0), at(13, 0), StatusCompleted),
	}

	// 10:00 touches the first booking's end and 12:00 touches the third's start.
	assert.Equal(t, 1, CountOverlaps(bookings, at(10, 0), at(12, 0), false))
	assert.Equal(t, 3, CountOverlaps(bookings, at(9, 0), at(12, 30), false))
	assert.Equal(t, 0, CountOverlaps(bookings, at(13, 0), at(14, 0), false))
}

func TestCountOverlapsIgnoresStatusByDefault(t *testing.T) {
	spotID := uuid.New()
	bookings := []*Booking{
		existing(spotID, at(9, 0), at(11, 0), StatusCancelled),
		existing(spotID, at(9, 0), at(11, 0), StatusNoShow),
		existing(spotID, at(9, 0), at(11, 0), StatusCompleted),
	}

	assert.Equal(t, 3, CountOverlaps(bookings, at(10, 0), at(10, 30), false))
	assert.Equal(t, 1, CountOverlaps(bookings, at(10, 0), at(10, 30), true))
}

func TestStatusIsTerminal(t *testing.T) {
	assert.False(t, StatusConfirmed.IsTerminal())
	assert.False(t, StatusActive.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.True(t, StatusNoShow.IsTerminal())
}
