package booking

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/parkspot/parkspot-api/internal/pkg/money"
)

// Status of a booking
type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusNoShow    Status = "no_show"
)

// IsTerminal reports statuses no session action may leave.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusNoShow
}

// Booking is a driver's reservation of one slot (matches bookings table)
type Booking struct {
	ID                 uuid.UUID    `db:"id"`
	SpotID             uuid.UUID    `db:"spot_id"`
	DriverID           uuid.UUID    `db:"driver_id"`
	StartTime          time.Time    `db:"start_time"`
	EndTime            time.Time    `db:"end_time"`
	TotalPriceAmount   int64        `db:"total_price_amount"`
	TotalPriceCurrency string       `db:"total_price_currency"`
	Status             Status       `db:"status"`
	ActualStartTime    sql.NullTime `db:"actual_start_time"`
	ActualEndTime      sql.NullTime `db:"actual_end_time"`
	CreatedAt          time.Time    `db:"created_at"`
	LastUpdated        time.Time    `db:"last_updated"`
}

func (b *Booking) TotalPrice() money.Money {
	return money.New(b.TotalPriceAmount, b.TotalPriceCurrency)
}

// Overlaps uses half-open intervals: touching windows do not conflict.
func (b *Booking) Overlaps(start, end time.Time) bool {
	return b.StartTime.Before(end) && b.EndTime.After(start)
}
