package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines booking data access
type Repository interface {
	Create(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	ListBySpot(ctx context.Context, spotID uuid.UUID) ([]*Booking, error)
	ListByDriver(ctx context.Context, driverID uuid.UUID) ([]*Booking, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// MarkActive and MarkCompleted only touch rows still in the expected status.
	MarkActive(ctx context.Context, id uuid.UUID, at time.Time) error
	MarkCompleted(ctx context.Context, id uuid.UUID, at time.Time) error
}

// ErrStatusChanged means the row was not in the expected status when written.
var ErrStatusChanged = errors.New("booking status changed concurrently")

type repository struct {
	db *sqlx.DB
}

// NewRepository creates new booking repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const selectBooking = `
	SELECT id, spot_id, driver_id, start_time, end_time, total_price_amount, total_price_currency,
	       status, actual_start_time, actual_end_time, created_at, last_updated
	FROM bookings
`

func (r *repository) Create(ctx context.Context, b *Booking) error {
	query := `
		INSERT INTO bookings (id, spot_id, driver_id, start_time, end_time, total_price_amount,
		                      total_price_currency, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, last_updated
	`
	err := r.db.QueryRowxContext(ctx, query,
		b.ID,
		b.SpotID,
		b.DriverID,
		b.StartTime,
		b.EndTime,
		b.TotalPriceAmount,
		b.TotalPriceCurrency,
		b.Status,
	).Scan(&b.CreatedAt, &b.LastUpdated)
	if err != nil {
		return fmt.Errorf("booking repository create: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var b Booking
	if err := r.db.GetContext(ctx, &b, selectBooking+` WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("booking repository get: %w", err)
	}
	return &b, nil
}

// ListBySpot returns every booking of the spot regardless of window or status.
func (r *repository) ListBySpot(ctx context.Context, spotID uuid.UUID) ([]*Booking, error) {
	var out []*Booking
	if err := r.db.SelectContext(ctx, &out, selectBooking+` WHERE spot_id = $1 ORDER BY start_time ASC`, spotID); err != nil {
		return nil, fmt.Errorf("booking repository list by spot: %w", err)
	}
	return out, nil
}

func (r *repository) ListByDriver(ctx context.Context, driverID uuid.UUID) ([]*Booking, error) {
	var out []*Booking
	if err := r.db.SelectContext(ctx, &out, selectBooking+` WHERE driver_id = $1 ORDER BY created_at DESC`, driverID); err != nil {
		return nil, fmt.Errorf("booking repository list by driver: %w", err)
	}
	return out, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("booking repository delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrBookingNotFound
	}
	return nil
}

func (r *repository) MarkActive(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `
		UPDATE bookings
		SET status = $2, actual_start_time = $3, last_updated = NOW()
		WHERE id = $1 AND status = $4
	`
	return r.transition(ctx, query, id, StatusActive, at, StatusConfirmed)
}

func (r *repository) MarkCompleted(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `
		UPDATE bookings
		SET status = $2, actual_end_time = $3, last_updated = NOW()
		WHERE id = $1 AND status = $4
	`
	return r.transition(ctx, query, id, StatusCompleted, at, StatusActive)
}

func (r *repository) transition(ctx context.Context, query string, id uuid.UUID, to Status, at time.Time, from Status) error {
	res, err := r.db.ExecContext(ctx, query, id, to, at, from)
	if err != nil {
		return fmt.Errorf("booking repository set %s: %w", to, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrStatusChanged
	}
	return nil
}
