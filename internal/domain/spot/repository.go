package spot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Repository defines parking spot data access
type Repository interface {
	Create(ctx context.Context, spot *Spot) error
	GetByID(ctx context.Context, id uuid.UUID) (*Spot, error)
	ListAvailable(ctx context.Context) ([]*Spot, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Spot, error)
	Update(ctx context.Context, id uuid.UUID, patch Patch) error
	Delete(ctx context.Context, id uuid.UUID) error
	UpdatePhotoURL(ctx context.Context, id uuid.UUID, url string) error

	// Slot counter primitives. GetSlots and SetAvailableSlots are independent
	// statements; AdjustSlotsLocked runs the whole read-check-write under a row lock.
	GetSlots(ctx context.Context, id uuid.UUID) (available, total int, err error)
	SetAvailableSlots(ctx context.Context, id uuid.UUID, available int) error
	AdjustSlotsLocked(ctx context.Context, id uuid.UUID, delta int) (*SlotChange, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates new spot repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const selectSpot = `
	SELECT id, owner_id, name, parking_type, emergency_contact, vehicle_types, photo_url,
	       total_slots, available_slots, price_per_hour, operating_hours_start_ms,
	       operating_hours_end_ms, latitude, longitude, is_available, created_at, updated_at
	FROM parking_spots
`

func (r *repository) Create(ctx context.Context, spot *Spot) error {
	query := `
		INSERT INTO parking_spots (id, owner_id, name, parking_type, emergency_contact, vehicle_types,
		                           photo_url, total_slots, available_slots, price_per_hour,
		                           operating_hours_start_ms, operating_hours_end_ms, latitude, longitude,
		                           is_available, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	_, err := r.db.ExecContext(ctx, query,
		spot.ID,
		spot.OwnerID,
		spot.Name,
		spot.ParkingType,
		spot.EmergencyContact,
		spot.VehicleTypes,
		spot.PhotoURL,
		spot.TotalSlots,
		spot.AvailableSlots,
		spot.PricePerHour,
		spot.OperatingHoursStartMs,
		spot.OperatingHoursEndMs,
		spot.Latitude,
		spot.Longitude,
		spot.IsAvailable,
		spot.CreatedAt,
		spot.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("spot repository create: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Spot, error) {
	var spot Spot
	err := r.db.GetContext(ctx, &spot, selectSpot+` WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("spot repository get: %w", err)
	}
	return &spot, nil
}

func (r *repository) ListAvailable(ctx context.Context) ([]*Spot, error) {
	var spots []*Spot
	if err := r.db.SelectContext(ctx, &spots, selectSpot+` WHERE is_available = TRUE ORDER BY created_at DESC`); err != nil {
		return nil, fmt.Errorf("spot repository list available: %w", err)
	}
	return spots, nil
}

func (r *repository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Spot, error) {
	var spots []*Spot
	if err := r.db.SelectContext(ctx, &spots, selectSpot+` WHERE owner_id = $1 ORDER BY created_at DESC`, ownerID); err != nil {
		return nil, fmt.Errorf("spot repository list by owner: %w", err)
	}
	return spots, nil
}

// Update writes only the supplied columns.
func (r *repository) Update(ctx context.Context, id uuid.UUID, patch Patch) error {
	sets := make([]string, 0, 12)
	args := []interface{}{id}
	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.ParkingType != nil {
		add("parking_type", *patch.ParkingType)
	}
	if patch.EmergencyContact != nil {
		add("emergency_contact", *patch.EmergencyContact)
	}
	if patch.VehicleTypes != nil {
		add("vehicle_types", pq.StringArray(patch.VehicleTypes))
	}
	if patch.TotalSlots != nil {
		add("total_slots", *patch.TotalSlots)
	}
	if patch.PricePerHour != nil {
		add("price_per_hour", *patch.PricePerHour)
	}
	if patch.OperatingHoursStartMs != nil {
		add("operating_hours_start_ms", *patch.OperatingHoursStartMs)
	}
	if patch.OperatingHoursEndMs != nil {
		add("operating_hours_end_ms", *patch.OperatingHoursEndMs)
	}
	if patch.Latitude != nil {
		add("latitude", *patch.Latitude)
	}
	if patch.Longitude != nil {
		add("longitude", *patch.Longitude)
	}
	if patch.IsAvailable != nil {
		add("is_available", *patch.IsAvailable)
	}
	if len(sets) == 0 {
		return ErrNothingToUpdate
	}

	query := `UPDATE parking_spots SET ` + strings.Join(sets, ", ") + `, updated_at = NOW() WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("spot repository update: %w", err)
	}
	return requireRow(res)
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM parking_spots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("spot repository delete: %w", err)
	}
	return requireRow(res)
}

func (r *repository) UpdatePhotoURL(ctx context.Context, id uuid.UUID, url string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE parking_spots SET photo_url = $2, updated_at = NOW() WHERE id = $1`, id, url)
	if err != nil {
		return fmt.Errorf("spot repository update photo: %w", err)
	}
	return requireRow(res)
}

func (r *repository) GetSlots(ctx context.Context, id uuid.UUID) (int, int, error) {
	var row struct {
		Available int `db:"available_slots"`
		Total     int `db:"total_slots"`
	}
	err := r.db.GetContext(ctx, &row, `SELECT available_slots, total_slots FROM parking_spots WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, 0, ErrSpotNotFound
		}
		return 0, 0, fmt.Errorf("spot repository get slots: %w", err)
	}
	return row.Available, row.Total, nil
}

func (r *repository) SetAvailableSlots(ctx context.Context, id uuid.UUID, available int) error {
	res, err := r.db.ExecContext(ctx, `UPDATE parking_spots SET available_slots = $2, updated_at = NOW() WHERE id = $1`, id, available)
	if err != nil {
		return fmt.Errorf("spot repository set slots: %w", err)
	}
	return requireRow(res)
}

func (r *repository) AdjustSlotsLocked(ctx context.Context, id uuid.UUID, delta int) (*SlotChange, error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var row struct {
		Available int `db:"available_slots"`
		Total     int `db:"total_slots"`
	}
	err = tx.GetContext(ctx, &row, `SELECT available_slots, total_slots FROM parking_spots WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSpotNotFound
		}
		return nil, fmt.Errorf("spot repository lock slots: %w", err)
	}

	change := &SlotChange{SpotID: id, Previous: row.Available, Current: row.Available + delta, TotalSlots: row.Total}
	if change.Current < 0 || change.Current > row.Total {
		return change, ErrSlotBounds
	}

	if _, err := tx.ExecContext(ctx, `UPDATE parking_spots SET available_slots = $2, updated_at = NOW() WHERE id = $1`, id, change.Current); err != nil {
		return nil, fmt.Errorf("spot repository adjust slots: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return change, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSpotNotFound
	}
	return nil
}
