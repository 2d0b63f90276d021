package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// OwnedSpot is the part of a spot the dashboard aggregates over.
type OwnedSpot struct {
	ID         uuid.UUID `db:"id"`
	TotalSlots int       `db:"total_slots"`
}

// Repository reads booking aggregates for an owner's spots
type Repository interface {
	OwnedSpots(ctx context.Context, ownerID uuid.UUID) ([]OwnedSpot, error)
	// CompletedRevenueSince sums only bookings priced in currency.
	CompletedRevenueSince(ctx context.Context, spotIDs []uuid.UUID, since time.Time, currency string) (int64, error)
	CountActive(ctx context.Context, spotIDs []uuid.UUID) (int, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates new analytics repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) OwnedSpots(ctx context.Context, ownerID uuid.UUID) ([]OwnedSpot, error) {
	var out []OwnedSpot
	query := `SELECT id, total_slots FROM parking_spots WHERE owner_id = $1`
	if err := r.db.SelectContext(ctx, &out, query, ownerID); err != nil {
		return nil, fmt.Errorf("analytics repository owned spots: %w", err)
	}
	return out, nil
}

func (r *repository) CompletedRevenueSince(ctx context.Context, spotIDs []uuid.UUID, since time.Time, currency string) (int64, error) {
	query := `
		SELECT COALESCE(SUM(total_price_amount), 0)
		FROM bookings
		WHERE status = 'completed' AND actual_end_time >= $1 AND spot_id = ANY($2)
			AND total_price_currency = $3
	`
	var total int64
	if err := r.db.GetContext(ctx, &total, query, since, pq.Array(idStrings(spotIDs)), currency); err != nil {
		return 0, fmt.Errorf("analytics repository revenue: %w", err)
	}
	return total, nil
}

func (r *repository) CountActive(ctx context.Context, spotIDs []uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE status = 'active' AND spot_id = ANY($1)`
	var n int
	if err := r.db.GetContext(ctx, &n, query, pq.Array(idStrings(spotIDs))); err != nil {
		return 0, fmt.Errorf("analytics repository active count: %w", err)
	}
	return n, nil
}

func idStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
