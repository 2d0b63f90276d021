// Package analytics computes the owner's today dashboard.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/parkspot/parkspot-api/internal/pkg/money"
)

// Dashboard is an owner's snapshot for the current local day.
type Dashboard struct {
	TodayEarnings    string    `json:"today_earnings"`
	CurrentOccupancy string    `json:"current_occupancy"`
	ActiveSessions   int       `json:"active_sessions"`
	TotalSlots       int       `json:"total_slots"`
	SpotCount        int       `json:"spot_count"`
	GeneratedAt      time.Time `json:"generated_at"`
}

// Service aggregates owner analytics
type Service struct {
	repo     Repository
	loc      *time.Location
	currency string
	now      func() time.Time
}

// NewService creates analytics service. Day boundaries are taken in loc.
func NewService(repo Repository, loc *time.Location, currency string) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{repo: repo, loc: loc, currency: currency, now: time.Now}
}

// StartOfDay is local midnight of t in the service's timezone.
func (s *Service) StartOfDay(t time.Time) time.Time {
	local := t.In(s.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.loc)
}

// TodayEarnings sums completed bookings that ended since local midnight.
func (s *Service) TodayEarnings(ctx context.Context, ownerID uuid.UUID) (string, error) {
	spots, err := s.repo.OwnedSpots(ctx, ownerID)
	if err != nil {
		return "", err
	}
	return s.earnings(ctx, spots)
}

// CurrentOccupancy is active sessions over total slots, as a percentage.
func (s *Service) CurrentOccupancy(ctx context.Context, ownerID uuid.UUID) (string, error) {
	spots, err := s.repo.OwnedSpots(ctx, ownerID)
	if err != nil {
		return "", err
	}
	occ, _, _, err := s.occupancy(ctx, spots)
	return occ, err
}

// Today builds the full dashboard with one spot lookup.
func (s *Service) Today(ctx context.Context, ownerID uuid.UUID) (*Dashboard, error) {
	spots, err := s.repo.OwnedSpots(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	earnings, err := s.earnings(ctx, spots)
	if err != nil {
		return nil, err
	}
	occ, active, total, err := s.occupancy(ctx, spots)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		TodayEarnings:    earnings,
		CurrentOccupancy: occ,
		ActiveSessions:   active,
		TotalSlots:       total,
		SpotCount:        len(spots),
		GeneratedAt:      s.now().UTC(),
	}, nil
}

func (s *Service) earnings(ctx context.Context, spots []OwnedSpot) (string, error) {
	if len(spots) == 0 {
		return money.Format(0, s.currency), nil
	}
	sum, err := s.repo.CompletedRevenueSince(ctx, spotIDs(spots), s.StartOfDay(s.now()), s.currency)
	if err != nil {
		return "", err
	}
	return money.Format(float64(sum), s.currency), nil
}

func (s *Service) occupancy(ctx context.Context, spots []OwnedSpot) (string, int, int, error) {
	total := 0
	for _, sp := range spots {
		total += sp.TotalSlots
	}
	if total == 0 {
		return "0.00", 0, 0, nil
	}

	active, err := s.repo.CountActive(ctx, spotIDs(spots))
	if err != nil {
		return "", 0, 0, err
	}
	return fmt.Sprintf("%.2f", float64(active)/float64(total)*100), active, total, nil
}

func spotIDs(spots []OwnedSpot) []uuid.UUID {
	ids := make([]uuid.UUID, len(spots))
	for i, sp := range spots {
		ids[i] = sp.ID
	}
	return ids
}
