package spot

import (
	"context"

	"github.com/google/uuid"

	"github.com/parkspot/parkspot-api/internal/config"
)

// SlotCounter moves a spot's available_slots by one step.
type SlotCounter interface {
	Adjust(ctx context.Context, spotID uuid.UUID, delta int) (*SlotChange, error)
}

// NewSlotCounter picks the accounting mode. Unknown modes fall back to faithful.
func NewSlotCounter(repo Repository, mode string) SlotCounter {
	if mode == config.SlotAccountingAtomic {
		return &lockedCounter{repo: repo}
	}
	return &readWriteCounter{repo: repo}
}

// readWriteCounter reads the counter, bounds-checks the new value and writes it
// back as a separate statement. Two concurrent adjusters can lose an update.
type readWriteCounter struct {
	repo Repository
}

func (c *readWriteCounter) Adjust(ctx context.Context, spotID uuid.UUID, delta int) (*SlotChange, error) {
	available, total, err := c.repo.GetSlots(ctx, spotID)
	if err != nil {
		return nil, err
	}

	change := &SlotChange{SpotID: spotID, Previous: available, Current: available + delta, TotalSlots: total}
	if change.Current < 0 || change.Current > total {
		return change, ErrSlotBounds
	}

	if err := c.repo.SetAvailableSlots(ctx, spotID, change.Current); err != nil {
		return nil, err
	}
	return change, nil
}

// lockedCounter performs the same check under SELECT ... FOR UPDATE.
type lockedCounter struct {
	repo Repository
}

func (c *lockedCounter) Adjust(ctx context.Context, spotID uuid.UUID, delta int) (*SlotChange, error) {
	return c.repo.AdjustSlotsLocked(ctx, spotID, delta)
}
