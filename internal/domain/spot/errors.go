package spot

import "errors"

var (
	ErrSpotNotFound          = errors.New("parking spot not found")
	ErrNotSpotOwner          = errors.New("only the owner can modify this spot")
	ErrInvalidOperatingHours = errors.New("operating hours end must be after start")
	ErrLocationRequired      = errors.New("location is required")
	ErrSlotBounds            = errors.New("available slots out of bounds")
	ErrNothingToUpdate       = errors.New("no fields to update")
	ErrPhotoTooLarge         = errors.New("photo too large")
	ErrPhotoInvalid          = errors.New("photo must be a jpeg, png or gif image")
)
