package booking

import (
	"errors"

	"github.com/parkspot/parkspot-api/internal/domain/spot"
)

var (
	ErrBookingNotFound  = errors.New("booking not found")
	ErrSpotNotFound     = spot.ErrSpotNotFound
	ErrInvalidWindow    = errors.New("end time must be after start time")
	ErrNoSlotsAvailable = errors.New("no slots available for the selected time")
	ErrNotAllowed       = errors.New("not allowed to access this booking")
	ErrNotSpotOwner     = errors.New("only the spot owner can do this")
)
