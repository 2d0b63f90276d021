package session

import "errors"

var (
	ErrBookingNotFound   = errors.New("booking not found")
	ErrInvalidTransition = errors.New("booking is not in a state that allows this action")
)
