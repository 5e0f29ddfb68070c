package booking

import "errors"

var (
	ErrNotFound               = errors.New("booking not found")
	ErrPassengerRequired      = errors.New("passenger id is required")
	ErrRideRequired           = errors.New("ride id is required")
	ErrSeatsRequired          = errors.New("seats_booked must be positive")
	ErrSelfBookingForbidden   = errors.New("drivers cannot book their own ride")
	ErrDuplicateActiveBooking = errors.New("passenger already has an active booking for this ride")
	ErrStaleState             = errors.New("booking is not in the expected state for this transition")
	ErrUnauthorized           = errors.New("caller is not allowed to perform this transition")
)
