package booking

import (
	"errors"
	"strings"
)

// Status is a booking status as stored in the `bookings` table.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

var ErrInvalidStatus = errors.New("invalid booking status")

// ParseStatus normalizes (lowercases+trims) and validates a status string.
func ParseStatus(in string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(in)))
	if status.Valid() {
		return status, nil
	}
	return "", ErrInvalidStatus
}

// Valid reports whether status is one of the allowed booking status constants.
func (status Status) Valid() bool {
	switch status {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	default:
		return false
	}
}

// String returns the string representation of the Status.
func (status Status) String() string {
	return string(status)
}

// Terminal indicates if the status is in a terminal state.
func (status Status) Terminal() bool {
	return status == StatusCancelled || status == StatusCompleted
}

// ReservesCapacity reports whether a booking in this status holds seats
// on its ride. A pending request already holds a tentative seat; only
// cancellation or completion returns (or stops counting) capacity.
func (status Status) ReservesCapacity() bool {
	return status == StatusPending || status == StatusConfirmed
}

// CanTransitionTo specifies if the status can transition to the next status.
func (status Status) CanTransitionTo(next Status) bool {
	switch status {
	case StatusPending:
		return next == StatusConfirmed || next == StatusCancelled || next == StatusCompleted

	case StatusConfirmed:
		return next == StatusCancelled || next == StatusCompleted

	case StatusCancelled, StatusCompleted:
		return false

	default:
		return false
	}
}
