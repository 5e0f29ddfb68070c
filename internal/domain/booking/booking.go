package booking

import (
	"strings"
	"time"
)

// PaymentStatus is an opaque passthrough field: the ledger stores and
// returns it but never settles payments itself.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// Valid reports whether the payment status is one of the known constants.
func (ps PaymentStatus) Valid() bool {
	switch ps {
	case PaymentPending, PaymentPaid, PaymentRefunded:
		return true
	default:
		return false
	}
}

// String returns the string representation of the PaymentStatus.
func (ps PaymentStatus) String() string {
	return string(ps)
}

// Booking is the domain entity corresponding to the `bookings` table.
// SeatsBooked is immutable after creation; only Status (and the
// passthrough PaymentStatus) change over a booking's lifetime.
type Booking struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time

	RideID      string
	PassengerID string

	SeatsBooked int
	TotalPrice  float64

	Status        Status
	PaymentStatus PaymentStatus
}

// NewBooking creates a pending booking. Seat availability is not checked
// here; the ledger reserves capacity atomically at creation time.
func NewBooking(rideID, passengerID string, seats int, totalPrice float64) (*Booking, error) {
	if rideID = strings.TrimSpace(rideID); rideID == "" {
		return nil, ErrRideRequired
	}
	if passengerID = strings.TrimSpace(passengerID); passengerID == "" {
		return nil, ErrPassengerRequired
	}
	if seats < 1 {
		return nil, ErrSeatsRequired
	}

	now := time.Now().UTC()
	return &Booking{
		CreatedAt:     now,
		UpdatedAt:     now,
		RideID:        rideID,
		PassengerID:   passengerID,
		SeatsBooked:   seats,
		TotalPrice:    totalPrice,
		Status:        StatusPending,
		PaymentStatus: PaymentPending,
	}, nil
}

// Active reports whether the booking currently reserves seats.
func (b *Booking) Active() bool {
	return b.Status.ReservesCapacity()
}
