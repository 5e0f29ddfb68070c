package ride

import (
	"errors"
	"strings"
	"time"
)

// Ride is the domain entity corresponding to the `rides` table.
type Ride struct {
	// Identity & audit
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time

	// Actors
	DriverID string

	// Route & schedule
	Origin      string
	Destination string
	DepartureAt time.Time

	// Seat inventory. SeatsTotal is immutable after creation;
	// SeatsAvailable is mutated only through Reserve/Release.
	SeatsTotal     int
	SeatsAvailable int

	// Pricing (per seat; bookings snapshot a total at creation time)
	PricePerSeat float64

	Status Status
}

var (
	ErrDriverRequired     = errors.New("driver id is required")
	ErrRouteRequired      = errors.New("origin and destination are required")
	ErrSeatsOutOfRange    = errors.New("seats_total must be between 1 and 8")
	ErrSeatCountInvalid   = errors.New("seat count must be positive")
	ErrNegativePrice      = errors.New("price_per_seat must not be negative")
	ErrRideNotActive      = errors.New("ride is not active")
	ErrInsufficientSeats  = errors.New("not enough seats available")
	ErrTerminalStatus     = errors.New("ride is already in a terminal state")
	ErrNotFound           = errors.New("ride not found")
	ErrDepartureInThePast = errors.New("departure time must be in the future")
)

// NewRide creates a new active ride with all seats available.
func NewRide(driverID, origin, destination string, departureAt time.Time, seatsTotal int, pricePerSeat float64) (*Ride, error) {
	if driverID = strings.TrimSpace(driverID); driverID == "" {
		return nil, ErrDriverRequired
	}
	origin = strings.TrimSpace(origin)
	destination = strings.TrimSpace(destination)
	if origin == "" || destination == "" {
		return nil, ErrRouteRequired
	}
	if seatsTotal < 1 || seatsTotal > 8 {
		return nil, ErrSeatsOutOfRange
	}
	if pricePerSeat < 0 {
		return nil, ErrNegativePrice
	}

	now := time.Now().UTC()
	if !departureAt.IsZero() && departureAt.Before(now) {
		return nil, ErrDepartureInThePast
	}

	return &Ride{
		CreatedAt:      now,
		UpdatedAt:      now,
		DriverID:       driverID,
		Origin:         origin,
		Destination:    destination,
		DepartureAt:    departureAt.UTC(),
		SeatsTotal:     seatsTotal,
		SeatsAvailable: seatsTotal,
		PricePerSeat:   pricePerSeat,
		Status:         StatusActive,
	}, nil
}

// Reserve consumes seats from the available pool. The check and the
// decrement happen together; callers serialize access per ride.
func (ride *Ride) Reserve(seats int) error {
	if seats < 1 {
		return ErrSeatCountInvalid
	}
	if ride.Status != StatusActive {
		return ErrRideNotActive
	}
	if ride.SeatsAvailable < seats {
		return ErrInsufficientSeats
	}
	ride.SeatsAvailable -= seats
	ride.touch()
	return nil
}

// Release returns seats to the available pool, clamped so availability
// never exceeds the total. The clamp is a last-resort invariant guard;
// callers must release at most once per successful reserve.
func (ride *Ride) Release(seats int) error {
	if seats < 1 {
		return ErrSeatCountInvalid
	}
	ride.SeatsAvailable += seats
	if ride.SeatsAvailable > ride.SeatsTotal {
		ride.SeatsAvailable = ride.SeatsTotal
	}
	ride.touch()
	return nil
}

// Cancel transitions the ride to cancelled (if not terminal).
func (ride *Ride) Cancel() error {
	if ride.Status.Terminal() {
		return ErrTerminalStatus
	}
	ride.Status = StatusCancelled
	ride.touch()
	return nil
}

// Complete transitions the ride to completed (if not terminal).
func (ride *Ride) Complete() error {
	if ride.Status.Terminal() {
		return ErrTerminalStatus
	}
	ride.Status = StatusCompleted
	ride.touch()
	return nil
}

func (ride *Ride) touch() {
	ride.UpdatedAt = time.Now().UTC()
}
