package ports

import (
	"context"
	"time"
)

// ----- DTOs for the Booking Service -----

// CreateRideInput is the validated input required to publish a ride.
type CreateRideInput struct {
	DriverID     string
	Origin       string
	Destination  string
	DepartureAt  time.Time
	SeatsTotal   int
	PricePerSeat float64
}

// RideResult is the API-facing view of a ride.
type RideResult struct {
	RideID         string    `json:"ride_id"`
	DriverID       string    `json:"driver_id"`
	Origin         string    `json:"origin"`
	Destination    string    `json:"destination"`
	DepartureAt    time.Time `json:"departure_at"`
	SeatsTotal     int       `json:"seats_total"`
	SeatsAvailable int       `json:"seats_available"`
	PricePerSeat   float64   `json:"price_per_seat"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CreateBookingInput is the validated input for a passenger booking request.
type CreateBookingInput struct {
	RideID      string
	PassengerID string
	Seats       int
}

// TransitionBookingInput carries a caller-requested booking transition.
// Action has already been parsed into the closed action set at the boundary.
type TransitionBookingInput struct {
	BookingID string
	CallerID  string
	Action    string // booking.ActionConfirm | booking.ActionCancel
}

// BookingResult is the API-facing view of a booking.
type BookingResult struct {
	BookingID     string    `json:"booking_id"`
	RideID        string    `json:"ride_id"`
	PassengerID   string    `json:"passenger_id"`
	SeatsBooked   int       `json:"seats_booked"`
	TotalPrice    float64   `json:"total_price"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ----- Booking Service Interface -----

// BookingService exposes the ride inventory and booking ledger boundary.
type BookingService interface {
	CreateRide(ctx context.Context, in CreateRideInput) (RideResult, error)
	GetRide(ctx context.Context, rideID string) (RideResult, error)
	ListDriverRides(ctx context.Context, driverID string, limit int) ([]RideResult, error)
	ListActiveRides(ctx context.Context, limit, offset int) ([]RideResult, error)
	CancelRide(ctx context.Context, callerID, rideID string) (RideResult, error)
	CompleteRide(ctx context.Context, callerID, rideID string) (RideResult, error)

	CreateBooking(ctx context.Context, in CreateBookingInput) (BookingResult, error)
	TransitionBooking(ctx context.Context, in TransitionBookingInput) (BookingResult, error)
	GetBooking(ctx context.Context, callerID, bookingID string) (BookingResult, error)
	ListRideBookings(ctx context.Context, callerID, rideID string) ([]BookingResult, error)
	ListPassengerBookings(ctx context.Context, passengerID string, limit int) ([]BookingResult, error)

	// RunBackgroundPublisher drains the notification event channel and
	// publishes events to the broker until ctx is cancelled.
	RunBackgroundPublisher(ctx context.Context)
}

// ----- Realtime boundary -----

// AccessAuthorizer answers whether a user may join a ride's realtime rooms.
// The decision is evaluated fresh on every join attempt; it is never cached
// across reconnects.
type AccessAuthorizer interface {
	CanJoinRoom(ctx context.Context, userID, rideID string) (bool, error)
}

// MessageResult is the API-facing view of a chat message.
type MessageResult struct {
	MessageID string    `json:"message_id"`
	RideID    string    `json:"ride_id"`
	SenderID  string    `json:"sender_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// MessageService persists and lists ride chat history. Fan-out to live
// connections is the room broker's job, not this service's.
type MessageService interface {
	SaveMessage(ctx context.Context, rideID, senderID, content string) (MessageResult, error)
	ListRideMessages(ctx context.Context, callerID, rideID string, limit int) ([]MessageResult, error)
}
