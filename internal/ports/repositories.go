package ports

import (
	"context"
	"time"

	"ride-share/internal/domain/booking"
	"ride-share/internal/domain/chat"
	"ride-share/internal/domain/notification"
	"ride-share/internal/domain/ride"
)

// UnitOfWork interface is used to manage transactions across multiple repository operations.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// RideRepository defines the methods for managing ride data, including the
// seat inventory. Reserve and Release are the only paths that mutate
// seats_available; both are atomic with respect to concurrent callers for
// the same ride.
type RideRepository interface {
	CreateRide(ctx context.Context, r *ride.Ride) error
	GetByID(ctx context.Context, id string) (*ride.Ride, error)
	ListByDriver(ctx context.Context, driverID string, limit int) ([]*ride.Ride, error)
	ListActive(ctx context.Context, limit, offset int) ([]*ride.Ride, error)
	UpdateStatus(ctx context.Context, id string, status ride.Status, updatedAt time.Time) error

	// Reserve atomically checks `status == active AND seats_available >= seats`
	// and decrements on success. Failures are ride.ErrNotFound,
	// ride.ErrRideNotActive, or ride.ErrInsufficientSeats, with no mutation.
	Reserve(ctx context.Context, rideID string, seats int) error

	// Release atomically increments seats_available, clamped at seats_total.
	Release(ctx context.Context, rideID string, seats int) error
}

// BookingRepository defines the methods for managing booking data.
type BookingRepository interface {
	CreateBooking(ctx context.Context, b *booking.Booking) error
	GetByID(ctx context.Context, id string) (*booking.Booking, error)
	ListByRide(ctx context.Context, rideID string) ([]*booking.Booking, error)
	ListByPassenger(ctx context.Context, passengerID string, limit int) ([]*booking.Booking, error)
	ListActiveByRide(ctx context.Context, rideID string) ([]*booking.Booking, error)
	HasActiveForPassenger(ctx context.Context, rideID, passengerID string) (bool, error)
	UpdateStatus(ctx context.Context, id string, status booking.Status, updatedAt time.Time) error
	UpdatePaymentStatus(ctx context.Context, id string, ps booking.PaymentStatus, updatedAt time.Time) error
}

// MessageRepository defines the methods for persisting ride chat messages.
type MessageRepository interface {
	CreateMessage(ctx context.Context, m *chat.Message) error
	ListByRide(ctx context.Context, rideID string, limit int) ([]*chat.Message, error)
}

// NotificationRepository records notifications produced by the dispatcher.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, n *notification.Notification) error
	ListByUser(ctx context.Context, userID string, limit int) ([]*notification.Notification, error)
}
