package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ride-share/internal/domain/booking"
	"ride-share/internal/ports"

	"github.com/jackc/pgx/v5"
)

// BookingRepo persists bookings using pgx and plain SQL. Status transition
// rules live in the booking ledger service; this layer only guards against
// lost updates by locking the row inside UpdateStatus.
type BookingRepo struct{}

// NewBookingRepo constructs a new BookingRepo.
func NewBookingRepo() ports.BookingRepository {
	return &BookingRepo{}
}

const bookingColumns = `
	id, ride_id, passenger_id, seats_booked, total_price,
	status, payment_status, created_at, updated_at`

// CreateBooking inserts a new booking row. The caller reserves seats in the
// same transaction; an insert without a matching reserve must never commit.
func (repo *BookingRepo) CreateBooking(ctx context.Context, b *booking.Booking) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO bookings (
			ride_id, passenger_id, seats_booked, total_price, status, payment_status
		)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`,
		b.RideID,
		b.PassengerID,
		b.SeatsBooked,
		b.TotalPrice,
		b.Status.String(),
		b.PaymentStatus.String(),
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}

	return nil
}

// GetByID fetches a booking by primary key (uuid).
func (repo *BookingRepo) GetByID(ctx context.Context, id string) (*booking.Booking, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	row := tx.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	out, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, booking.ErrNotFound
		}
		return nil, fmt.Errorf("query booking by id: %w", err)
	}

	return out, nil
}

// ListByRide returns all bookings for a ride, newest first.
func (repo *BookingRepo) ListByRide(ctx context.Context, rideID string) ([]*booking.Booking, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE ride_id = $1
		ORDER BY created_at DESC`, rideID)
	if err != nil {
		return nil, fmt.Errorf("query bookings by ride: %w", err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

// ListByPassenger returns recent bookings made by a passenger.
func (repo *BookingRepo) ListByPassenger(ctx context.Context, passengerID string, limit int) ([]*booking.Booking, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE passenger_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, passengerID, limit)
	if err != nil {
		return nil, fmt.Errorf("query bookings by passenger: %w", err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

// ListActiveByRide returns the ride's bookings that currently reserve
// capacity (pending or confirmed). Used by the ride completion sweep.
func (repo *BookingRepo) ListActiveByRide(ctx context.Context, rideID string) ([]*booking.Booking, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE ride_id = $1
		  AND status IN ('pending', 'confirmed')
		ORDER BY created_at ASC`, rideID)
	if err != nil {
		return nil, fmt.Errorf("query active bookings by ride: %w", err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

// HasActiveForPassenger reports whether the passenger already holds a
// pending or confirmed booking on the ride.
func (repo *BookingRepo) HasActiveForPassenger(ctx context.Context, rideID, passengerID string) (bool, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return false, err
	}

	var exists bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM bookings
			WHERE ride_id = $1
			  AND passenger_id = $2
			  AND status IN ('pending', 'confirmed')
		)`, rideID, passengerID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query active booking existence: %w", err)
	}

	return exists, nil
}

// UpdateStatus sets the booking status after locking the row. Idempotent:
// writing the current status is a no-op success.
func (repo *BookingRepo) UpdateStatus(ctx context.Context, id string, status booking.Status, updatedAt time.Time) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	var current string
	err = tx.QueryRow(ctx, `
		SELECT status
		FROM bookings
		WHERE id = $1
		FOR UPDATE
	`, id).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return booking.ErrNotFound
		}
		return err
	}

	// idempotent success
	if current == status.String() {
		return nil
	}

	if !status.Valid() {
		return booking.ErrInvalidStatus
	}

	if !booking.Status(current).CanTransitionTo(status) {
		return booking.ErrStaleState
	}

	_, err = tx.Exec(ctx, `
		UPDATE bookings
		SET status = $1,
		    updated_at = $2
		WHERE id = $3
	`, status.String(), updatedAt, id)
	if err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}

	return nil
}

// UpdatePaymentStatus stores the passthrough payment status.
func (repo *BookingRepo) UpdatePaymentStatus(ctx context.Context, id string, ps booking.PaymentStatus, updatedAt time.Time) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	ct, err := tx.Exec(ctx, `
		UPDATE bookings
		SET payment_status = $1,
		    updated_at = $2
		WHERE id = $3
	`, ps.String(), updatedAt, id)
	if err != nil {
		return fmt.Errorf("update booking payment status: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return booking.ErrNotFound
	}

	return nil
}

// --- helpers ---

func scanBooking(row rowScanner) (*booking.Booking, error) {
	var out booking.Booking
	var status, payment string

	err := row.Scan(
		&out.ID, &out.RideID, &out.PassengerID, &out.SeatsBooked, &out.TotalPrice,
		&status, &payment, &out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	out.Status = booking.Status(status)
	out.PaymentStatus = booking.PaymentStatus(payment)

	return &out, nil
}

func collectBookings(rows pgx.Rows) ([]*booking.Booking, error) {
	var bookings []*booking.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return bookings, nil
}
