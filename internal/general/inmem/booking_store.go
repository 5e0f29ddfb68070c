package inmem

import (
	"context"
	"sort"
	"time"

	"ride-share/internal/domain/booking"
)

// BookingStore implements ports.BookingRepository over the shared store.
type BookingStore struct {
	s *Store
}

// CreateBooking stores the booking, assigning an id when the caller left it empty.
func (bs *BookingStore) CreateBooking(ctx context.Context, b *booking.Booking) error {
	bs.s.mu.Lock()
	defer bs.s.mu.Unlock()

	if b.ID == "" {
		b.ID = bs.s.nextID("booking")
	}
	cp := *b
	bs.s.bookings[b.ID] = &cp
	return nil
}

// GetByID returns a copy of the booking.
func (bs *BookingStore) GetByID(ctx context.Context, id string) (*booking.Booking, error) {
	bs.s.mu.RLock()
	defer bs.s.mu.RUnlock()

	b, ok := bs.s.bookings[id]
	if !ok {
		return nil, booking.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

// ListByRide returns all bookings for a ride, newest first.
func (bs *BookingStore) ListByRide(ctx context.Context, rideID string) ([]*booking.Booking, error) {
	bs.s.mu.RLock()
	defer bs.s.mu.RUnlock()

	var out []*booking.Booking
	for _, b := range bs.s.bookings {
		if b.RideID == rideID {
			cp := *b
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// ListByPassenger returns recent bookings made by a passenger.
func (bs *BookingStore) ListByPassenger(ctx context.Context, passengerID string, limit int) ([]*booking.Booking, error) {
	bs.s.mu.RLock()
	defer bs.s.mu.RUnlock()

	var out []*booking.Booking
	for _, b := range bs.s.bookings {
		if b.PassengerID == passengerID {
			cp := *b
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return clip(out, limit), nil
}

// ListActiveByRide returns the ride's bookings that currently reserve capacity.
func (bs *BookingStore) ListActiveByRide(ctx context.Context, rideID string) ([]*booking.Booking, error) {
	bs.s.mu.RLock()
	defer bs.s.mu.RUnlock()

	var out []*booking.Booking
	for _, b := range bs.s.bookings {
		if b.RideID == rideID && b.Status.ReservesCapacity() {
			cp := *b
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// HasActiveForPassenger reports whether the passenger already holds a
// pending or confirmed booking on the ride.
func (bs *BookingStore) HasActiveForPassenger(ctx context.Context, rideID, passengerID string) (bool, error) {
	bs.s.mu.RLock()
	defer bs.s.mu.RUnlock()

	for _, b := range bs.s.bookings {
		if b.RideID == rideID && b.PassengerID == passengerID && b.Status.ReservesCapacity() {
			return true, nil
		}
	}
	return false, nil
}

// UpdateStatus sets the booking status. Writing the current status is a
// no-op success; anything else must be a legal transition.
func (bs *BookingStore) UpdateStatus(ctx context.Context, id string, status booking.Status, updatedAt time.Time) error {
	bs.s.mu.Lock()
	defer bs.s.mu.Unlock()

	b, ok := bs.s.bookings[id]
	if !ok {
		return booking.ErrNotFound
	}

	// idempotent success
	if b.Status == status {
		return nil
	}
	if !status.Valid() {
		return booking.ErrInvalidStatus
	}
	if !b.Status.CanTransitionTo(status) {
		return booking.ErrStaleState
	}

	b.Status = status
	b.UpdatedAt = updatedAt
	return nil
}

// UpdatePaymentStatus stores the passthrough payment status.
func (bs *BookingStore) UpdatePaymentStatus(ctx context.Context, id string, ps booking.PaymentStatus, updatedAt time.Time) error {
	bs.s.mu.Lock()
	defer bs.s.mu.Unlock()

	b, ok := bs.s.bookings[id]
	if !ok {
		return booking.ErrNotFound
	}
	b.PaymentStatus = ps
	b.UpdatedAt = updatedAt
	return nil
}
