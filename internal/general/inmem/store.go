// Package inmem provides in-memory implementations of the repository
// ports with the same semantics as the postgres implementations: per-ride
// serialization of seat inventory, idempotent status updates, clamped
// release. It backs the service-level tests and small local setups.
package inmem

import (
	"context"
	"fmt"
	"sync"

	"ride-share/internal/domain/booking"
	"ride-share/internal/domain/chat"
	"ride-share/internal/domain/notification"
	"ride-share/internal/domain/ride"
)

// Store holds all in-memory state. The typed repository views returned by
// Rides, Bookings, Messages and Notifications share it.
type Store struct {
	mu            sync.RWMutex
	rides         map[string]*rideEntry
	bookings      map[string]*booking.Booking
	messages      map[string][]*chat.Message
	notifications map[string][]*notification.Notification
	seq           int
}

// rideEntry carries its own lock so inventory mutation is serialized per
// ride while different rides proceed independently.
type rideEntry struct {
	mu sync.Mutex
	r  ride.Ride
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		rides:         make(map[string]*rideEntry),
		bookings:      make(map[string]*booking.Booking),
		messages:      make(map[string][]*chat.Message),
		notifications: make(map[string][]*notification.Notification),
	}
}

// WithinTx runs fn directly; the in-memory store has no transactions.
// Repository calls are individually atomic, which is enough for the
// validate-reserve-insert ordering the ledger uses.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// Rides returns the ride repository view of the store.
func (s *Store) Rides() *RideStore { return &RideStore{s: s} }

// Bookings returns the booking repository view of the store.
func (s *Store) Bookings() *BookingStore { return &BookingStore{s: s} }

// Messages returns the chat message repository view of the store.
func (s *Store) Messages() *MessageStore { return &MessageStore{s: s} }

// Notifications returns the notification repository view of the store.
func (s *Store) Notifications() *NotificationStore { return &NotificationStore{s: s} }

func (s *Store) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%06d", prefix, s.seq)
}

func (s *Store) rideEntry(id string) (*rideEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.rides[id]
	if !ok {
		return nil, ride.ErrNotFound
	}
	return entry, nil
}

// --- helpers ---

func clip[T any](in []T, limit int) []T {
	if limit > 0 && len(in) > limit {
		return in[:limit]
	}
	return in
}
