package inmem

import (
	"context"
	"sort"
	"time"

	"ride-share/internal/domain/ride"
)

// RideStore implements ports.RideRepository over the shared store.
type RideStore struct {
	s *Store
}

// CreateRide stores the ride, assigning an id when the caller left it empty.
func (rs *RideStore) CreateRide(ctx context.Context, r *ride.Ride) error {
	rs.s.mu.Lock()
	defer rs.s.mu.Unlock()

	if r.ID == "" {
		r.ID = rs.s.nextID("ride")
	}
	rs.s.rides[r.ID] = &rideEntry{r: *r}
	return nil
}

// GetByID returns a copy of the ride so callers never alias stored state.
func (rs *RideStore) GetByID(ctx context.Context, id string) (*ride.Ride, error) {
	entry, err := rs.s.rideEntry(id)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	out := entry.r
	return &out, nil
}

// ListByDriver returns the driver's rides, newest first.
func (rs *RideStore) ListByDriver(ctx context.Context, driverID string, limit int) ([]*ride.Ride, error) {
	rs.s.mu.RLock()
	defer rs.s.mu.RUnlock()

	var out []*ride.Ride
	for _, entry := range rs.s.rides {
		entry.mu.Lock()
		r := entry.r
		entry.mu.Unlock()
		if r.DriverID == driverID {
			out = append(out, &r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return clip(out, limit), nil
}

// ListActive returns a page of active rides ordered by departure time.
func (rs *RideStore) ListActive(ctx context.Context, limit, offset int) ([]*ride.Ride, error) {
	rs.s.mu.RLock()
	defer rs.s.mu.RUnlock()

	var out []*ride.Ride
	for _, entry := range rs.s.rides {
		entry.mu.Lock()
		r := entry.r
		entry.mu.Unlock()
		if r.Status == ride.StatusActive {
			out = append(out, &r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DepartureAt.Before(out[j].DepartureAt) })
	if offset >= len(out) {
		return nil, nil
	}
	return clip(out[offset:], limit), nil
}

// UpdateStatus moves the ride to a new status, refusing to leave terminal
// states. Writing the current status is a no-op success.
func (rs *RideStore) UpdateStatus(ctx context.Context, id string, status ride.Status, updatedAt time.Time) error {
	entry, err := rs.s.rideEntry(id)
	if err != nil {
		return err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	// idempotent success
	if entry.r.Status == status {
		return nil
	}
	if !status.Valid() {
		return ride.ErrInvalidStatus
	}
	if entry.r.Status.Terminal() {
		return ride.ErrTerminalStatus
	}

	entry.r.Status = status
	entry.r.UpdatedAt = updatedAt
	return nil
}

// Reserve is the atomic check-and-decrement on available seats. The per-ride
// lock serializes concurrent callers the way the row lock does in postgres.
func (rs *RideStore) Reserve(ctx context.Context, rideID string, seats int) error {
	entry, err := rs.s.rideEntry(rideID)
	if err != nil {
		return err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.r.Reserve(seats)
}

// Release returns seats to the pool, clamped at the ride's total.
func (rs *RideStore) Release(ctx context.Context, rideID string, seats int) error {
	entry, err := rs.s.rideEntry(rideID)
	if err != nil {
		return err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.r.Release(seats)
}
