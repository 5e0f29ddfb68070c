package inmem

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ride-share/internal/domain/booking"
	"ride-share/internal/domain/ride"
)

func seedRide(t *testing.T, s *Store, seats int) *ride.Ride {
	t.Helper()
	r, err := ride.NewRide("driver-1", "Astana", "Almaty", time.Now().UTC().Add(time.Hour), seats, 2500)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Rides().CreateRide(context.Background(), r); err != nil {
		t.Fatal(err)
	}
	return r
}

func TestConcurrentReserveExactlyOneWins(t *testing.T) {
	s := NewStore()
	r := seedRide(t, s, 3)
	rides := s.Rides()

	// two concurrent 2-seat reserves against 3 available seats
	const attempts = 2
	errs := make([]error, attempts)
	var start, done sync.WaitGroup
	start.Add(1)
	done.Add(attempts)
	for i := 0; i < attempts; i++ {
		go func(i int) {
			defer done.Done()
			start.Wait()
			errs[i] = rides.Reserve(context.Background(), r.ID, 2)
		}(i)
	}
	start.Done()
	done.Wait()

	var ok, insufficient int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ride.ErrInsufficientSeats):
			insufficient++
		default:
			t.Fatalf("unexpected reserve error: %v", err)
		}
	}
	if ok != 1 || insufficient != 1 {
		t.Fatalf("got %d successes and %d rejections, want exactly 1 and 1", ok, insufficient)
	}

	got, err := rides.GetByID(context.Background(), r.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.SeatsAvailable != 1 {
		t.Fatalf("seats_available = %d, want 1", got.SeatsAvailable)
	}
}

func TestReserveReleaseRoundTrip(t *testing.T) {
	s := NewStore()
	r := seedRide(t, s, 4)
	rides := s.Rides()
	ctx := context.Background()

	if err := rides.Reserve(ctx, r.ID, 3); err != nil {
		t.Fatal(err)
	}
	if err := rides.Release(ctx, r.ID, 3); err != nil {
		t.Fatal(err)
	}

	got, err := rides.GetByID(ctx, r.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.SeatsAvailable != 4 {
		t.Fatalf("seats_available = %d, want 4", got.SeatsAvailable)
	}

	// release over the total clamps
	if err := rides.Release(ctx, r.ID, 2); err != nil {
		t.Fatal(err)
	}
	got, _ = rides.GetByID(ctx, r.ID)
	if got.SeatsAvailable != 4 {
		t.Fatalf("clamped seats_available = %d, want 4", got.SeatsAvailable)
	}
}

func TestReserveFailureClassification(t *testing.T) {
	s := NewStore()
	r := seedRide(t, s, 2)
	rides := s.Rides()
	ctx := context.Background()

	if err := rides.Reserve(ctx, "no-such-ride", 1); !errors.Is(err, ride.ErrNotFound) {
		t.Errorf("unknown ride error = %v, want ErrNotFound", err)
	}
	if err := rides.Reserve(ctx, r.ID, 3); !errors.Is(err, ride.ErrInsufficientSeats) {
		t.Errorf("over-reserve error = %v, want ErrInsufficientSeats", err)
	}

	if err := rides.UpdateStatus(ctx, r.ID, ride.StatusCancelled, time.Now().UTC()); err != nil {
		t.Fatal(err)
	}
	if err := rides.Reserve(ctx, r.ID, 1); !errors.Is(err, ride.ErrRideNotActive) {
		t.Errorf("reserve on cancelled ride error = %v, want ErrRideNotActive", err)
	}
}

func TestRideUpdateStatusIdempotent(t *testing.T) {
	s := NewStore()
	r := seedRide(t, s, 2)
	rides := s.Rides()
	ctx := context.Background()
	now := time.Now().UTC()

	if err := rides.UpdateStatus(ctx, r.ID, ride.StatusCompleted, now); err != nil {
		t.Fatal(err)
	}
	// same status again is a no-op success
	if err := rides.UpdateStatus(ctx, r.ID, ride.StatusCompleted, now); err != nil {
		t.Fatalf("idempotent update error = %v, want nil", err)
	}
	// leaving a terminal state is refused
	if err := rides.UpdateStatus(ctx, r.ID, ride.StatusCancelled, now); !errors.Is(err, ride.ErrTerminalStatus) {
		t.Fatalf("terminal exit error = %v, want ErrTerminalStatus", err)
	}
}

func TestBookingUpdateStatus(t *testing.T) {
	s := NewStore()
	bookings := s.Bookings()
	ctx := context.Background()
	now := time.Now().UTC()

	b, err := booking.NewBooking("ride-1", "user-1", 2, 5000)
	if err != nil {
		t.Fatal(err)
	}
	if err := bookings.CreateBooking(ctx, b); err != nil {
		t.Fatal(err)
	}

	if err := bookings.UpdateStatus(ctx, b.ID, booking.StatusConfirmed, now); err != nil {
		t.Fatal(err)
	}
	// replay is a no-op success
	if err := bookings.UpdateStatus(ctx, b.ID, booking.StatusConfirmed, now); err != nil {
		t.Fatalf("idempotent confirm error = %v, want nil", err)
	}
	// confirmed cannot go back to pending
	if err := bookings.UpdateStatus(ctx, b.ID, booking.StatusPending, now); !errors.Is(err, booking.ErrStaleState) {
		t.Fatalf("illegal transition error = %v, want ErrStaleState", err)
	}

	if err := bookings.UpdateStatus(ctx, "no-such-booking", booking.StatusCancelled, now); !errors.Is(err, booking.ErrNotFound) {
		t.Fatalf("unknown booking error = %v, want ErrNotFound", err)
	}
}

func TestHasActiveForPassenger(t *testing.T) {
	s := NewStore()
	bookings := s.Bookings()
	ctx := context.Background()

	b, err := booking.NewBooking("ride-1", "user-1", 1, 2500)
	if err != nil {
		t.Fatal(err)
	}
	if err := bookings.CreateBooking(ctx, b); err != nil {
		t.Fatal(err)
	}

	got, err := bookings.HasActiveForPassenger(ctx, "ride-1", "user-1")
	if err != nil || !got {
		t.Fatalf("HasActiveForPassenger = %v, %v; want true, nil", got, err)
	}

	if err := bookings.UpdateStatus(ctx, b.ID, booking.StatusCancelled, time.Now().UTC()); err != nil {
		t.Fatal(err)
	}
	got, err = bookings.HasActiveForPassenger(ctx, "ride-1", "user-1")
	if err != nil || got {
		t.Fatalf("HasActiveForPassenger after cancel = %v, %v; want false, nil", got, err)
	}
}
