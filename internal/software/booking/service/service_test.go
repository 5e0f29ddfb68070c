package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"ride-share/internal/domain/booking"
	"ride-share/internal/domain/ride"
	"ride-share/internal/general/inmem"
	"ride-share/internal/general/logger"
	"ride-share/internal/ports"
)

type fixture struct {
	svc   ports.BookingService
	store *inmem.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := inmem.NewStore()
	svc := NewBookingService(logger.New("test"), store, store.Rides(), store.Bookings(), nil)
	return &fixture{svc: svc, store: store}
}

func (f *fixture) publishRide(t *testing.T, driverID string, seats int) ports.RideResult {
	t.Helper()
	r, err := f.svc.CreateRide(context.Background(), ports.CreateRideInput{
		DriverID:     driverID,
		Origin:       "Astana",
		Destination:  "Almaty",
		DepartureAt:  time.Now().UTC().Add(12 * time.Hour),
		SeatsTotal:   seats,
		PricePerSeat: 2500,
	})
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func (f *fixture) book(t *testing.T, rideID, passengerID string, seats int) ports.BookingResult {
	t.Helper()
	b, err := f.svc.CreateBooking(context.Background(), ports.CreateBookingInput{
		RideID:      rideID,
		PassengerID: passengerID,
		Seats:       seats,
	})
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func (f *fixture) seatsAvailable(t *testing.T, rideID string) int {
	t.Helper()
	r, err := f.svc.GetRide(context.Background(), rideID)
	if err != nil {
		t.Fatal(err)
	}
	return r.SeatsAvailable
}

func TestBookingLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.publishRide(t, "driver-1", 4)

	// passenger A takes 3 of 4 seats; a pending booking already holds them
	a := f.book(t, r.RideID, "passenger-a", 3)
	if a.Status != string(booking.StatusPending) {
		t.Fatalf("new booking status = %q, want pending", a.Status)
	}
	if got := f.seatsAvailable(t, r.RideID); got != 1 {
		t.Fatalf("seats_available after booking = %d, want 1", got)
	}

	// passenger B cannot take 2; the pool stays at 1
	_, err := f.svc.CreateBooking(ctx, ports.CreateBookingInput{
		RideID: r.RideID, PassengerID: "passenger-b", Seats: 2,
	})
	if !errors.Is(err, ride.ErrInsufficientSeats) {
		t.Fatalf("over-booking error = %v, want ErrInsufficientSeats", err)
	}
	if got := f.seatsAvailable(t, r.RideID); got != 1 {
		t.Fatalf("seats_available after rejected booking = %d, want 1", got)
	}

	// confirmation does not touch the pool; the seats were taken at create
	confirmed, err := f.svc.TransitionBooking(ctx, ports.TransitionBookingInput{
		BookingID: a.BookingID, CallerID: "driver-1", Action: "confirm",
	})
	if err != nil {
		t.Fatal(err)
	}
	if confirmed.Status != string(booking.StatusConfirmed) {
		t.Fatalf("status after confirm = %q, want confirmed", confirmed.Status)
	}
	if got := f.seatsAvailable(t, r.RideID); got != 1 {
		t.Fatalf("seats_available after confirm = %d, want 1", got)
	}

	// cancellation hands the seats back
	cancelled, err := f.svc.TransitionBooking(ctx, ports.TransitionBookingInput{
		BookingID: a.BookingID, CallerID: "passenger-a", Action: "cancel",
	})
	if err != nil {
		t.Fatal(err)
	}
	if cancelled.Status != string(booking.StatusCancelled) {
		t.Fatalf("status after cancel = %q, want cancelled", cancelled.Status)
	}
	if got := f.seatsAvailable(t, r.RideID); got != 4 {
		t.Fatalf("seats_available after cancel = %d, want 4", got)
	}
}

func TestCreateBookingGuards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.publishRide(t, "driver-1", 4)

	// drivers cannot book their own ride
	_, err := f.svc.CreateBooking(ctx, ports.CreateBookingInput{
		RideID: r.RideID, PassengerID: "driver-1", Seats: 1,
	})
	if !errors.Is(err, booking.ErrSelfBookingForbidden) {
		t.Fatalf("self-booking error = %v, want ErrSelfBookingForbidden", err)
	}
	if got := f.seatsAvailable(t, r.RideID); got != 4 {
		t.Fatalf("seats_available after rejected self-booking = %d, want 4", got)
	}

	// one active booking per passenger per ride
	f.book(t, r.RideID, "passenger-a", 1)
	_, err = f.svc.CreateBooking(ctx, ports.CreateBookingInput{
		RideID: r.RideID, PassengerID: "passenger-a", Seats: 1,
	})
	if !errors.Is(err, booking.ErrDuplicateActiveBooking) {
		t.Fatalf("duplicate booking error = %v, want ErrDuplicateActiveBooking", err)
	}

	// after cancelling, the passenger may book again
	b, _ := f.svc.ListPassengerBookings(ctx, "passenger-a", 10)
	if _, err := f.svc.TransitionBooking(ctx, ports.TransitionBookingInput{
		BookingID: b[0].BookingID, CallerID: "passenger-a", Action: "cancel",
	}); err != nil {
		t.Fatal(err)
	}
	f.book(t, r.RideID, "passenger-a", 2)

	_, err = f.svc.CreateBooking(ctx, ports.CreateBookingInput{
		RideID: "no-such-ride", PassengerID: "passenger-a", Seats: 1,
	})
	if !errors.Is(err, ride.ErrNotFound) {
		t.Fatalf("unknown ride error = %v, want ErrNotFound", err)
	}
}

func TestTransitionIdempotency(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.publishRide(t, "driver-1", 4)
	b := f.book(t, r.RideID, "passenger-a", 2)

	confirm := ports.TransitionBookingInput{
		BookingID: b.BookingID, CallerID: "driver-1", Action: "confirm",
	}
	if _, err := f.svc.TransitionBooking(ctx, confirm); err != nil {
		t.Fatal(err)
	}
	// replaying the confirm succeeds and changes nothing
	got, err := f.svc.TransitionBooking(ctx, confirm)
	if err != nil {
		t.Fatalf("replayed confirm error = %v, want nil", err)
	}
	if got.Status != string(booking.StatusConfirmed) {
		t.Fatalf("replayed confirm status = %q, want confirmed", got.Status)
	}
	if avail := f.seatsAvailable(t, r.RideID); avail != 2 {
		t.Fatalf("seats_available after replay = %d, want 2", avail)
	}

	cancel := ports.TransitionBookingInput{
		BookingID: b.BookingID, CallerID: "passenger-a", Action: "cancel",
	}
	if _, err := f.svc.TransitionBooking(ctx, cancel); err != nil {
		t.Fatal(err)
	}
	// replayed cancel must not release the seats a second time
	if _, err := f.svc.TransitionBooking(ctx, cancel); err != nil {
		t.Fatalf("replayed cancel error = %v, want nil", err)
	}
	if avail := f.seatsAvailable(t, r.RideID); avail != 4 {
		t.Fatalf("seats_available after double cancel = %d, want 4", avail)
	}

	// a cancelled booking cannot be confirmed
	if _, err := f.svc.TransitionBooking(ctx, confirm); !errors.Is(err, booking.ErrStaleState) {
		t.Fatalf("confirm after cancel error = %v, want ErrStaleState", err)
	}
}

func TestTransitionAuthorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.publishRide(t, "driver-1", 4)
	b := f.book(t, r.RideID, "passenger-a", 1)

	// only the driver confirms
	_, err := f.svc.TransitionBooking(ctx, ports.TransitionBookingInput{
		BookingID: b.BookingID, CallerID: "passenger-a", Action: "confirm",
	})
	if !errors.Is(err, booking.ErrUnauthorized) {
		t.Fatalf("passenger confirm error = %v, want ErrUnauthorized", err)
	}

	// third parties cannot cancel
	_, err = f.svc.TransitionBooking(ctx, ports.TransitionBookingInput{
		BookingID: b.BookingID, CallerID: "passenger-b", Action: "cancel",
	})
	if !errors.Is(err, booking.ErrUnauthorized) {
		t.Fatalf("stranger cancel error = %v, want ErrUnauthorized", err)
	}

	// unknown verbs are rejected before any lookup
	_, err = f.svc.TransitionBooking(ctx, ports.TransitionBookingInput{
		BookingID: b.BookingID, CallerID: "driver-1", Action: "approve",
	})
	if !errors.Is(err, booking.ErrInvalidAction) {
		t.Fatalf("bad action error = %v, want ErrInvalidAction", err)
	}
}

func TestCancelRide(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.publishRide(t, "driver-1", 4)
	b := f.book(t, r.RideID, "passenger-a", 2)

	_, err := f.svc.CancelRide(ctx, "passenger-a", r.RideID)
	if !errors.Is(err, booking.ErrUnauthorized) {
		t.Fatalf("non-owner cancel error = %v, want ErrUnauthorized", err)
	}

	got, err := f.svc.CancelRide(ctx, "driver-1", r.RideID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != string(ride.StatusCancelled) {
		t.Fatalf("ride status = %q, want cancelled", got.Status)
	}

	// bookings are left for passengers to cancel on their own terms
	stillThere, err := f.svc.GetBooking(ctx, "passenger-a", b.BookingID)
	if err != nil {
		t.Fatal(err)
	}
	if stillThere.Status != string(booking.StatusPending) {
		t.Fatalf("booking status after ride cancel = %q, want pending", stillThere.Status)
	}

	// no new bookings on a cancelled ride
	_, err = f.svc.CreateBooking(ctx, ports.CreateBookingInput{
		RideID: r.RideID, PassengerID: "passenger-b", Seats: 1,
	})
	if !errors.Is(err, ride.ErrRideNotActive) {
		t.Fatalf("booking on cancelled ride error = %v, want ErrRideNotActive", err)
	}
}

func TestCompleteRideSweepsBookings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.publishRide(t, "driver-1", 4)

	pending := f.book(t, r.RideID, "passenger-a", 1)
	confirmed := f.book(t, r.RideID, "passenger-b", 2)
	if _, err := f.svc.TransitionBooking(ctx, ports.TransitionBookingInput{
		BookingID: confirmed.BookingID, CallerID: "driver-1", Action: "confirm",
	}); err != nil {
		t.Fatal(err)
	}
	cancelled := f.book(t, r.RideID, "passenger-c", 1)
	if _, err := f.svc.TransitionBooking(ctx, ports.TransitionBookingInput{
		BookingID: cancelled.BookingID, CallerID: "passenger-c", Action: "cancel",
	}); err != nil {
		t.Fatal(err)
	}

	got, err := f.svc.CompleteRide(ctx, "driver-1", r.RideID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != string(ride.StatusCompleted) {
		t.Fatalf("ride status = %q, want completed", got.Status)
	}

	// pending and confirmed bookings ride along to completed
	for _, id := range []string{pending.BookingID, confirmed.BookingID} {
		b, err := f.svc.GetBooking(ctx, "driver-1", id)
		if err != nil {
			t.Fatal(err)
		}
		if b.Status != string(booking.StatusCompleted) {
			t.Errorf("booking %s status = %q, want completed", id, b.Status)
		}
	}
	// a cancelled booking stays cancelled
	b, err := f.svc.GetBooking(ctx, "driver-1", cancelled.BookingID)
	if err != nil {
		t.Fatal(err)
	}
	if b.Status != string(booking.StatusCancelled) {
		t.Errorf("cancelled booking status = %q, want cancelled", b.Status)
	}

	// completing again is a no-op success; cancelling a completed ride is not
	if _, err := f.svc.CompleteRide(ctx, "driver-1", r.RideID); err != nil {
		t.Fatalf("second complete error = %v, want nil", err)
	}
	if _, err := f.svc.CancelRide(ctx, "driver-1", r.RideID); !errors.Is(err, ride.ErrTerminalStatus) {
		t.Fatalf("cancel after complete error = %v, want ErrTerminalStatus", err)
	}
}

func TestListRideBookingsVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.publishRide(t, "driver-1", 4)
	f.book(t, r.RideID, "passenger-a", 1)
	f.book(t, r.RideID, "passenger-b", 1)

	all, err := f.svc.ListRideBookings(ctx, "driver-1", r.RideID)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("driver sees %d bookings, want 2", len(all))
	}

	mine, err := f.svc.ListRideBookings(ctx, "passenger-a", r.RideID)
	if err != nil {
		t.Fatal(err)
	}
	if len(mine) != 1 || mine[0].PassengerID != "passenger-a" {
		t.Fatalf("passenger sees %+v, want only their own booking", mine)
	}
}
