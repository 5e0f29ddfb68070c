package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"ride-share/internal/domain/booking"
	"ride-share/internal/domain/chat"
	"ride-share/internal/domain/ride"
	"ride-share/internal/general/inmem"
	"ride-share/internal/general/logger"
	"ride-share/internal/ports"
)

type world struct {
	store      *inmem.Store
	authorizer ports.AccessAuthorizer
	messages   ports.MessageService
}

func newWorld(t *testing.T) *world {
	t.Helper()
	store := inmem.NewStore()
	log := logger.New("test")
	auth := NewAccessAuthorizer(log, store, store.Rides(), store.Bookings())
	msgs := NewMessageService(log, store, store.Messages(), auth)
	return &world{store: store, authorizer: auth, messages: msgs}
}

func (w *world) addRide(t *testing.T, driverID string) *ride.Ride {
	t.Helper()
	r, err := ride.NewRide(driverID, "Astana", "Almaty", time.Now().UTC().Add(time.Hour), 4, 2500)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.store.Rides().CreateRide(context.Background(), r); err != nil {
		t.Fatal(err)
	}
	return r
}

func (w *world) addBooking(t *testing.T, rideID, passengerID string) *booking.Booking {
	t.Helper()
	b, err := booking.NewBooking(rideID, passengerID, 1, 2500)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.store.Bookings().CreateBooking(context.Background(), b); err != nil {
		t.Fatal(err)
	}
	return b
}

func TestCanJoinRoom(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	r := w.addRide(t, "driver-1")
	b := w.addBooking(t, r.ID, "pass-a")

	tests := []struct {
		name   string
		userID string
		rideID string
		want   bool
	}{
		{"driver", "driver-1", r.ID, true},
		{"booked passenger", "pass-a", r.ID, true},
		{"stranger", "pass-b", r.ID, false},
		{"unknown ride", "driver-1", "no-such-ride", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := w.authorizer.CanJoinRoom(ctx, tt.userID, tt.rideID)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("CanJoinRoom = %v, want %v", got, tt.want)
			}
		})
	}

	// a cancelled booking no longer grants access
	if err := w.store.Bookings().UpdateStatus(ctx, b.ID, booking.StatusCancelled, time.Now().UTC()); err != nil {
		t.Fatal(err)
	}
	got, err := w.authorizer.CanJoinRoom(ctx, "pass-a", r.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got {
		t.Error("cancelled booking should not grant room access")
	}
}

func TestSaveMessageValidation(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	r := w.addRide(t, "driver-1")

	m, err := w.messages.SaveMessage(ctx, r.ID, "driver-1", "  leaving in 5  ")
	if err != nil {
		t.Fatal(err)
	}
	if m.Content != "leaving in 5" {
		t.Errorf("content = %q, want trimmed", m.Content)
	}
	if m.MessageID == "" {
		t.Error("stored message has no id")
	}

	if _, err := w.messages.SaveMessage(ctx, r.ID, "driver-1", "   "); !errors.Is(err, chat.ErrEmptyContent) {
		t.Errorf("blank content error = %v, want ErrEmptyContent", err)
	}
	long := strings.Repeat("x", 2001)
	if _, err := w.messages.SaveMessage(ctx, r.ID, "driver-1", long); !errors.Is(err, chat.ErrContentTooLong) {
		t.Errorf("oversized content error = %v, want ErrContentTooLong", err)
	}
}

func TestListRideMessages(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	r := w.addRide(t, "driver-1")
	w.addBooking(t, r.ID, "pass-a")

	for _, content := range []string{"first", "second", "third"} {
		if _, err := w.messages.SaveMessage(ctx, r.ID, "driver-1", content); err != nil {
			t.Fatal(err)
		}
	}

	got, err := w.messages.ListRideMessages(ctx, "pass-a", r.ID, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d messages, want 3", len(got))
	}
	// chronological order, oldest first
	if got[0].Content != "first" || got[2].Content != "third" {
		t.Errorf("messages out of order: %q ... %q", got[0].Content, got[2].Content)
	}

	// history is gated by the same rule as room joins
	if _, err := w.messages.ListRideMessages(ctx, "stranger", r.ID, 0); !errors.Is(err, booking.ErrUnauthorized) {
		t.Fatalf("stranger list error = %v, want ErrUnauthorized", err)
	}

	// a short limit keeps the newest tail
	tail, err := w.messages.ListRideMessages(ctx, "driver-1", r.ID, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(tail) != 2 || tail[0].Content != "second" || tail[1].Content != "third" {
		t.Errorf("limited history = %+v, want the last two messages in order", tail)
	}
}
