package booking

import (
	"errors"
	"testing"
)

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		from Status
		to   Status
		want bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusCompleted, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusCompleted, true},
		{StatusConfirmed, StatusPending, false},
		{StatusCancelled, StatusConfirmed, false},
		{StatusCancelled, StatusCompleted, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCompleted, StatusConfirmed, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestReservesCapacity(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusPending, true},
		{StatusConfirmed, true},
		{StatusCancelled, false},
		{StatusCompleted, false},
	}
	for _, tt := range tests {
		if got := tt.status.ReservesCapacity(); got != tt.want {
			t.Errorf("%s.ReservesCapacity() = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestParseAction(t *testing.T) {
	tests := []struct {
		in      string
		want    Action
		wantErr bool
	}{
		{"confirm", ActionConfirm, false},
		{"cancel", ActionCancel, false},
		{"CONFIRM", ActionConfirm, false},
		{" cancel ", ActionCancel, false},
		{"complete", "", true},
		{"", "", true},
		{"delete", "", true},
	}
	for _, tt := range tests {
		got, err := ParseAction(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidAction) {
				t.Errorf("ParseAction(%q) error = %v, want ErrInvalidAction", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseAction(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseAction(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestActionTarget(t *testing.T) {
	if ActionConfirm.Target() != StatusConfirmed {
		t.Errorf("confirm target = %q, want %q", ActionConfirm.Target(), StatusConfirmed)
	}
	if ActionCancel.Target() != StatusCancelled {
		t.Errorf("cancel target = %q, want %q", ActionCancel.Target(), StatusCancelled)
	}
}

func TestNewBooking(t *testing.T) {
	b, err := NewBooking("ride-1", "user-1", 2, 5000)
	if err != nil {
		t.Fatal(err)
	}
	if b.Status != StatusPending {
		t.Errorf("new booking status = %q, want %q", b.Status, StatusPending)
	}
	if b.PaymentStatus != PaymentPending {
		t.Errorf("new booking payment_status = %q, want %q", b.PaymentStatus, PaymentPending)
	}
	if !b.Active() {
		t.Error("new booking should reserve capacity")
	}

	if _, err := NewBooking("", "user-1", 2, 5000); !errors.Is(err, ErrRideRequired) {
		t.Errorf("missing ride error = %v, want ErrRideRequired", err)
	}
	if _, err := NewBooking("ride-1", "", 2, 5000); !errors.Is(err, ErrPassengerRequired) {
		t.Errorf("missing passenger error = %v, want ErrPassengerRequired", err)
	}
	if _, err := NewBooking("ride-1", "user-1", 0, 0); !errors.Is(err, ErrSeatsRequired) {
		t.Errorf("zero seats error = %v, want ErrSeatsRequired", err)
	}
}
