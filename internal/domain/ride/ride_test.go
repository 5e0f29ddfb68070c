package ride

import (
	"errors"
	"testing"
	"time"
)

func validDeparture() time.Time {
	return time.Now().UTC().Add(24 * time.Hour)
}

func TestNewRideValidation(t *testing.T) {
	dep := validDeparture()

	tests := []struct {
		name        string
		driverID    string
		origin      string
		destination string
		departureAt time.Time
		seats       int
		price       float64
		wantErr     error
	}{
		{"valid", "driver-1", "Astana", "Almaty", dep, 4, 2500, nil},
		{"valid zero departure", "driver-1", "Astana", "Almaty", time.Time{}, 4, 2500, nil},
		{"missing driver", "", "Astana", "Almaty", dep, 4, 2500, ErrDriverRequired},
		{"blank driver", "   ", "Astana", "Almaty", dep, 4, 2500, ErrDriverRequired},
		{"missing origin", "driver-1", "", "Almaty", dep, 4, 2500, ErrRouteRequired},
		{"missing destination", "driver-1", "Astana", "", dep, 4, 2500, ErrRouteRequired},
		{"zero seats", "driver-1", "Astana", "Almaty", dep, 0, 2500, ErrSeatsOutOfRange},
		{"too many seats", "driver-1", "Astana", "Almaty", dep, 9, 2500, ErrSeatsOutOfRange},
		{"negative price", "driver-1", "Astana", "Almaty", dep, 4, -1, ErrNegativePrice},
		{"departure in the past", "driver-1", "Astana", "Almaty", time.Now().UTC().Add(-time.Hour), 4, 2500, ErrDepartureInThePast},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewRide(tt.driverID, tt.origin, tt.destination, tt.departureAt, tt.seats, tt.price)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("NewRide() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if r.Status != StatusActive {
				t.Errorf("new ride status = %q, want %q", r.Status, StatusActive)
			}
			if r.SeatsAvailable != tt.seats {
				t.Errorf("seats_available = %d, want %d", r.SeatsAvailable, tt.seats)
			}
		})
	}
}

func TestReserve(t *testing.T) {
	r, err := NewRide("driver-1", "Astana", "Almaty", validDeparture(), 4, 2500)
	if err != nil {
		t.Fatal(err)
	}

	if err := r.Reserve(3); err != nil {
		t.Fatalf("Reserve(3) failed: %v", err)
	}
	if r.SeatsAvailable != 1 {
		t.Fatalf("seats_available = %d, want 1", r.SeatsAvailable)
	}

	// over-reserve leaves the pool untouched
	if err := r.Reserve(2); !errors.Is(err, ErrInsufficientSeats) {
		t.Fatalf("Reserve(2) error = %v, want ErrInsufficientSeats", err)
	}
	if r.SeatsAvailable != 1 {
		t.Fatalf("seats_available after failed reserve = %d, want 1", r.SeatsAvailable)
	}

	if err := r.Reserve(0); !errors.Is(err, ErrSeatCountInvalid) {
		t.Fatalf("Reserve(0) error = %v, want ErrSeatCountInvalid", err)
	}

	if err := r.Cancel(); err != nil {
		t.Fatal(err)
	}
	if err := r.Reserve(1); !errors.Is(err, ErrRideNotActive) {
		t.Fatalf("Reserve on cancelled ride error = %v, want ErrRideNotActive", err)
	}
}

func TestReleaseClampsAtTotal(t *testing.T) {
	r, err := NewRide("driver-1", "Astana", "Almaty", validDeparture(), 4, 2500)
	if err != nil {
		t.Fatal(err)
	}

	if err := r.Reserve(2); err != nil {
		t.Fatal(err)
	}
	if err := r.Release(2); err != nil {
		t.Fatal(err)
	}
	if r.SeatsAvailable != 4 {
		t.Fatalf("round trip seats_available = %d, want 4", r.SeatsAvailable)
	}

	// double release clamps rather than overflowing
	if err := r.Release(2); err != nil {
		t.Fatal(err)
	}
	if r.SeatsAvailable != 4 {
		t.Fatalf("clamped seats_available = %d, want 4", r.SeatsAvailable)
	}
}

func TestTerminalTransitions(t *testing.T) {
	r, err := NewRide("driver-1", "Astana", "Almaty", validDeparture(), 4, 2500)
	if err != nil {
		t.Fatal(err)
	}

	if err := r.Complete(); err != nil {
		t.Fatal(err)
	}
	if err := r.Cancel(); !errors.Is(err, ErrTerminalStatus) {
		t.Fatalf("Cancel on completed ride error = %v, want ErrTerminalStatus", err)
	}
	if err := r.Complete(); !errors.Is(err, ErrTerminalStatus) {
		t.Fatalf("Complete on completed ride error = %v, want ErrTerminalStatus", err)
	}
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    Status
		wantErr bool
	}{
		{"active", StatusActive, false},
		{"completed", StatusCompleted, false},
		{"cancelled", StatusCancelled, false},
		{"ACTIVE", StatusActive, false},
		{" active ", StatusActive, false},
		{"pending", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseStatus(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseStatus(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseStatus(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
