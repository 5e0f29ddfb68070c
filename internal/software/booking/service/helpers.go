package service

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"ride-share/internal/domain/booking"
	"ride-share/internal/domain/ride"
	"ride-share/internal/ports"
)

// generateCorrelationID creates a simple correlation ID for tracing requests.
func generateCorrelationID() string {
	var b [3]byte // 6 hex chars
	_, _ = rand.Read(b[:])
	ts := time.Now().UTC().Format("20060102T150405")
	return "req_" + ts + "_" + hex.EncodeToString(b[:])
}

func toRideResult(r *ride.Ride) ports.RideResult {
	return ports.RideResult{
		RideID:         r.ID,
		DriverID:       r.DriverID,
		Origin:         r.Origin,
		Destination:    r.Destination,
		DepartureAt:    r.DepartureAt,
		SeatsTotal:     r.SeatsTotal,
		SeatsAvailable: r.SeatsAvailable,
		PricePerSeat:   r.PricePerSeat,
		Status:         r.Status.String(),
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func toRideResults(rides []*ride.Ride) []ports.RideResult {
	out := make([]ports.RideResult, 0, len(rides))
	for _, r := range rides {
		out = append(out, toRideResult(r))
	}
	return out
}

func toBookingResult(b *booking.Booking) ports.BookingResult {
	return ports.BookingResult{
		BookingID:     b.ID,
		RideID:        b.RideID,
		PassengerID:   b.PassengerID,
		SeatsBooked:   b.SeatsBooked,
		TotalPrice:    b.TotalPrice,
		Status:        b.Status.String(),
		PaymentStatus: b.PaymentStatus.String(),
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

func toBookingResults(bookings []*booking.Booking) []ports.BookingResult {
	out := make([]ports.BookingResult, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, toBookingResult(b))
	}
	return out
}
