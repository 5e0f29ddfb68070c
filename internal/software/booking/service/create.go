package service

import (
	"context"
	"time"

	"ride-share/internal/domain/booking"
	"ride-share/internal/general/contracts"
	"ride-share/internal/ports"
)

// CreateBooking validates the request, reserves seats, and inserts the
// booking, all inside one transaction. Reserve and insert commit or roll
// back together, so a booking row can never exist without its seats.
func (service *bookingService) CreateBooking(ctx context.Context, in ports.CreateBookingInput) (ports.BookingResult, error) {
	var out ports.BookingResult
	var driverID string
	corrID := generateCorrelationID()

	err := service.uow.WithinTx(ctx, func(ctx context.Context) error {
		r, err := service.rides.GetByID(ctx, in.RideID)
		if err != nil {
			return err
		}
		if r.DriverID == in.PassengerID {
			return booking.ErrSelfBookingForbidden
		}

		dup, err := service.bookings.HasActiveForPassenger(ctx, in.RideID, in.PassengerID)
		if err != nil {
			return err
		}
		if dup {
			return booking.ErrDuplicateActiveBooking
		}

		// atomic check-and-decrement; fails with ErrRideNotActive or
		// ErrInsufficientSeats without mutating anything
		if err := service.rides.Reserve(ctx, in.RideID, in.Seats); err != nil {
			return err
		}

		b, err := booking.NewBooking(in.RideID, in.PassengerID, in.Seats, r.PricePerSeat*float64(in.Seats))
		if err != nil {
			return err
		}
		if err := service.bookings.CreateBooking(ctx, b); err != nil {
			return err
		}

		driverID = r.DriverID
		out = toBookingResult(b)
		return nil
	})
	if err != nil {
		service.logger.Error(ctx, "booking_create_failed", "Failed to create booking", err, map[string]any{
			"ride_id":      in.RideID,
			"passenger_id": in.PassengerID,
			"seats":        in.Seats,
			"request_id":   corrID,
		})
		return ports.BookingResult{}, err
	}

	service.logger.Info(ctx, "booking_created", "Booking created", map[string]any{
		"booking_id":   out.BookingID,
		"ride_id":      in.RideID,
		"passenger_id": in.PassengerID,
		"seats":        in.Seats,
		"total_price":  out.TotalPrice,
		"request_id":   corrID,
	})

	service.emit(ctx, contracts.NotificationEvent{
		Type:        contracts.EventBookingCreated,
		RecipientID: driverID,
		RideID:      in.RideID,
		BookingID:   out.BookingID,
		Seats:       in.Seats,
		OccurredAt:  time.Now().UTC(),
	})

	return out, nil
}
