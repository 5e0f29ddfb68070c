package service

import (
	"context"
	"time"

	"ride-share/internal/domain/booking"
	"ride-share/internal/general/contracts"
	"ride-share/internal/ports"
)

// TransitionBooking applies a confirm or cancel action to a booking.
// Replaying a transition the booking has already made is a no-op success
// with no side effects; illegal transitions fail with ErrStaleState.
func (service *bookingService) TransitionBooking(ctx context.Context, in ports.TransitionBookingInput) (ports.BookingResult, error) {
	var out ports.BookingResult
	var passengerID string
	var applied bool
	corrID := generateCorrelationID()

	action, err := booking.ParseAction(in.Action)
	if err != nil {
		return ports.BookingResult{}, err
	}
	target := action.Target()

	err = service.uow.WithinTx(ctx, func(ctx context.Context) error {
		b, err := service.bookings.GetByID(ctx, in.BookingID)
		if err != nil {
			return err
		}
		r, err := service.rides.GetByID(ctx, b.RideID)
		if err != nil {
			return err
		}

		// confirm is the driver's call; cancel belongs to either side
		switch action {
		case booking.ActionConfirm:
			if in.CallerID != r.DriverID {
				return booking.ErrUnauthorized
			}
		case booking.ActionCancel:
			if in.CallerID != r.DriverID && in.CallerID != b.PassengerID {
				return booking.ErrUnauthorized
			}
		}

		// replay of an already-applied transition: succeed without touching
		// seats or emitting anything
		if b.Status == target {
			out = toBookingResult(b)
			return nil
		}
		if !b.Status.CanTransitionTo(target) {
			return booking.ErrStaleState
		}

		wasReserving := b.Status.ReservesCapacity()
		now := time.Now().UTC()
		if err := service.bookings.UpdateStatus(ctx, b.ID, target, now); err != nil {
			return err
		}

		// cancellation hands the seats back; confirmation keeps them
		if action == booking.ActionCancel && wasReserving {
			if err := service.rides.Release(ctx, b.RideID, b.SeatsBooked); err != nil {
				return err
			}
		}

		b.Status = target
		b.UpdatedAt = now
		passengerID = b.PassengerID
		applied = true
		out = toBookingResult(b)
		return nil
	})
	if err != nil {
		service.logger.Error(ctx, "booking_transition_failed", "Failed to transition booking", err, map[string]any{
			"booking_id": in.BookingID,
			"action":     action.String(),
			"caller_id":  in.CallerID,
			"request_id": corrID,
		})
		return ports.BookingResult{}, err
	}

	if !applied {
		return out, nil
	}

	service.logger.Info(ctx, "booking_transitioned", "Booking transitioned", map[string]any{
		"booking_id": out.BookingID,
		"ride_id":    out.RideID,
		"status":     out.Status,
		"caller_id":  in.CallerID,
		"request_id": corrID,
	})

	if action == booking.ActionConfirm {
		service.emit(ctx, contracts.NotificationEvent{
			Type:        contracts.EventBookingConfirmed,
			RecipientID: passengerID,
			RideID:      out.RideID,
			BookingID:   out.BookingID,
			Seats:       out.SeatsBooked,
			OccurredAt:  time.Now().UTC(),
		})
	}

	return out, nil
}

// GetBooking returns a booking to its passenger or the ride's driver.
func (service *bookingService) GetBooking(ctx context.Context, callerID, bookingID string) (ports.BookingResult, error) {
	var out ports.BookingResult
	err := service.uow.WithinTx(ctx, func(ctx context.Context) error {
		b, err := service.bookings.GetByID(ctx, bookingID)
		if err != nil {
			return err
		}
		if callerID != b.PassengerID {
			r, err := service.rides.GetByID(ctx, b.RideID)
			if err != nil {
				return err
			}
			if callerID != r.DriverID {
				return booking.ErrUnauthorized
			}
		}
		out = toBookingResult(b)
		return nil
	})
	if err != nil {
		return ports.BookingResult{}, err
	}
	return out, nil
}

// ListRideBookings returns the ride's bookings. The driver sees all of
// them; a passenger sees only their own.
func (service *bookingService) ListRideBookings(ctx context.Context, callerID, rideID string) ([]ports.BookingResult, error) {
	var out []ports.BookingResult
	err := service.uow.WithinTx(ctx, func(ctx context.Context) error {
		r, err := service.rides.GetByID(ctx, rideID)
		if err != nil {
			return err
		}

		all, err := service.bookings.ListByRide(ctx, rideID)
		if err != nil {
			return err
		}
		if callerID == r.DriverID {
			out = toBookingResults(all)
			return nil
		}
		for _, b := range all {
			if b.PassengerID == callerID {
				out = append(out, toBookingResult(b))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListPassengerBookings returns the passenger's recent bookings.
func (service *bookingService) ListPassengerBookings(ctx context.Context, passengerID string, limit int) ([]ports.BookingResult, error) {
	var out []ports.BookingResult
	err := service.uow.WithinTx(ctx, func(ctx context.Context) error {
		bookings, err := service.bookings.ListByPassenger(ctx, passengerID, limit)
		if err != nil {
			return err
		}
		out = toBookingResults(bookings)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
