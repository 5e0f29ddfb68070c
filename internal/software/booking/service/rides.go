package service

import (
	"context"
	"time"

	"ride-share/internal/domain/booking"
	"ride-share/internal/domain/ride"
	"ride-share/internal/ports"
)

// CreateRide publishes a new ride with all seats available.
func (service *bookingService) CreateRide(ctx context.Context, in ports.CreateRideInput) (ports.RideResult, error) {
	corrID := generateCorrelationID()

	r, err := ride.NewRide(in.DriverID, in.Origin, in.Destination, in.DepartureAt, in.SeatsTotal, in.PricePerSeat)
	if err != nil {
		return ports.RideResult{}, err
	}

	err = service.uow.WithinTx(ctx, func(ctx context.Context) error {
		return service.rides.CreateRide(ctx, r)
	})
	if err != nil {
		service.logger.Error(ctx, "ride_create_failed", "Failed to create ride", err, map[string]any{
			"driver_id":  in.DriverID,
			"request_id": corrID,
		})
		return ports.RideResult{}, err
	}

	service.logger.Info(ctx, "ride_created", "Ride created", map[string]any{
		"ride_id":     r.ID,
		"driver_id":   r.DriverID,
		"seats_total": r.SeatsTotal,
		"request_id":  corrID,
	})

	return toRideResult(r), nil
}

// GetRide returns the current ride state.
func (service *bookingService) GetRide(ctx context.Context, rideID string) (ports.RideResult, error) {
	var out ports.RideResult
	err := service.uow.WithinTx(ctx, func(ctx context.Context) error {
		r, err := service.rides.GetByID(ctx, rideID)
		if err != nil {
			return err
		}
		out = toRideResult(r)
		return nil
	})
	if err != nil {
		return ports.RideResult{}, err
	}
	return out, nil
}

// ListDriverRides returns the driver's recent rides.
func (service *bookingService) ListDriverRides(ctx context.Context, driverID string, limit int) ([]ports.RideResult, error) {
	var out []ports.RideResult
	err := service.uow.WithinTx(ctx, func(ctx context.Context) error {
		rides, err := service.rides.ListByDriver(ctx, driverID, limit)
		if err != nil {
			return err
		}
		out = toRideResults(rides)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListActiveRides returns a page of bookable rides.
func (service *bookingService) ListActiveRides(ctx context.Context, limit, offset int) ([]ports.RideResult, error) {
	var out []ports.RideResult
	err := service.uow.WithinTx(ctx, func(ctx context.Context) error {
		rides, err := service.rides.ListActive(ctx, limit, offset)
		if err != nil {
			return err
		}
		out = toRideResults(rides)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CancelRide moves the caller's ride to cancelled. Cancelling an already
// cancelled ride is a no-op success; a completed ride cannot be cancelled.
// Bookings are left untouched: passengers cancel (and release) on their own
// terms, and realtime room members are never evicted by this transition.
func (service *bookingService) CancelRide(ctx context.Context, callerID, rideID string) (ports.RideResult, error) {
	var out ports.RideResult
	corrID := generateCorrelationID()

	err := service.uow.WithinTx(ctx, func(ctx context.Context) error {
		r, err := service.rides.GetByID(ctx, rideID)
		if err != nil {
			return err
		}
		if r.DriverID != callerID {
			return booking.ErrUnauthorized
		}

		now := time.Now().UTC()
		if err := service.rides.UpdateStatus(ctx, rideID, ride.StatusCancelled, now); err != nil {
			return err
		}

		r.Status = ride.StatusCancelled
		r.UpdatedAt = now
		out = toRideResult(r)
		return nil
	})
	if err != nil {
		service.logger.Error(ctx, "ride_cancel_failed", "Failed to cancel ride", err, map[string]any{
			"ride_id":    rideID,
			"caller_id":  callerID,
			"request_id": corrID,
		})
		return ports.RideResult{}, err
	}

	service.logger.Info(ctx, "ride_cancelled", "Ride cancelled", map[string]any{
		"ride_id":    rideID,
		"driver_id":  callerID,
		"request_id": corrID,
	})

	return out, nil
}

// CompleteRide moves the caller's ride to completed and sweeps its pending
// and confirmed bookings to completed as well. Completed bookings keep their
// seats: completion never releases capacity.
func (service *bookingService) CompleteRide(ctx context.Context, callerID, rideID string) (ports.RideResult, error) {
	var out ports.RideResult
	var swept int
	corrID := generateCorrelationID()

	err := service.uow.WithinTx(ctx, func(ctx context.Context) error {
		r, err := service.rides.GetByID(ctx, rideID)
		if err != nil {
			return err
		}
		if r.DriverID != callerID {
			return booking.ErrUnauthorized
		}

		now := time.Now().UTC()
		if err := service.rides.UpdateStatus(ctx, rideID, ride.StatusCompleted, now); err != nil {
			return err
		}

		// completion sweep over the bookings that still reserve capacity
		active, err := service.bookings.ListActiveByRide(ctx, rideID)
		if err != nil {
			return err
		}
		for _, b := range active {
			if err := service.bookings.UpdateStatus(ctx, b.ID, booking.StatusCompleted, now); err != nil {
				return err
			}
			swept++
		}

		r.Status = ride.StatusCompleted
		r.UpdatedAt = now
		out = toRideResult(r)
		return nil
	})
	if err != nil {
		service.logger.Error(ctx, "ride_complete_failed", "Failed to complete ride", err, map[string]any{
			"ride_id":    rideID,
			"caller_id":  callerID,
			"request_id": corrID,
		})
		return ports.RideResult{}, err
	}

	service.logger.Info(ctx, "ride_completed", "Ride completed", map[string]any{
		"ride_id":        rideID,
		"driver_id":      callerID,
		"bookings_swept": swept,
		"request_id":     corrID,
	})

	return out, nil
}
