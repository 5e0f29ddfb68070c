package service

import (
	"context"
	"errors"

	"ride-share/internal/domain/ride"
	"ride-share/internal/general/logger"
	"ride-share/internal/ports"
)

// accessAuthorizer answers room join checks against current ledger state.
// Nothing is cached: a member who reconnects after cancelling their booking
// is denied, while existing connections are left alone.
type accessAuthorizer struct {
	logger   *logger.Logger
	uow      ports.UnitOfWork
	rides    ports.RideRepository
	bookings ports.BookingRepository
}

// NewAccessAuthorizer constructs the authorizer with required dependencies.
func NewAccessAuthorizer(
	logger *logger.Logger,
	uow ports.UnitOfWork,
	rides ports.RideRepository,
	bookings ports.BookingRepository,
) ports.AccessAuthorizer {
	return &accessAuthorizer{logger: logger, uow: uow, rides: rides, bookings: bookings}
}

// CanJoinRoom reports whether the user is the ride's driver or holds a
// pending or confirmed booking on it. An unknown ride is a plain denial.
func (auth *accessAuthorizer) CanJoinRoom(ctx context.Context, userID, rideID string) (bool, error) {
	var allowed bool

	err := auth.uow.WithinTx(ctx, func(ctx context.Context) error {
		r, err := auth.rides.GetByID(ctx, rideID)
		if err != nil {
			return err
		}
		if r.DriverID == userID {
			allowed = true
			return nil
		}

		allowed, err = auth.bookings.HasActiveForPassenger(ctx, rideID, userID)
		return err
	})
	if err != nil {
		if errors.Is(err, ride.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	return allowed, nil
}
