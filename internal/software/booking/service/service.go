package service

import (
	"ride-share/internal/general/contracts"
	"ride-share/internal/general/logger"
	"ride-share/internal/general/rabbitmq"
	"ride-share/internal/ports"
)

// notifyBuffer bounds the in-flight notification events. When the buffer is
// full, new events are dropped and logged; a transition never blocks on it.
const notifyBuffer = 256

// bookingService holds all dependencies required by the booking service:
// the ride inventory, the booking ledger, and the notification pipeline.
type bookingService struct {
	logger   *logger.Logger
	uow      ports.UnitOfWork
	rides    ports.RideRepository
	bookings ports.BookingRepository
	pub      *rabbitmq.MQPublisher
	events   chan contracts.NotificationEvent
}

// NewBookingService constructs the service with required dependencies.
// pub may be nil; notification events are then logged and discarded.
func NewBookingService(
	logger *logger.Logger,
	uow ports.UnitOfWork,
	rides ports.RideRepository,
	bookings ports.BookingRepository,
	pub *rabbitmq.MQPublisher,
) ports.BookingService {
	return &bookingService{
		logger:   logger,
		uow:      uow,
		rides:    rides,
		bookings: bookings,
		pub:      pub,
		events:   make(chan contracts.NotificationEvent, notifyBuffer),
	}
}
