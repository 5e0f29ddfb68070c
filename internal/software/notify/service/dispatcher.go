// Package service implements the notification dispatcher. It consumes the
// booking events queue, turns each event into a stored notification, and
// logs the delivery. Push transports beyond the stored feed are out of
// scope; the row is the delivery.
package service

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"ride-share/internal/domain/notification"
	"ride-share/internal/general/contracts"
	"ride-share/internal/general/logger"
	"ride-share/internal/general/rabbitmq"
	"ride-share/internal/ports"
)

// Dispatcher consumes notification events and stores them per recipient.
type Dispatcher struct {
	logger        *logger.Logger
	uow           ports.UnitOfWork
	notifications ports.NotificationRepository
	client        *rabbitmq.Client
}

// NewDispatcher constructs the dispatcher with required dependencies.
func NewDispatcher(
	logger *logger.Logger,
	uow ports.UnitOfWork,
	notifications ports.NotificationRepository,
	client *rabbitmq.Client,
) *Dispatcher {
	return &Dispatcher{logger: logger, uow: uow, notifications: notifications, client: client}
}

// Run consumes the notifications queue until ctx is cancelled. A handler
// error nacks the delivery without requeue, so malformed events are dropped
// rather than looped.
func (d *Dispatcher) Run(ctx context.Context, prefetch int) error {
	d.logger.Info(ctx, "dispatcher_started", "Notification dispatcher consuming", map[string]any{
		"queue":    contracts.QueueNotifications,
		"prefetch": prefetch,
	})
	return d.client.Consume(ctx, contracts.QueueNotifications, "notify-service", prefetch, d.handleDelivery)
}

func (d *Dispatcher) handleDelivery(ctx context.Context, delivery amqp.Delivery) error {
	var ev contracts.NotificationEvent
	if err := json.Unmarshal(delivery.Body, &ev); err != nil {
		d.logger.Error(ctx, "notify_decode_failed", "Dropping malformed notification event", err, map[string]any{
			"routing_key": delivery.RoutingKey,
		})
		return err
	}

	title, body, err := render(ev)
	if err != nil {
		d.logger.Error(ctx, "notify_render_failed", "Dropping unrenderable notification event", err, map[string]any{
			"type":        ev.Type,
			"routing_key": delivery.RoutingKey,
		})
		return err
	}

	n, err := notification.New(ev.RecipientID, ev.Type, title, body, ev.RideID, ev.BookingID)
	if err != nil {
		d.logger.Error(ctx, "notify_invalid_event", "Dropping invalid notification event", err, map[string]any{
			"type": ev.Type,
		})
		return err
	}

	err = d.uow.WithinTx(ctx, func(ctx context.Context) error {
		return d.notifications.CreateNotification(ctx, n)
	})
	if err != nil {
		d.logger.Error(ctx, "notify_store_failed", "Failed to store notification", err, map[string]any{
			"type":         ev.Type,
			"recipient_id": ev.RecipientID,
		})
		return err
	}

	d.logger.Info(ctx, "notification_stored", "Notification stored", map[string]any{
		"notification_id": n.ID,
		"type":            ev.Type,
		"recipient_id":    ev.RecipientID,
		"booking_id":      ev.BookingID,
	})
	return nil
}

// render maps an event type to the user-facing title and body.
func render(ev contracts.NotificationEvent) (title, body string, err error) {
	switch ev.Type {
	case contracts.EventBookingCreated:
		return "New booking request",
			fmt.Sprintf("A passenger requested %d seat(s) on your ride.", ev.Seats), nil
	case contracts.EventBookingConfirmed:
		return "Booking confirmed",
			"The driver confirmed your booking.", nil
	default:
		return "", "", fmt.Errorf("unknown notification event type %q", ev.Type)
	}
}
