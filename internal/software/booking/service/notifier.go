package service

import (
	"context"
	"encoding/json"

	"ride-share/internal/general/contracts"
)

// emit hands a notification event to the background publisher. It never
// blocks: when the buffer is full the event is dropped and logged. A
// notification is a courtesy, not part of the transition's contract.
func (service *bookingService) emit(ctx context.Context, ev contracts.NotificationEvent) {
	select {
	case service.events <- ev:
	default:
		service.logger.Error(ctx, "notify_buffer_full", "Dropping notification event", nil, map[string]any{
			"type":         ev.Type,
			"recipient_id": ev.RecipientID,
			"booking_id":   ev.BookingID,
		})
	}
}

// RunBackgroundPublisher drains the event channel and publishes each event
// to the booking topic exchange until ctx is cancelled. Publish failures
// are logged and the event discarded; delivery is best-effort.
func (service *bookingService) RunBackgroundPublisher(ctx context.Context) {
	service.logger.Info(ctx, "notify_publisher_started", "Notification publisher running", nil)

	for {
		select {
		case <-ctx.Done():
			service.logger.Info(ctx, "notify_publisher_stopped", "Notification publisher stopped", nil)
			return
		case ev := <-service.events:
			service.publishEvent(ctx, ev)
		}
	}
}

func (service *bookingService) publishEvent(ctx context.Context, ev contracts.NotificationEvent) {
	if service.pub == nil {
		service.logger.Debug(ctx, "notify_publish_skipped", "No broker configured, discarding event", map[string]any{
			"type":         ev.Type,
			"recipient_id": ev.RecipientID,
		})
		return
	}

	// routing key "notify.{event_type}.{recipient_id}"
	routingKey := contracts.RouteNotifyPrefix + ev.Type + "." + ev.RecipientID

	body, err := json.Marshal(ev)
	if err != nil {
		service.logger.Error(ctx, "notify_marshal_failed", "Failed to marshal notification event", err, map[string]any{
			"type": ev.Type,
		})
		return
	}

	if err := service.pub.Publish(contracts.ExchangeBookingTopic, routingKey, body); err != nil {
		service.logger.Error(ctx, "notify_publish_failed", "Failed to publish notification event", err, map[string]any{
			"routing_key": routingKey,
			"booking_id":  ev.BookingID,
		})
		return
	}

	service.logger.Info(ctx, "notify_published", "Published notification event", map[string]any{
		"routing_key": routingKey,
		"booking_id":  ev.BookingID,
	})
}
