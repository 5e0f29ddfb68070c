package rabbitmq

import (
	"fmt"

	"ride-share/internal/general/contracts"

	amqp "github.com/rabbitmq/amqp091-go"
)

func declareTopology(ch *amqp.Channel) error {
	// 1. Exchanges
	if err := ch.ExchangeDeclare(contracts.ExchangeBookingTopic, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", contracts.ExchangeBookingTopic, err)
	}

	// 2. Queues
	if _, err := ch.QueueDeclare(contracts.QueueNotifications, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", contracts.QueueNotifications, err)
	}

	// 3. Bindings: every notify.* event lands in the notifications queue.
	if err := ch.QueueBind(contracts.QueueNotifications, contracts.RouteNotifyPrefix+"#", contracts.ExchangeBookingTopic, false, nil); err != nil {
		return fmt.Errorf("bind queue %s to %s: %w", contracts.QueueNotifications, contracts.ExchangeBookingTopic, err)
	}

	return nil
}
