package contracts

// Exchanges
const (
	ExchangeBookingTopic = "booking_topic"
)

// Queues
const (
	QueueNotifications = "notifications"
)

// Routing patterns
const (
	RouteNotifyPrefix = "notify." // {event_type}.{recipient_id}
)
