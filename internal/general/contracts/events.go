package contracts

import "time"

// Notification event types emitted by the booking ledger.
const (
	EventBookingCreated   = "booking_created"
	EventBookingConfirmed = "booking_confirmed"
)

// NotificationEvent is the fire-and-forget message published to the
// booking topic exchange and consumed by the notify service. Delivery
// failure never rolls back the booking transition that produced it.
type NotificationEvent struct {
	Type        string    `json:"type"`         // EventBookingCreated | EventBookingConfirmed
	RecipientID string    `json:"recipient_id"` // user the notification is addressed to
	RideID      string    `json:"ride_id"`
	BookingID   string    `json:"booking_id"`
	Seats       int       `json:"seats"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Realtime event names carried in the websocket envelope's type field.
const (
	WSEventNewMessage     = "new_message"
	WSEventLocationUpdate = "location_update"
)

// WSChatMessage is the payload fanned out to chat room members under the
// "new_message" event.
type WSChatMessage struct {
	RideID    string    `json:"ride_id"`
	MessageID string    `json:"message_id,omitempty"`
	SenderID  string    `json:"sender_id"`
	Content   string    `json:"content"`
	SentAt    time.Time `json:"sent_at"`
}

// WSLocationUpdate is the payload fanned out to tracking room members under
// the "location_update" event.
type WSLocationUpdate struct {
	RideID    string    `json:"ride_id"`
	SenderID  string    `json:"sender_id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp"`
}
