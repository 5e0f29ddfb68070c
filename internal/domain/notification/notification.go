package notification

import (
	"errors"
	"strings"
	"time"
)

// Notification is a recorded user-facing notification. Delivery channels
// (push, email, telegram) are external; recording is the dispatcher's job.
type Notification struct {
	ID        string
	UserID    string
	Kind      string
	Title     string
	Body      string
	RideID    string
	BookingID string
	Read      bool
	CreatedAt time.Time
}

var (
	ErrUserRequired  = errors.New("user id is required")
	ErrKindRequired  = errors.New("notification kind is required")
	ErrTitleRequired = errors.New("notification title is required")
)

// New validates and builds a notification record.
func New(userID, kind, title, body, rideID, bookingID string) (*Notification, error) {
	if userID = strings.TrimSpace(userID); userID == "" {
		return nil, ErrUserRequired
	}
	if kind = strings.TrimSpace(kind); kind == "" {
		return nil, ErrKindRequired
	}
	if title = strings.TrimSpace(title); title == "" {
		return nil, ErrTitleRequired
	}

	return &Notification{
		UserID:    userID,
		Kind:      kind,
		Title:     title,
		Body:      strings.TrimSpace(body),
		RideID:    rideID,
		BookingID: bookingID,
		CreatedAt: time.Now().UTC(),
	}, nil
}
