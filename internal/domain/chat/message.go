package chat

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const maxMessageLength = 2000

// Message is a persisted chat message scoped to a ride.
type Message struct {
	ID        string
	RideID    string
	SenderID  string
	Content   string
	CreatedAt time.Time
}

var (
	ErrRideRequired   = errors.New("ride id is required")
	ErrSenderRequired = errors.New("sender id is required")
	ErrEmptyContent   = errors.New("message content is empty")
	ErrContentTooLong = errors.New("message content is too long")
)

// NewMessage validates and builds a chat message.
func NewMessage(rideID, senderID, content string) (*Message, error) {
	if rideID = strings.TrimSpace(rideID); rideID == "" {
		return nil, ErrRideRequired
	}
	if senderID = strings.TrimSpace(senderID); senderID == "" {
		return nil, ErrSenderRequired
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	if utf8.RuneCountInString(content) > maxMessageLength {
		return nil, ErrContentTooLong
	}

	return &Message{
		RideID:    rideID,
		SenderID:  senderID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}, nil
}
