package inmem

import (
	"context"

	"ride-share/internal/domain/chat"
	"ride-share/internal/domain/notification"
)

// MessageStore implements ports.MessageRepository over the shared store.
type MessageStore struct {
	s *Store
}

// CreateMessage appends the message to the ride's history.
func (ms *MessageStore) CreateMessage(ctx context.Context, m *chat.Message) error {
	ms.s.mu.Lock()
	defer ms.s.mu.Unlock()

	if m.ID == "" {
		m.ID = ms.s.nextID("message")
	}
	cp := *m
	ms.s.messages[m.RideID] = append(ms.s.messages[m.RideID], &cp)
	return nil
}

// ListByRide returns the most recent messages in chronological order.
func (ms *MessageStore) ListByRide(ctx context.Context, rideID string, limit int) ([]*chat.Message, error) {
	ms.s.mu.RLock()
	defer ms.s.mu.RUnlock()

	msgs := ms.s.messages[rideID]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]*chat.Message, 0, len(msgs))
	for _, m := range msgs {
		cp := *m
		out = append(out, &cp)
	}
	return out, nil
}

// NotificationStore implements ports.NotificationRepository over the shared store.
type NotificationStore struct {
	s *Store
}

// CreateNotification appends the notification to the user's feed.
func (ns *NotificationStore) CreateNotification(ctx context.Context, n *notification.Notification) error {
	ns.s.mu.Lock()
	defer ns.s.mu.Unlock()

	if n.ID == "" {
		n.ID = ns.s.nextID("notification")
	}
	cp := *n
	ns.s.notifications[n.UserID] = append(ns.s.notifications[n.UserID], &cp)
	return nil
}

// ListByUser returns recent notifications for a user, newest first.
func (ns *NotificationStore) ListByUser(ctx context.Context, userID string, limit int) ([]*notification.Notification, error) {
	ns.s.mu.RLock()
	defer ns.s.mu.RUnlock()

	feed := ns.s.notifications[userID]
	out := make([]*notification.Notification, 0, len(feed))
	for i := len(feed) - 1; i >= 0; i-- {
		cp := *feed[i]
		out = append(out, &cp)
	}
	return clip(out, limit), nil
}
