package postgres

import (
	"context"
	"fmt"

	"ride-share/internal/domain/notification"
	"ride-share/internal/ports"
)

// NotificationRepo records notifications produced by the notify service.
type NotificationRepo struct{}

// NewNotificationRepo constructs a new NotificationRepo.
func NewNotificationRepo() ports.NotificationRepository {
	return &NotificationRepo{}
}

// CreateNotification inserts a notification row.
func (repo *NotificationRepo) CreateNotification(ctx context.Context, n *notification.Notification) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO notifications (user_id, kind, title, body, ride_id, booking_id, read)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7)
		RETURNING id, created_at
	`, n.UserID, n.Kind, n.Title, n.Body, n.RideID, n.BookingID, n.Read).Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}

	return nil
}

// ListByUser returns recent notifications for a user, newest first.
func (repo *NotificationRepo) ListByUser(ctx context.Context, userID string, limit int) ([]*notification.Notification, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT id, user_id, kind, title, body,
		       COALESCE(ride_id::text, ''), COALESCE(booking_id::text, ''),
		       read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query notifications by user: %w", err)
	}
	defer rows.Close()

	var out []*notification.Notification
	for rows.Next() {
		var n notification.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Kind, &n.Title, &n.Body, &n.RideID, &n.BookingID, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return out, nil
}
