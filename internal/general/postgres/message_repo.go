package postgres

import (
	"context"
	"fmt"

	"ride-share/internal/domain/chat"
	"ride-share/internal/ports"
)

// MessageRepo persists ride chat messages.
type MessageRepo struct{}

// NewMessageRepo constructs a new MessageRepo.
func NewMessageRepo() ports.MessageRepository {
	return &MessageRepo{}
}

// CreateMessage inserts a chat message row.
func (repo *MessageRepo) CreateMessage(ctx context.Context, m *chat.Message) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO messages (ride_id, sender_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, m.RideID, m.SenderID, m.Content).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}

	return nil
}

// ListByRide returns the most recent messages for a ride in chronological order.
func (repo *MessageRepo) ListByRide(ctx context.Context, rideID string, limit int) ([]*chat.Message, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	// newest N, then flipped so callers render oldest-first
	rows, err := tx.Query(ctx, `
		SELECT id, ride_id, sender_id, content, created_at
		FROM (
			SELECT id, ride_id, sender_id, content, created_at
			FROM messages
			WHERE ride_id = $1
			ORDER BY created_at DESC
			LIMIT $2
		) recent
		ORDER BY created_at ASC`, rideID, limit)
	if err != nil {
		return nil, fmt.Errorf("query messages by ride: %w", err)
	}
	defer rows.Close()

	var messages []*chat.Message
	for rows.Next() {
		var m chat.Message
		if err := rows.Scan(&m.ID, &m.RideID, &m.SenderID, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return messages, nil
}
