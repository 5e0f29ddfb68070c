package service

import (
	"context"

	"ride-share/internal/domain/booking"
	"ride-share/internal/domain/chat"
	"ride-share/internal/general/logger"
	"ride-share/internal/ports"
)

// messageService persists ride chat history. Fan-out to live connections is
// the broker's job; this service only owns the durable record.
type messageService struct {
	logger     *logger.Logger
	uow        ports.UnitOfWork
	messages   ports.MessageRepository
	authorizer ports.AccessAuthorizer
}

// NewMessageService constructs the service with required dependencies.
func NewMessageService(
	logger *logger.Logger,
	uow ports.UnitOfWork,
	messages ports.MessageRepository,
	authorizer ports.AccessAuthorizer,
) ports.MessageService {
	return &messageService{logger: logger, uow: uow, messages: messages, authorizer: authorizer}
}

// SaveMessage validates and stores a chat message. The caller (the ws
// handler) has already verified room membership for the sender.
func (service *messageService) SaveMessage(ctx context.Context, rideID, senderID, content string) (ports.MessageResult, error) {
	m, err := chat.NewMessage(rideID, senderID, content)
	if err != nil {
		return ports.MessageResult{}, err
	}

	err = service.uow.WithinTx(ctx, func(ctx context.Context) error {
		return service.messages.CreateMessage(ctx, m)
	})
	if err != nil {
		service.logger.Error(ctx, "message_save_failed", "Failed to store chat message", err, map[string]any{
			"ride_id":   rideID,
			"sender_id": senderID,
		})
		return ports.MessageResult{}, err
	}

	return toMessageResult(m), nil
}

// ListRideMessages returns recent chat history to a ride participant. The
// same authorization rule as room joins applies.
func (service *messageService) ListRideMessages(ctx context.Context, callerID, rideID string, limit int) ([]ports.MessageResult, error) {
	allowed, err := service.authorizer.CanJoinRoom(ctx, callerID, rideID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, booking.ErrUnauthorized
	}

	if limit <= 0 || limit > 200 {
		limit = 100
	}

	var out []ports.MessageResult
	err = service.uow.WithinTx(ctx, func(ctx context.Context) error {
		messages, err := service.messages.ListByRide(ctx, rideID, limit)
		if err != nil {
			return err
		}
		out = make([]ports.MessageResult, 0, len(messages))
		for _, m := range messages {
			out = append(out, toMessageResult(m))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

func toMessageResult(m *chat.Message) ports.MessageResult {
	return ports.MessageResult{
		MessageID: m.ID,
		RideID:    m.RideID,
		SenderID:  m.SenderID,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}
