// Package broker implements the per-ride realtime rooms. Every ride has
// two independent namespaces, chat and tracking; joining either one runs a
// fresh authorization check. The broker never persists anything and never
// evicts members on its own: a cancelled booking only takes effect on the
// member's next join attempt.
package broker

import (
	"context"
	"errors"
	"sync"

	"ride-share/internal/general/logger"
	"ride-share/internal/ports"
)

// ErrJoinDenied is the only error surfaced to a joining client. The real
// reason (unknown ride, no booking, repository failure) stays in the logs.
var ErrJoinDenied = errors.New("unable to join room")

// Conn is a transport-agnostic room member. The websocket adapter wraps a
// gorilla connection behind it; tests use plain in-memory fakes.
type Conn interface {
	UserID() string
	Send(event string, payload any) error
}

type memberSet map[Conn]struct{}

// Broker tracks room membership for both namespaces.
type Broker struct {
	logger     *logger.Logger
	authorizer ports.AccessAuthorizer

	mu       sync.RWMutex
	chat     map[string]memberSet
	tracking map[string]memberSet
}

// New constructs a Broker around the given authorizer.
func New(logger *logger.Logger, authorizer ports.AccessAuthorizer) *Broker {
	return &Broker{
		logger:     logger,
		authorizer: authorizer,
		chat:       make(map[string]memberSet),
		tracking:   make(map[string]memberSet),
	}
}

// JoinChat adds the connection to the ride's chat room after a fresh
// authorization check. All denial causes collapse into ErrJoinDenied.
func (b *Broker) JoinChat(ctx context.Context, c Conn, rideID string) error {
	return b.join(ctx, c, rideID, b.chat, "chat")
}

// JoinTracking adds the connection to the ride's tracking room after a
// fresh authorization check.
func (b *Broker) JoinTracking(ctx context.Context, c Conn, rideID string) error {
	return b.join(ctx, c, rideID, b.tracking, "tracking")
}

func (b *Broker) join(ctx context.Context, c Conn, rideID string, rooms map[string]memberSet, kind string) error {
	allowed, err := b.authorizer.CanJoinRoom(ctx, c.UserID(), rideID)
	if err != nil {
		b.logger.Error(ctx, "room_join_check_failed", "Authorization check failed", err, map[string]any{
			"ride_id": rideID,
			"user_id": c.UserID(),
			"room":    kind,
		})
		return ErrJoinDenied
	}
	if !allowed {
		b.logger.Info(ctx, "room_join_denied", "Join denied", map[string]any{
			"ride_id": rideID,
			"user_id": c.UserID(),
			"room":    kind,
		})
		return ErrJoinDenied
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	members, ok := rooms[rideID]
	if !ok {
		members = make(memberSet)
		rooms[rideID] = members
	}
	members[c] = struct{}{}

	b.logger.Info(ctx, "room_joined", "Member joined room", map[string]any{
		"ride_id": rideID,
		"user_id": c.UserID(),
		"room":    kind,
		"members": len(members),
	})
	return nil
}

// LeaveChat removes the connection from the ride's chat room.
func (b *Broker) LeaveChat(c Conn, rideID string) {
	b.leave(c, rideID, b.chat)
}

// LeaveTracking removes the connection from the ride's tracking room.
func (b *Broker) LeaveTracking(c Conn, rideID string) {
	b.leave(c, rideID, b.tracking)
}

func (b *Broker) leave(c Conn, rideID string, rooms map[string]memberSet) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if members, ok := rooms[rideID]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(rooms, rideID)
		}
	}
}

// InChat reports whether the connection is currently a chat room member.
func (b *Broker) InChat(c Conn, rideID string) bool {
	return b.isMember(c, rideID, b.chat)
}

// InTracking reports whether the connection is currently a tracking room member.
func (b *Broker) InTracking(c Conn, rideID string) bool {
	return b.isMember(c, rideID, b.tracking)
}

func (b *Broker) isMember(c Conn, rideID string, rooms map[string]memberSet) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := rooms[rideID][c]
	return ok
}

// PublishChat fans a chat event out to every current member of the ride's
// chat room, the sender included. Send errors are logged per member and
// never abort the fan-out.
func (b *Broker) PublishChat(ctx context.Context, rideID, event string, payload any) {
	b.publish(ctx, rideID, event, payload, b.chat)
}

// PublishLocation fans a location event out to every current member of the
// ride's tracking room.
func (b *Broker) PublishLocation(ctx context.Context, rideID, event string, payload any) {
	b.publish(ctx, rideID, event, payload, b.tracking)
}

func (b *Broker) publish(ctx context.Context, rideID, event string, payload any, rooms map[string]memberSet) {
	// snapshot under the read lock, send outside it
	b.mu.RLock()
	members := make([]Conn, 0, len(rooms[rideID]))
	for c := range rooms[rideID] {
		members = append(members, c)
	}
	b.mu.RUnlock()

	for _, c := range members {
		if err := c.Send(event, payload); err != nil {
			b.logger.Error(ctx, "room_send_failed", "Failed to deliver event to member", err, map[string]any{
				"ride_id": rideID,
				"user_id": c.UserID(),
				"event":   event,
			})
		}
	}
}

// Disconnect removes the connection from every room in both namespaces.
func (b *Broker) Disconnect(c Conn) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for rideID, members := range b.chat {
		delete(members, c)
		if len(members) == 0 {
			delete(b.chat, rideID)
		}
	}
	for rideID, members := range b.tracking {
		delete(members, c)
		if len(members) == 0 {
			delete(b.tracking, rideID)
		}
	}
}
