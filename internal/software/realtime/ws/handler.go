// Package ws is the websocket transport for the realtime service. It owns
// connection lifecycle (upgrade, first-frame auth, ping loop, read loop)
// and routes client frames to the room broker and the message service.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"ride-share/internal/domain/user"
	"ride-share/internal/general/contracts"
	"ride-share/internal/general/jwt"
	"ride-share/internal/general/logger"
	"ride-share/internal/ports"
	"ride-share/internal/software/realtime/broker"

	"github.com/gorilla/websocket"
)

const (
	ctrlTimeout  = 5 * time.Second
	readDeadline = 60 * time.Second
	pingPeriod   = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Handler upgrades websocket connections and drives their read loops.
type Handler struct {
	logger   *logger.Logger
	jwtMgr   *jwt.Manager
	broker   *broker.Broker
	messages ports.MessageService
}

// NewHandler creates a websocket handler with JWT auth.
func NewHandler(logger *logger.Logger, jwtMgr *jwt.Manager, b *broker.Broker, messages ports.MessageService) *Handler {
	return &Handler{logger: logger, jwtMgr: jwtMgr, broker: b, messages: messages}
}

// Connect handles GET /ws. The first frame must be the auth message; after
// that the client joins rooms and publishes through typed envelopes.
func (h *Handler) Connect(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error(r.Context(), "websocket_upgrade_failed", "Failed to upgrade to WebSocket", err, nil)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(1 << 20) // 1 MiB
	if err := conn.SetReadDeadline(time.Now().Add(10 * time.Second)); err != nil {
		h.logger.Error(r.Context(), "ws_set_deadline_failed", "Failed to set initial read deadline", err, nil)
		return
	}

	mt, first, err := conn.ReadMessage()
	if err != nil {
		h.logger.Error(r.Context(), "ws_auth_read_failed", "Client failed to authenticate in time", err, nil)
		return
	}
	if mt != websocket.TextMessage {
		h.logger.Error(r.Context(), "ws_auth_invalid_format", "Auth message must be text format", nil, nil)
		return
	}

	res, err := jwt.ValidateWSAuth(first, h.jwtMgr, user.RolePassenger, user.RoleDriver)
	if err != nil {
		h.logger.Error(r.Context(), "ws_auth_failed", "Invalid auth message or token", err, nil)
		h.sendAuthError(conn, "authentication failed: invalid token")
		return
	}

	client := newWSConn(res.Claims.Subject, conn)
	defer h.broker.Disconnect(client)

	if err := client.Send("auth_success", map[string]any{
		"user_id":   client.UserID(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		h.logger.Error(r.Context(), "ws_auth_success_failed", "Failed to send auth success message", err, nil)
		return
	}

	h.logger.Info(r.Context(), "ws_connected", "WebSocket connected",
		map[string]any{"user_id": client.UserID()})

	_ = conn.SetReadDeadline(time.Now().Add(readDeadline))
	conn.SetPongHandler(func(_ string) error {
		return conn.SetReadDeadline(time.Now().Add(readDeadline))
	})

	// ping loop; closing the socket on failure unblocks the read loop, and
	// closing done stops the loop once the read loop returns
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	done := make(chan struct{})
	defer close(done)
	go pingLoop(ticker, done, client.ping, func() { _ = conn.Close() })

	h.readLoop(r.Context(), client, conn)
}

// pingLoop drives keepalive pings until a ping write fails or done closes.
// A stopped ticker does not close its channel, so the loop must select on
// done to exit when the connection goes away.
func pingLoop(ticker *time.Ticker, done <-chan struct{}, ping func(time.Time) error, closeConn func()) {
	for {
		select {
		case <-ticker.C:
			if err := ping(time.Now().Add(ctrlTimeout)); err != nil {
				closeConn()
				return
			}
		case <-done:
			return
		}
	}
}

func (h *Handler) readLoop(ctx context.Context, client *wsConn, conn *websocket.Conn) {
	for {
		_ = conn.SetReadDeadline(time.Now().Add(readDeadline))
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Error(ctx, "ws_unexpected_close", "Connection closed unexpectedly", err, map[string]any{
					"user_id": client.UserID(),
				})
			} else {
				h.logger.Info(ctx, "ws_connection_closed", "Connection closed", map[string]any{
					"user_id": client.UserID(),
				})
			}
			return
		}

		var msg envelope
		if err := json.Unmarshal(payload, &msg); err != nil {
			client.sendError("bad json")
			continue
		}

		switch msg.Type {
		case "join_chat":
			h.handleJoin(ctx, client, msg.Data, h.broker.JoinChat, "chat_joined")
		case "leave_chat":
			h.handleLeave(client, msg.Data, h.broker.LeaveChat, "chat_left")
		case "join_tracking":
			h.handleJoin(ctx, client, msg.Data, h.broker.JoinTracking, "tracking_joined")
		case "leave_tracking":
			h.handleLeave(client, msg.Data, h.broker.LeaveTracking, "tracking_left")
		case "chat_message":
			h.handleChatMessage(ctx, client, msg.Data)
		case "location_update":
			h.handleLocationUpdate(ctx, client, msg.Data)
		default:
			client.sendError("unknown message type")
		}
	}
}

type roomFrame struct {
	RideID string `json:"ride_id"`
}

func (h *Handler) handleJoin(ctx context.Context, client *wsConn, raw json.RawMessage, join func(context.Context, broker.Conn, string) error, ack string) {
	var in roomFrame
	if err := json.Unmarshal(raw, &in); err != nil || in.RideID == "" {
		client.sendError("missing ride_id")
		return
	}

	if err := join(ctx, client, in.RideID); err != nil {
		// every denial looks the same to the client
		if !errors.Is(err, broker.ErrJoinDenied) {
			h.logger.Error(ctx, "ws_join_failed", "Join failed", err, map[string]any{
				"user_id": client.UserID(),
				"ride_id": in.RideID,
			})
		}
		client.sendError("unable to join room")
		return
	}

	_ = client.Send(ack, map[string]string{"ride_id": in.RideID})
}

func (h *Handler) handleLeave(client *wsConn, raw json.RawMessage, leave func(broker.Conn, string), ack string) {
	var in roomFrame
	if err := json.Unmarshal(raw, &in); err != nil || in.RideID == "" {
		client.sendError("missing ride_id")
		return
	}

	leave(client, in.RideID)
	_ = client.Send(ack, map[string]string{"ride_id": in.RideID})
}

type chatFrame struct {
	RideID  string `json:"ride_id"`
	Content string `json:"content"`
}

// handleChatMessage persists the message, then fans it out to the room.
// Senders must currently be chat room members.
func (h *Handler) handleChatMessage(ctx context.Context, client *wsConn, raw json.RawMessage) {
	var in chatFrame
	if err := json.Unmarshal(raw, &in); err != nil || in.RideID == "" {
		client.sendError("missing ride_id")
		return
	}

	if !h.broker.InChat(client, in.RideID) {
		client.sendError("not a chat room member")
		return
	}

	res, err := h.messages.SaveMessage(ctx, in.RideID, client.UserID(), in.Content)
	if err != nil {
		h.logger.Error(ctx, "ws_chat_store_failed", "Failed to store chat message", err, map[string]any{
			"user_id": client.UserID(),
			"ride_id": in.RideID,
		})
		client.sendError("failed to send message")
		return
	}

	h.broker.PublishChat(ctx, in.RideID, contracts.WSEventNewMessage, contracts.WSChatMessage{
		RideID:    res.RideID,
		MessageID: res.MessageID,
		SenderID:  res.SenderID,
		Content:   res.Content,
		SentAt:    res.CreatedAt,
	})

	_ = client.Send("message_sent", map[string]string{"message_id": res.MessageID})
}

type locationFrame struct {
	RideID    string  `json:"ride_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// handleLocationUpdate fans a position out to the tracking room. Locations
// are ephemeral: nothing is stored.
func (h *Handler) handleLocationUpdate(ctx context.Context, client *wsConn, raw json.RawMessage) {
	var in locationFrame
	if err := json.Unmarshal(raw, &in); err != nil || in.RideID == "" {
		client.sendError("missing ride_id")
		return
	}

	if !h.broker.InTracking(client, in.RideID) {
		client.sendError("not a tracking room member")
		return
	}

	h.broker.PublishLocation(ctx, in.RideID, contracts.WSEventLocationUpdate, contracts.WSLocationUpdate{
		RideID:    in.RideID,
		SenderID:  client.UserID(),
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
		Timestamp: time.Now().UTC(),
	})
}

// sendAuthError writes the auth failure frame on the raw connection; the
// adapter is not built yet at that point.
func (h *Handler) sendAuthError(conn *websocket.Conn, msg string) {
	frame, err := json.Marshal(map[string]any{"type": "auth_error", "error": msg, "success": false})
	if err != nil {
		return
	}
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	_ = conn.WriteMessage(websocket.TextMessage, frame)
}
