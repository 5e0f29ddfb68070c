package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const wsWriteTimeout = 5 * time.Second

// envelope is the frame format in both directions:
// {"type":"<event>","data":{...}}.
type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// wsConn adapts a gorilla connection to the broker.Conn interface. The
// mutex serializes writes: the read loop, the ping loop, and broker
// fan-outs all write to the same socket.
type wsConn struct {
	userID string
	conn   *websocket.Conn
	mu     sync.Mutex
}

func newWSConn(userID string, conn *websocket.Conn) *wsConn {
	return &wsConn{userID: userID, conn: conn}
}

// UserID returns the authenticated subject bound to this connection.
func (c *wsConn) UserID() string { return c.userID }

// Send marshals the event envelope and writes it under the write lock.
func (c *wsConn) Send(event string, payload any) error {
	var data json.RawMessage
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		data = buf
	}

	frame, err := json.Marshal(envelope{Type: event, Data: data})
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, frame)
}

// sendError pushes a generic error event to the client, best-effort.
func (c *wsConn) sendError(msg string) {
	_ = c.Send("error", map[string]string{"error": msg})
}

func (c *wsConn) ping(deadline time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, nil, deadline)
}
