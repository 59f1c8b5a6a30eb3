package relay

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ClientConn is the client side of the relay. *websocket.Conn satisfies it.
type ClientConn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	Close() error
}

// SafeConn serializes writes to a client connection. Analysts emit from
// their own goroutines; gorilla connections allow one writer at a time.
type SafeConn struct {
	mu   sync.Mutex
	conn ClientConn
}

func NewSafeConn(conn ClientConn) *SafeConn {
	return &SafeConn{conn: conn}
}

// Emit writes v as one JSON text message.
func (c *SafeConn) Emit(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("relay: marshal %T: %w", v, err)
	}
	return c.SendText(b)
}

// SendText writes b unmodified as a text message.
func (c *SafeConn) SendText(b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, b)
}

// Error sends an {"error": ...} notice.
func (c *SafeConn) Error(msg string) error {
	return c.Emit(errorNotice{Error: msg})
}

// Close sends a normal closure frame, best effort, and closes the connection.
func (c *SafeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return c.conn.Close()
}

type statusNotice struct {
	Status    string `json:"status"`
	SessionID string `json:"session_id,omitempty"`
}

type errorNotice struct {
	Error string `json:"error"`
}

type transcriptNotice struct {
	Text    string `json:"text"`
	IsFinal bool   `json:"is_final"`
}
