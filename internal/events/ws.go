package events

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const wsWriteWait = 10 * time.Second

type wsEmitter struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

// NewWebSocket sends events as JSON text frames. After the terminal event a
// normal close frame is written; the caller still owns conn.Close.
func NewWebSocket(conn *websocket.Conn) Emitter {
	return &wsEmitter{conn: conn}
}

func (s *wsEmitter) Emit(ctx context.Context, e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_ = s.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	if err := s.conn.WriteJSON(e); err != nil {
		return err
	}
	if e.Terminal() {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, string(e.Kind))
		return s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(wsWriteWait))
	}
	return nil
}
