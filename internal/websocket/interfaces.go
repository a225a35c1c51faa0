package websocket

import (
	"context"
	"time"

	"github.com/gorilla/websocket"

	"enrolpulse/internal/dashboard"
)

// Connection is the part of a websocket connection the client pumps use.
// Tests substitute an in-memory implementation.
type Connection interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetReadLimit(limit int64)
	SetPongHandler(h func(string) error)
	RemoteAddr() string
}

// SessionRenderer renders the dashboard for a live session
type SessionRenderer interface {
	Render(ctx context.Context, req dashboard.Request) (*dashboard.ViewModel, error)
	Regions(ctx context.Context) ([]string, error)
}

// gorillaConn adapts *websocket.Conn to Connection
type gorillaConn struct {
	*websocket.Conn
}

// WrapConn wraps an upgraded gorilla connection
func WrapConn(conn *websocket.Conn) Connection {
	return gorillaConn{Conn: conn}
}

func (c gorillaConn) RemoteAddr() string {
	if addr := c.Conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return ""
}
