package websocket

import (
	"time"

	"github.com/gorilla/websocket"
)

const (
	// writeTimeout bounds a single frame write to a monitor client.
	writeTimeout = 10 * time.Second
	// readTimeout is generous: monitor dashboards are mostly idle between
	// the keepalive pongs and occasional refresh actions.
	readTimeout = 5 * time.Minute
)

// WriteTyped sends a strongly-typed event payload over the WebSocket.
func WriteTyped(conn *websocket.Conn, v interface{}) error {
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteJSON(v)
}

// WriteError sends a typed ErrorResponse over the WebSocket.
func WriteError(conn *websocket.Conn, errMsg string) error {
	return WriteTyped(conn, ErrorResponse{
		Event: EventError,
		Error: errMsg,
	})
}

// ReadJSON reads and decodes a client action envelope under the read
// deadline.
func ReadJSON(conn *websocket.Conn, v interface{}) error {
	conn.SetReadDeadline(time.Now().Add(readTimeout))
	return conn.ReadJSON(v)
}
