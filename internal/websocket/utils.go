package websocket

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/stemsi/exstem-paper/internal/editor"
)

const (
	writeWait = 10 * time.Second
	readWait  = 5 * time.Minute

	// maxMessageSize bounds one client message; a full content patch with
	// support texts stays well below it.
	maxMessageSize = 256 << 10
)

// Prepare applies the session limits to a freshly upgraded connection.
// Every pong from the client pushes the read deadline forward.
func Prepare(conn *websocket.Conn) {
	conn.SetReadLimit(maxMessageSize)
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readWait))
	})
}

// WriteTyped sends a strongly-typed response payload over the WebSocket.
func WriteTyped(conn *websocket.Conn, v interface{}) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(v)
}

// WriteState sends the full surface state.
func WriteState(conn *websocket.Conn, s *editor.Surface) error {
	return WriteTyped(conn, NewState(s))
}

// WriteRejected reports a refused mutation with its policy code.
func WriteRejected(conn *websocket.Conn, res editor.Result) error {
	return WriteTyped(conn, RejectedResponse{
		Event:  EventRejected,
		Code:   res.Code,
		Reason: res.Reason,
	})
}

// WriteError sends a typed ErrorResponse over the WebSocket.
func WriteError(conn *websocket.Conn, errMsg string) error {
	return WriteTyped(conn, ErrorResponse{
		Event: EventError,
		Error: errMsg,
	})
}

// WritePing sends a control ping.
func WritePing(conn *websocket.Conn) error {
	return conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

// ReadJSON reads and decodes a message into the provided structure.
// It sets a read deadline.
func ReadJSON(conn *websocket.Conn, v interface{}) error {
	conn.SetReadDeadline(time.Now().Add(readWait))
	return conn.ReadJSON(v)
}
